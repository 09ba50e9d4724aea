package server

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/backoffice/internal/auth"
	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/handlers"
	"github.com/diewo77/backoffice/internal/httpx"
	"github.com/diewo77/backoffice/internal/mail"
	"github.com/diewo77/backoffice/internal/models"
	"github.com/diewo77/backoffice/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(conn *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth re-checks that the session's user still exists and is
	// active; RequireStaff gates the admin routes.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := conn.Model(&models.User{}).Where("id = ? AND is_active = ?", uid, true).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})
	auth.SetStaffChecker(func(_ context.Context, uid uint) bool {
		var count int64
		if err := conn.Model(&models.User{}).Where("id = ? AND is_staff = ?", uid, true).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := conn.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(conn, cfg.Media)
	authHandler.Register(mux)

	svc := services.NewDocumentService(conn)
	mailer := mail.NewSender(cfg.SMTP)

	ih := handlers.NewInvoiceHandler(conn, svc, cfg, mailer)
	mux.Handle("/invoices", protect(listCreate(ih.List, ih.Create)))
	mux.Handle("/invoices/view", protect(get(ih.View)))
	mux.Handle("/invoices/delete", protect(post(ih.Delete)))
	mux.Handle("/invoices/pay", protect(post(ih.MarkPaid)))
	mux.Handle("/invoices/status", protect(post(ih.UpdateStatus)))
	mux.Handle("/invoices/check-number", protect(get(ih.CheckNumber)))
	mux.Handle("/invoices/pdf", protect(get(ih.PDF)))
	mux.Handle("/invoices/docx", protect(get(ih.DOCX)))
	mux.Handle("/invoices/email", protect(post(ih.Email)))

	qh := handlers.NewQuotationHandler(conn, svc, cfg)
	mux.Handle("/quotations", protect(listCreate(qh.List, qh.Create)))
	mux.Handle("/quotations/view", protect(get(qh.View)))
	mux.Handle("/quotations/delete", protect(post(qh.Delete)))
	mux.Handle("/quotations/convert", protect(post(qh.Convert)))
	mux.Handle("/quotations/check-number", protect(get(qh.CheckNumber)))
	mux.Handle("/quotations/pdf", protect(get(qh.PDF)))
	mux.Handle("/quotations/docx", protect(get(qh.DOCX)))

	ah := handlers.NewAdminHandler(conn)
	mux.Handle("/admin/users", auth.Middleware(auth.RequireStaff(get(ah.Users))))
	mux.Handle("/admin/dashboard", auth.Middleware(auth.RequireStaff(get(ah.Dashboard))))

	// Uploaded media (item images, profile pictures).
	mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.Media.MediaRoot))))

	return withRecover(withLogging(mux))
}

func protect(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func get(h http.HandlerFunc) http.Handler  { return allow(http.MethodGet, h) }
func post(h http.HandlerFunc) http.Handler { return allow(http.MethodPost, h) }

func allow(method string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func listCreate(list, create http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		zap.S().Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw("panic recovered", "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

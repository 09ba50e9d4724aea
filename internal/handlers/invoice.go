package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/db"
	"github.com/diewo77/backoffice/internal/httpx"
	"github.com/diewo77/backoffice/internal/mail"
	"github.com/diewo77/backoffice/internal/models"
	"github.com/diewo77/backoffice/internal/policy"
	"github.com/diewo77/backoffice/internal/render"
	"github.com/diewo77/backoffice/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceHandler serves the invoice CRUD, lifecycle and export routes.
type InvoiceHandler struct {
	DB         *gorm.DB
	Svc        *services.DocumentService
	Media      config.MediaConfig
	Letterhead config.Letterhead
	Mailer     *mail.Sender
	DefaultVAT string
}

func NewInvoiceHandler(conn *gorm.DB, svc *services.DocumentService, cfg config.Config, mailer *mail.Sender) *InvoiceHandler {
	return &InvoiceHandler{
		DB:         conn,
		Svc:        svc,
		Media:      cfg.Media,
		Letterhead: cfg.Letterhead,
		Mailer:     mailer,
		DefaultVAT: cfg.DefaultVATPercentage,
	}
}

type invoiceSummary struct {
	Total   int64 `json:"total"`
	Paid    int64 `json:"paid"`
	Overdue int64 `json:"overdue"`
}

// List: GET /invoices with optional q/status/start/end/min/max filters.
// Owners see their own documents; staff see everything.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	scope := h.DB.Model(&models.Invoice{})
	if !user.IsStaff {
		scope = scope.Where("user_id = ?", user.ID)
	}

	query := r.URL.Query()
	if q := strings.TrimSpace(query.Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		scope = scope.Where("lower(client_name) LIKE ? OR lower(number) LIKE ?", like, like)
	}
	today := time.Now().Truncate(24 * time.Hour)
	switch query.Get("status") {
	case string(models.StatusPaid):
		scope = scope.Where("status = ?", models.StatusPaid)
	case string(models.StatusOverdue):
		// Overdue is derived, never stored.
		scope = scope.Where("due_date < ? AND status <> ?", today, models.StatusPaid)
	case string(models.StatusPending):
		scope = scope.Where("status = ? AND due_date >= ?", models.StatusPending, today)
	}
	if start := parseDate(query.Get("start"), time.Time{}); !start.IsZero() {
		scope = scope.Where("date_created >= ?", start)
	}
	if end := parseDate(query.Get("end"), time.Time{}); !end.IsZero() {
		scope = scope.Where("date_created <= ?", end)
	}
	if min, err := decimal.NewFromString(query.Get("min")); err == nil {
		scope = scope.Where("total >= ?", min)
	}
	if max, err := decimal.NewFromString(query.Get("max")); err == nil {
		scope = scope.Where("total <= ?", max)
	}

	var invoices []models.Invoice
	if err := scope.Preload("Items").Order("id desc").Find(&invoices).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}

	counts := h.DB.Model(&models.Invoice{})
	if !user.IsStaff {
		counts = counts.Where("user_id = ?", user.ID)
	}
	var summary invoiceSummary
	counts.Session(&gorm.Session{}).Count(&summary.Total)
	counts.Session(&gorm.Session{}).Where("status = ?", models.StatusPaid).Count(&summary.Paid)
	counts.Session(&gorm.Session{}).Where("due_date < ? AND status <> ?", today, models.StatusPaid).Count(&summary.Overdue)

	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "summary": summary})
}

// Create: POST /invoices. Form submission with parallel item rows.
// Parsing is permissive: unparseable VAT falls back to the configured
// default, a missing or bad due date to creation date + 30 days, and
// incomplete item rows are skipped.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	items := parseItemRows(r, h.Media.MediaRoot)

	clientName := strings.TrimSpace(r.FormValue("client_name"))
	if clientName == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"client_name": "required"})
		return
	}

	vat, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("vat_percentage")))
	if err != nil || vat.IsNegative() {
		vat, _ = decimal.NewFromString(h.DefaultVAT)
	}
	currency := strings.ToUpper(strings.TrimSpace(r.FormValue("currency")))
	if !models.ValidCurrency(currency) {
		currency = "NGN"
	}
	dateCreated := parseDate(r.FormValue("date_created"), time.Now())
	dueDate := parseDate(r.FormValue("due_date"), dateCreated.AddDate(0, 0, 30))
	status := models.StatusPending
	if s := r.FormValue("status"); models.ValidStatus(s) {
		status = models.InvoiceStatus(s)
	}

	inv := &models.Invoice{
		UserID:        user.ID,
		ClientName:    clientName,
		Currency:      currency,
		VATPercentage: vat,
		DateCreated:   dateCreated,
		DueDate:       dueDate,
		Status:        status,
		Notes:         strings.TrimSpace(r.FormValue("notes")),
	}
	if number := strings.TrimSpace(r.FormValue("invoice_number")); number != "" {
		if h.Svc.InvoiceNumberTaken(number) {
			httpx.JSONError(w, http.StatusBadRequest, "number_taken", map[string]string{"invoice_number": number})
			return
		}
		inv.Number = &number
	}
	if err := h.Svc.CreateInvoice(inv, items); err != nil {
		if db.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusBadRequest, "number_taken", map[string]string{"invoice_number": r.FormValue("invoice_number")})
			return
		}
		zap.S().Errorw("invoice create failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// View: GET /invoices/view?id=N
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Delete: POST /invoices/delete?id=N. Items go with the document.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteInvoice(inv); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MarkPaid: POST /invoices/pay?id=N
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Svc.MarkPaid(inv); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// UpdateStatus: POST /invoices/status?id=N with a status form value.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Svc.UpdateStatus(inv, r.FormValue("status")); err != nil {
		if err == services.ErrInvalidStatus {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// CheckNumber: GET /invoices/check-number?number=INV-1 for form-side
// duplicate hints. The unique index remains the actual guard.
func (h *InvoiceHandler) CheckNumber(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	httpx.JSON(w, http.StatusOK, map[string]bool{"taken": h.Svc.InvoiceNumberTaken(number)})
}

// PDF: GET /invoices/pdf?id=N
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	doc := render.FromInvoice(inv, h.Media)
	data, err := render.PDF(h.Letterhead, doc)
	if err != nil {
		zap.S().Errorw("invoice pdf failed", "invoice", inv.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	httpx.Attachment(w, "application/pdf", "Invoice_"+inv.DisplayNumber()+".pdf", data)
}

// DOCX: GET /invoices/docx?id=N
func (h *InvoiceHandler) DOCX(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	doc := render.FromInvoice(inv, h.Media)
	data, err := render.DOCX(h.Letterhead, doc)
	if err != nil {
		zap.S().Errorw("invoice docx failed", "invoice", inv.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_docx", nil)
		return
	}
	httpx.Attachment(w,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"Invoice_"+inv.DisplayNumber()+".docx", data)
}

// Email: POST /invoices/email?id=N with a "to" form value. The PDF is
// rendered and attached; delivery failure is reported but leaves the
// invoice untouched.
func (h *InvoiceHandler) Email(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}
	to := strings.TrimSpace(r.FormValue("to"))
	if to == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"to": "required"})
		return
	}
	doc := render.FromInvoice(inv, h.Media)
	data, err := render.PDF(h.Letterhead, doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	if err := h.Mailer.SendInvoice(to, inv.DisplayNumber(), inv.ClientName, data); err != nil {
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_send_email", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "sent", "to": to})
}

// load fetches the invoice for the detail routes and enforces ownership.
func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	user, ok := currentUser(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	var inv models.Invoice
	if err := h.DB.Preload("Items").First(&inv, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		return nil, false
	}
	if !policy.CanAccess(user, &inv) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	return &inv, true
}

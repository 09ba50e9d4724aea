package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/db"
	"github.com/diewo77/backoffice/internal/httpx"
	"github.com/diewo77/backoffice/internal/models"
	"github.com/diewo77/backoffice/internal/policy"
	"github.com/diewo77/backoffice/internal/render"
	"github.com/diewo77/backoffice/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuotationHandler serves the quotation CRUD, export and conversion
// routes. Same dispatch shape as InvoiceHandler.
type QuotationHandler struct {
	DB         *gorm.DB
	Svc        *services.DocumentService
	Media      config.MediaConfig
	Letterhead config.Letterhead
	DefaultVAT string
}

func NewQuotationHandler(conn *gorm.DB, svc *services.DocumentService, cfg config.Config) *QuotationHandler {
	return &QuotationHandler{
		DB:         conn,
		Svc:        svc,
		Media:      cfg.Media,
		Letterhead: cfg.Letterhead,
		DefaultVAT: cfg.DefaultVATPercentage,
	}
}

// List: GET /quotations with optional q/start/end filters.
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.DB)
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	scope := h.DB.Model(&models.Quotation{})
	if !user.IsStaff {
		scope = scope.Where("user_id = ?", user.ID)
	}
	query := r.URL.Query()
	if q := strings.TrimSpace(query.Get("q")); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		scope = scope.Where("lower(client_name) LIKE ? OR lower(number) LIKE ? OR lower(rfq_number) LIKE ?", like, like, like)
	}
	if start := parseDate(query.Get("start"), time.Time{}); !start.IsZero() {
		scope = scope.Where("date_created >= ?", start)
	}
	if end := parseDate(query.Get("end"), time.Time{}); !end.IsZero() {
		scope = scope.Where("date_created <= ?", end)
	}
	var quotations []models.Quotation
	if err := scope.Preload("Items").Order("id desc").Find(&quotations).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotations", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": quotations, "total": len(quotations)})
}

// Create: POST /quotations. Quotation forms carry unit, lead time and
// image per item row; quantities may arrive as display values like
// "2 M" and are parsed from the leading digits.
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	q := &models.Quotation{
		UserID:        user.ID,
		ClientName:    clientName,
		RFQNumber:     strings.TrimSpace(r.FormValue("rfq_number")),
		VesselName:    strings.TrimSpace(r.FormValue("vessel_name")),
		Currency:      currency,
		VATPercentage: vat,
		DateCreated:   parseDate(r.FormValue("date_created"), time.Now()),
		Notes:         strings.TrimSpace(r.FormValue("notes")),
	}
	if number := strings.TrimSpace(r.FormValue("quotation_number")); number != "" {
		if h.Svc.QuotationNumberTaken(number) {
			httpx.JSONError(w, http.StatusBadRequest, "number_taken", map[string]string{"quotation_number": number})
			return
		}
		q.Number = &number
	}
	if err := h.Svc.CreateQuotation(q, items); err != nil {
		if db.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusBadRequest, "number_taken", map[string]string{"quotation_number": r.FormValue("quotation_number")})
			return
		}
		zap.S().Errorw("quotation create failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

// View: GET /quotations/view?id=N
func (h *QuotationHandler) View(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Delete: POST /quotations/delete?id=N
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteQuotation(q); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Convert: POST /quotations/convert?id=N produces a new invoice with
// duplicated items. Converting the same quotation twice collides on the
// derived invoice number.
func (h *QuotationHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.ConvertQuotation(q)
	if err != nil {
		if err == services.ErrDuplicateNumber || db.IsUniqueViolation(err) {
			httpx.JSONError(w, http.StatusBadRequest, "number_taken", nil)
			return
		}
		zap.S().Errorw("quotation convert failed", "quotation", q.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_convert_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// CheckNumber: GET /quotations/check-number?number=QT-1
func (h *QuotationHandler) CheckNumber(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	httpx.JSON(w, http.StatusOK, map[string]bool{"taken": h.Svc.QuotationNumberTaken(number)})
}

// PDF: GET /quotations/pdf?id=N
func (h *QuotationHandler) PDF(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	doc := render.FromQuotation(q, h.Media)
	data, err := render.PDF(h.Letterhead, doc)
	if err != nil {
		zap.S().Errorw("quotation pdf failed", "quotation", q.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	httpx.Attachment(w, "application/pdf", "Quotation_"+q.DisplayNumber()+".pdf", data)
}

// DOCX: GET /quotations/docx?id=N
func (h *QuotationHandler) DOCX(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	doc := render.FromQuotation(q, h.Media)
	data, err := render.DOCX(h.Letterhead, doc)
	if err != nil {
		zap.S().Errorw("quotation docx failed", "quotation", q.ID, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_docx", nil)
		return
	}
	httpx.Attachment(w,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"Quotation_"+q.DisplayNumber()+".docx", data)
}

func (h *QuotationHandler) load(w http.ResponseWriter, r *http.Request) (*models.Quotation, bool) {
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
	var q models.Quotation
	if err := h.DB.Preload("Items").First(&q, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "quotation_not_found", nil)
		return nil, false
	}
	if !policy.CanAccess(user, &q) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return nil, false
	}
	return &q, true
}

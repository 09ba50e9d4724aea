package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/backoffice/internal/models"
	"github.com/diewo77/backoffice/internal/services"
)

func newQuotationHandler(t *testing.T) (*QuotationHandler, models.User) {
	t.Helper()
	db := setupTestDB(t)
	cfg := testConfig(t)
	svc := services.NewDocumentService(db)
	h := NewQuotationHandler(db, svc, cfg)
	return h, seedUser(t, db, false)
}

func TestQuotationCreateWithDisplayQuantities(t *testing.T) {
	h, user := newQuotationHandler(t)

	form := url.Values{
		"client_name":           {"Acme Marine"},
		"quotation_number":      {"qt-55"},
		"rfq_number":            {"RFQ-8"},
		"vessel_name":           {"MV Bonny"},
		"item_name":             {"Rope", "Hook"},
		"item_price":            {"1000", "500"},
		"item_quantity_display": {"2 M", "1"},
		"item_unit":             {"M", "EA"},
		"item_lead_time":        {"2 WEEKS", ""},
	}
	r := httptest.NewRequest("POST", "/quotations", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Create(w, asUser(r, user.ID))
	if w.Code != 201 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var q models.Quotation
	if err := h.DB.Preload("Items").Last(&q).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(q.Items) != 2 {
		t.Fatalf("items = %d", len(q.Items))
	}
	if q.Items[0].Quantity != 2 || q.Items[0].Unit != "M" {
		t.Errorf("row 0 = %+v", q.Items[0])
	}
	if !q.Subtotal.Equal(dec("2500")) || !q.Total.Equal(dec("2687.5")) {
		t.Errorf("totals = %s/%s", q.Subtotal, q.Total)
	}
	if q.RFQNumber != "RFQ-8" || q.VesselName != "MV Bonny" {
		t.Errorf("quotation fields = %+v", q)
	}
	if q.DisplayNumber() != "QT-55" {
		t.Errorf("display number = %s, want uppercased QT-55", q.DisplayNumber())
	}
}

func TestQuotationConvertEndpoint(t *testing.T) {
	h, user := newQuotationHandler(t)
	num := "qt-1"
	q := &models.Quotation{
		UserID: user.ID, Number: &num, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(),
	}
	items := []models.Item{
		{Name: "Rope", Price: dec("1000"), Quantity: 2},
		{Name: "Hook", Price: dec("500"), Quantity: 1},
		{Name: "Winch", Price: dec("2000"), Quantity: 3},
	}
	if err := h.Svc.CreateQuotation(q, items); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("POST", "/quotations/convert?id=1", nil)
	w := httptest.NewRecorder()
	h.Convert(w, asUser(r, user.ID))
	if w.Code != 201 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var inv models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &inv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if inv.Status != models.StatusPending {
		t.Errorf("status = %s", inv.Status)
	}

	// Second conversion collides on the derived invoice number.
	r = httptest.NewRequest("POST", "/quotations/convert?id=1", nil)
	w = httptest.NewRecorder()
	h.Convert(w, asUser(r, user.ID))
	if w.Code != 400 {
		t.Fatalf("second convert status = %d, want 400", w.Code)
	}
}

func TestQuotationDOCXExport(t *testing.T) {
	h, user := newQuotationHandler(t)
	num := "QT-3"
	q := &models.Quotation{
		UserID: user.ID, Number: &num, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(),
	}
	if err := h.Svc.CreateQuotation(q, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("GET", "/quotations/docx?id=1", nil)
	w := httptest.NewRecorder()
	h.DOCX(w, asUser(r, user.ID))
	if w.Code != 200 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Quotation_QT-3.docx") {
		t.Errorf("disposition = %s", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "PK") {
		t.Errorf("body is not a zip container")
	}
}

func TestQuotationDeleteCascadesItems(t *testing.T) {
	h, user := newQuotationHandler(t)
	q := &models.Quotation{
		UserID: user.ID, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(),
	}
	if err := h.Svc.CreateQuotation(q, []models.Item{{Name: "Rope", Price: dec("1000"), Quantity: 1}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("POST", "/quotations/delete?id=1", nil)
	w := httptest.NewRecorder()
	h.Delete(w, asUser(r, user.ID))
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var items int64
	h.DB.Model(&models.Item{}).Count(&items)
	if items != 0 {
		t.Errorf("%d items survived", items)
	}
}

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

func newInvoiceHandler(t *testing.T) (*InvoiceHandler, models.User) {
	t.Helper()
	db := setupTestDB(t)
	cfg := testConfig(t)
	svc := services.NewDocumentService(db)
	h := NewInvoiceHandler(db, svc, cfg, nil)
	return h, seedUser(t, db, false)
}

func TestInvoiceCreateAppliesPermissiveDefaults(t *testing.T) {
	h, user := newInvoiceHandler(t)

	form := url.Values{
		"client_name":    {"Acme Marine"},
		"vat_percentage": {"not-a-number"},
		"due_date":       {"garbage"},
		"currency":       {"XXX"},
		"item_name":      {"Rope"},
		"item_price":     {"1000"},
		"item_quantity":  {"2"},
	}
	r := httptest.NewRequest("POST", "/invoices", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Create(w, asUser(r, user.ID))

	if w.Code != 201 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var inv models.Invoice
	if err := h.DB.Preload("Items").Last(&inv).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !inv.VATPercentage.Equal(dec("7.5")) {
		t.Errorf("vat = %s, want default 7.5", inv.VATPercentage)
	}
	if inv.Currency != "NGN" {
		t.Errorf("currency = %s, want NGN fallback", inv.Currency)
	}
	wantDue := inv.DateCreated.AddDate(0, 0, 30)
	if inv.DueDate.Sub(wantDue) > time.Second || wantDue.Sub(inv.DueDate) > time.Second {
		t.Errorf("due = %s, want created+30d %s", inv.DueDate, wantDue)
	}
	if inv.Status != models.StatusPending {
		t.Errorf("status = %s", inv.Status)
	}
	if !inv.Subtotal.Equal(dec("2000")) || !inv.Total.Equal(dec("2150")) {
		t.Errorf("totals = %s/%s", inv.Subtotal, inv.Total)
	}
}

func TestInvoiceCreateRejectsDuplicateNumber(t *testing.T) {
	h, user := newInvoiceHandler(t)

	form := url.Values{
		"client_name":    {"Acme"},
		"invoice_number": {"INV-9"},
		"item_name":      {"Rope"},
		"item_price":     {"1000"},
		"item_quantity":  {"1"},
	}
	for i, wantCode := range []int{201, 400} {
		r := httptest.NewRequest("POST", "/invoices", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.Create(w, asUser(r, user.ID))
		if w.Code != wantCode {
			t.Fatalf("attempt %d: status = %d, want %d", i, w.Code, wantCode)
		}
	}
}

func TestInvoiceCreateRequiresClientName(t *testing.T) {
	h, user := newInvoiceHandler(t)
	r := httptest.NewRequest("POST", "/invoices", strings.NewReader("notes=x"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Create(w, asUser(r, user.ID))
	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestInvoiceListSummaryAndStatusFilter(t *testing.T) {
	h, user := newInvoiceHandler(t)

	seed := []struct {
		due    time.Time
		status models.InvoiceStatus
	}{
		{time.Now().AddDate(0, 0, 10), models.StatusPending},
		{time.Now().AddDate(0, 0, -10), models.StatusPending}, // overdue
		{time.Now().AddDate(0, 0, -10), models.StatusPaid},
	}
	for _, s := range seed {
		inv := &models.Invoice{
			UserID: user.ID, ClientName: "Acme", Currency: "NGN",
			VATPercentage: dec("7.5"), DateCreated: time.Now().AddDate(0, 0, -20),
			DueDate: s.due, Status: s.status,
		}
		if err := h.Svc.CreateInvoice(inv, nil); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	r := httptest.NewRequest("GET", "/invoices", nil)
	w := httptest.NewRecorder()
	h.List(w, asUser(r, user.ID))
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Items   []models.Invoice `json:"items"`
		Summary invoiceSummary   `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary.Total != 3 || resp.Summary.Paid != 1 || resp.Summary.Overdue != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}

	r = httptest.NewRequest("GET", "/invoices?status=Overdue", nil)
	w = httptest.NewRecorder()
	h.List(w, asUser(r, user.ID))
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("overdue filter returned %d items", len(resp.Items))
	}
	if resp.Items[0].Status == models.StatusPaid {
		t.Errorf("paid invoice leaked into overdue filter")
	}
}

func TestInvoiceListScopedToOwnerUnlessStaff(t *testing.T) {
	h, owner := newInvoiceHandler(t)
	staff := seedUser(t, h.DB, true)
	other := models.User{Email: "other@test", Password: "x", IsActive: true}
	if err := h.DB.Create(&other).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	inv := &models.Invoice{
		UserID: owner.ID, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(), DueDate: time.Now(),
	}
	if err := h.Svc.CreateInvoice(inv, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var resp struct {
		Items []models.Invoice `json:"items"`
	}
	for _, tc := range []struct {
		uid  uint
		want int
	}{{owner.ID, 1}, {other.ID, 0}, {staff.ID, 1}} {
		r := httptest.NewRequest("GET", "/invoices", nil)
		w := httptest.NewRecorder()
		h.List(w, asUser(r, tc.uid))
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(resp.Items) != tc.want {
			t.Errorf("uid %d sees %d invoices, want %d", tc.uid, len(resp.Items), tc.want)
		}
	}
}

func TestInvoiceViewForbiddenForNonOwner(t *testing.T) {
	h, owner := newInvoiceHandler(t)
	other := models.User{Email: "other@test", Password: "x", IsActive: true}
	if err := h.DB.Create(&other).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	inv := &models.Invoice{
		UserID: owner.ID, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(), DueDate: time.Now(),
	}
	if err := h.Svc.CreateInvoice(inv, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("GET", "/invoices/view?id=1", nil)
	w := httptest.NewRecorder()
	h.View(w, asUser(r, other.ID))
	if w.Code != 403 {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestInvoiceMarkPaidAndInvalidStatus(t *testing.T) {
	h, user := newInvoiceHandler(t)
	inv := &models.Invoice{
		UserID: user.ID, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(), DueDate: time.Now(),
		Status: models.StatusPending,
	}
	if err := h.Svc.CreateInvoice(inv, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("POST", "/invoices/pay?id=1", nil)
	w := httptest.NewRecorder()
	h.MarkPaid(w, asUser(r, user.ID))
	if w.Code != 200 {
		t.Fatalf("pay status = %d", w.Code)
	}
	var stored models.Invoice
	if err := h.DB.First(&stored, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.StatusPaid {
		t.Errorf("status = %s", stored.Status)
	}

	form := url.Values{"status": {"Shipped"}}
	r = httptest.NewRequest("POST", "/invoices/status?id=1", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.UpdateStatus(w, asUser(r, user.ID))
	if w.Code != 400 {
		t.Fatalf("invalid status accepted: %d", w.Code)
	}
}

func TestInvoicePDFExport(t *testing.T) {
	h, user := newInvoiceHandler(t)
	num := "INV-7"
	inv := &models.Invoice{
		UserID: user.ID, Number: &num, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(), DueDate: time.Now(),
	}
	if err := h.Svc.CreateInvoice(inv, []models.Item{{Name: "Rope", Price: dec("1000"), Quantity: 2}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("GET", "/invoices/pdf?id=1", nil)
	w := httptest.NewRecorder()
	h.PDF(w, asUser(r, user.ID))
	if w.Code != 200 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Invoice_INV-7.pdf") {
		t.Errorf("disposition = %s", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Errorf("body is not a PDF")
	}
}

func TestInvoiceDeleteCascadesItems(t *testing.T) {
	h, user := newInvoiceHandler(t)
	inv := &models.Invoice{
		UserID: user.ID, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(), DueDate: time.Now(),
	}
	if err := h.Svc.CreateInvoice(inv, []models.Item{{Name: "Rope", Price: dec("1000"), Quantity: 2}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := httptest.NewRequest("POST", "/invoices/delete?id=1", nil)
	w := httptest.NewRecorder()
	h.Delete(w, asUser(r, user.ID))
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var items int64
	h.DB.Model(&models.Item{}).Count(&items)
	if items != 0 {
		t.Errorf("%d items survived the delete", items)
	}
}

func TestInvoiceCheckNumber(t *testing.T) {
	h, user := newInvoiceHandler(t)
	num := "INV-1"
	inv := &models.Invoice{
		UserID: user.ID, Number: &num, ClientName: "Acme", Currency: "NGN",
		VATPercentage: dec("7.5"), DateCreated: time.Now(), DueDate: time.Now(),
	}
	if err := h.Svc.CreateInvoice(inv, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, tc := range []struct {
		number string
		want   bool
	}{{"INV-1", true}, {"INV-2", false}} {
		r := httptest.NewRequest("GET", "/invoices/check-number?number="+tc.number, nil)
		w := httptest.NewRecorder()
		h.CheckNumber(w, asUser(r, user.ID))
		var resp map[string]bool
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["taken"] != tc.want {
			t.Errorf("%s taken = %t, want %t", tc.number, resp["taken"], tc.want)
		}
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/backoffice/internal/httpx"
	"github.com/diewo77/backoffice/internal/models"
	"gorm.io/gorm"
)

// AdminHandler serves the staff-gated account and dashboard routes. The
// router mounts every route behind RequireStaff.
type AdminHandler struct {
	DB *gorm.DB
}

func NewAdminHandler(conn *gorm.DB) *AdminHandler { return &AdminHandler{DB: conn} }

// Users: GET /admin/users lists all accounts.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := h.DB.Order("id").Find(&users).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_users", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": users, "total": len(users)})
}

type dashboardStats struct {
	Users           int64 `json:"users"`
	Invoices        int64 `json:"invoices"`
	Quotations      int64 `json:"quotations"`
	PaidInvoices    int64 `json:"paid_invoices"`
	OverdueInvoices int64 `json:"overdue_invoices"`
}

// Dashboard: GET /admin/dashboard returns system-wide counts.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var stats dashboardStats
	h.DB.Model(&models.User{}).Count(&stats.Users)
	h.DB.Model(&models.Invoice{}).Count(&stats.Invoices)
	h.DB.Model(&models.Quotation{}).Count(&stats.Quotations)
	h.DB.Model(&models.Invoice{}).Where("status = ?", models.StatusPaid).Count(&stats.PaidInvoices)
	today := time.Now().Truncate(24 * time.Hour)
	h.DB.Model(&models.Invoice{}).
		Where("due_date < ? AND status <> ?", today, models.StatusPaid).
		Count(&stats.OverdueInvoices)
	httpx.JSON(w, http.StatusOK, stats)
}

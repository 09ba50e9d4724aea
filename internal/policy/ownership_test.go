package policy

import (
	"testing"

	"github.com/diewo77/backoffice/internal/models"
)

func TestCanAccess(t *testing.T) {
	owner := &models.User{ID: 1}
	staff := &models.User{ID: 2, IsStaff: true}
	stranger := &models.User{ID: 3}
	inv := &models.Invoice{UserID: 1}

	tests := []struct {
		name     string
		user     *models.User
		resource any
		want     bool
	}{
		{"owner reads own", owner, inv, true},
		{"stranger denied", stranger, inv, false},
		{"staff bypasses ownership", staff, inv, true},
		{"nil user denied", nil, inv, false},
		{"nil resource allowed", stranger, nil, true},
		{"unownable denied", stranger, struct{}{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccess(tt.user, tt.resource); got != tt.want {
				t.Errorf("CanAccess = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestQuotationIsOwnable(t *testing.T) {
	q := &models.Quotation{UserID: 7}
	if !CanAccess(&models.User{ID: 7}, q) {
		t.Fatalf("quotation owner denied")
	}
}

package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates the stored invoice states. Overdue can also
// be derived at read time (IsOverdue) without being persisted.
type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "Pending"
	StatusPaid    InvoiceStatus = "Paid"
	StatusOverdue InvoiceStatus = "Overdue"
)

// ValidStatus reports whether s is an accepted invoice status.
func ValidStatus(s string) bool {
	switch InvoiceStatus(s) {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

var validCurrencies = map[string]bool{
	"NGN": true, "USD": true, "EUR": true, "GBP": true, "CAD": true, "AUD": true,
}

// ValidCurrency reports whether code is a supported currency.
func ValidCurrency(code string) bool { return validCurrencies[code] }

// Invoice is a billing record: client, currency, item set and the
// totals computed from it. Totals are persisted at save time; items
// cannot change afterwards, so reads trust the stored values.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// Number is the human-assigned identifier. NULL when unassigned; the
	// unique index closes the double-submission race the pre-check alone
	// cannot.
	Number *string `gorm:"size:100;uniqueIndex" json:"invoice_number,omitempty"`

	ClientName string `gorm:"size:255;not null" json:"client_name"`
	Currency   string `gorm:"size:3;not null;default:'NGN'" json:"currency"`

	Items []Item `gorm:"many2many:invoice_items" json:"items,omitempty"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	VATPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_percentage"`
	VATAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"vat_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	DateCreated time.Time     `gorm:"not null" json:"date_created"`
	DueDate     time.Time     `gorm:"not null" json:"due_date"`
	Status      InvoiceStatus `gorm:"size:10;not null;default:'Pending'" json:"status"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`
}

// GetUserID implements policy.Ownable.
func (inv *Invoice) GetUserID() uint { return inv.UserID }

// DisplayNumber is the human-assigned number, falling back to the
// numeric id for unnumbered invoices.
func (inv *Invoice) DisplayNumber() string {
	if inv.Number != nil && *inv.Number != "" {
		return *inv.Number
	}
	return strconv.FormatUint(uint64(inv.ID), 10)
}

// OverdueAt reports whether the invoice is past due and unpaid at the
// given instant. Overdue is always derived, never a stored transition.
func (inv *Invoice) OverdueAt(now time.Time) bool {
	due := time.Date(inv.DueDate.Year(), inv.DueDate.Month(), inv.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today) && inv.Status != StatusPaid
}

// IsOverdue is OverdueAt relative to the current time.
func (inv *Invoice) IsOverdue() bool { return inv.OverdueAt(time.Now()) }

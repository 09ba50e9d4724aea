package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Quotation is a commercial offer with the same monetary shape as an
// invoice but no due date or lifecycle status. It can be converted into
// a new invoice with duplicated items.
type Quotation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Number *string `gorm:"size:100;uniqueIndex" json:"quotation_number,omitempty"`

	ClientName string `gorm:"size:255;not null" json:"client_name"`
	RFQNumber  string `gorm:"size:100" json:"rfq_number,omitempty"`
	VesselName string `gorm:"size:255" json:"vessel_name,omitempty"`
	Currency   string `gorm:"size:3;not null;default:'NGN'" json:"currency"`

	Items []Item `gorm:"many2many:quotation_items" json:"items,omitempty"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	VATPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_percentage"`
	VATAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"vat_amount"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	DateCreated time.Time `gorm:"not null" json:"date_created"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
}

// GetUserID implements policy.Ownable.
func (q *Quotation) GetUserID() uint { return q.UserID }

// DisplayNumber is the assigned number uppercased, falling back to the
// numeric id.
func (q *Quotation) DisplayNumber() string {
	if q.Number != nil && *q.Number != "" {
		return strings.ToUpper(*q.Number)
	}
	return strconv.FormatUint(uint64(q.ID), 10)
}

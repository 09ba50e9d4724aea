package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Units an item quantity can be expressed in. The empty unit is valid:
// the quantity is then rendered without a suffix.
const (
	UnitEach   = "EA"
	UnitPieces = "PCS"
	UnitKilos  = "KG"
	UnitLiters = "LTR"
	UnitMeters = "M"
	UnitBox    = "BOX"
	UnitSet    = "SET"
	UnitUnit   = "UNIT"
)

var validUnits = map[string]bool{
	"": true, UnitEach: true, UnitPieces: true, UnitKilos: true,
	UnitLiters: true, UnitMeters: true, UnitBox: true, UnitSet: true, UnitUnit: true,
}

// ValidUnit reports whether code is an accepted quantity unit.
func ValidUnit(code string) bool { return validUnits[code] }

// Item is a single billable line. Items are never mutated after
// creation (editing is disabled for integrity) and are deleted together
// with the document that owns them.
type Item struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Unit      string          `gorm:"size:10;default:''" json:"unit,omitempty"`
	Image     string          `gorm:"size:255" json:"image,omitempty"` // stored file path, optional
	LeadTime  string          `gorm:"size:50" json:"lead_time,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Total is the derived line amount: price * quantity.
func (i *Item) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

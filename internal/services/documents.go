package services

import (
	"errors"

	"github.com/diewo77/backoffice/internal/billing"
	"github.com/diewo77/backoffice/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateNumber means the human-assigned document number is
	// already in use.
	ErrDuplicateNumber = errors.New("document number already used")
	// ErrInvalidStatus means the requested status is not one of the
	// enumerated invoice states.
	ErrInvalidStatus = errors.New("invalid status value")
)

// DocumentService carries the aggregate-level operations shared by the
// invoice and quotation handlers.
type DocumentService struct {
	DB *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService { return &DocumentService{DB: db} }

// InvoiceNumberTaken reports whether a human-assigned invoice number is
// already in use. Best-effort pre-check only; the unique index is the
// real guard.
func (s *DocumentService) InvoiceNumberTaken(number string) bool {
	if number == "" {
		return false
	}
	var count int64
	s.DB.Model(&models.Invoice{}).Where("number = ?", number).Count(&count)
	return count > 0
}

// QuotationNumberTaken is InvoiceNumberTaken for quotations.
func (s *DocumentService) QuotationNumberTaken(number string) bool {
	if number == "" {
		return false
	}
	var count int64
	s.DB.Model(&models.Quotation{}).Where("number = ?", number).Count(&count)
	return count > 0
}

// CreateInvoice persists an invoice together with its items, computing
// and storing totals in one transaction.
func (s *DocumentService) CreateInvoice(inv *models.Invoice, items []models.Item) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		inv.Items = items
		billing.Apply(inv)
		return tx.Create(inv).Error
	})
}

// CreateQuotation persists a quotation together with its items.
func (s *DocumentService) CreateQuotation(q *models.Quotation, items []models.Item) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		q.Items = items
		billing.ApplyQuotation(q)
		return tx.Create(q).Error
	})
}

// DeleteInvoice removes the invoice and its items. Items are owned by
// the document, so they go with it.
func (s *DocumentService) DeleteInvoice(inv *models.Invoice) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(inv).Association("Items").Clear(); err != nil {
			return err
		}
		for i := range inv.Items {
			if err := tx.Delete(&inv.Items[i]).Error; err != nil {
				return err
			}
		}
		return tx.Delete(inv).Error
	})
}

// DeleteQuotation removes the quotation and its items.
func (s *DocumentService) DeleteQuotation(q *models.Quotation) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(q).Association("Items").Clear(); err != nil {
			return err
		}
		for i := range q.Items {
			if err := tx.Delete(&q.Items[i]).Error; err != nil {
				return err
			}
		}
		return tx.Delete(q).Error
	})
}

// MarkPaid transitions an invoice to Paid. Paid is terminal; repeated
// calls are harmless.
func (s *DocumentService) MarkPaid(inv *models.Invoice) error {
	inv.Status = models.StatusPaid
	return s.DB.Model(inv).Update("status", models.StatusPaid).Error
}

// UpdateStatus sets an invoice's status after validating it against the
// enumerated set.
func (s *DocumentService) UpdateStatus(inv *models.Invoice, status string) error {
	if !models.ValidStatus(status) {
		return ErrInvalidStatus
	}
	inv.Status = models.InvoiceStatus(status)
	return s.DB.Model(inv).Update("status", status).Error
}

// ConvertQuotation produces a new invoice from a quotation. Items are
// duplicated (same name/price/quantity, fresh identity) rather than
// shared, so later deletions cannot cross-contaminate. The due date
// defaults to the quotation's creation date and totals are recomputed
// from the duplicated items, which by construction match the
// quotation's stored values.
func (s *DocumentService) ConvertQuotation(q *models.Quotation) (*models.Invoice, error) {
	number := "INV-" + derivedNumber(q)
	if s.InvoiceNumberTaken(number) {
		return nil, ErrDuplicateNumber
	}

	inv := &models.Invoice{
		UserID:        q.UserID,
		Number:        &number,
		ClientName:    q.ClientName,
		Currency:      q.Currency,
		VATPercentage: q.VATPercentage,
		DateCreated:   q.DateCreated,
		DueDate:       q.DateCreated,
		Status:        models.StatusPending,
		Notes:         q.Notes,
	}
	copies := make([]models.Item, 0, len(q.Items))
	for i := range q.Items {
		src := &q.Items[i]
		copies = append(copies, models.Item{
			Name:     src.Name,
			Price:    src.Price,
			Quantity: src.Quantity,
		})
	}
	if err := s.CreateInvoice(inv, copies); err != nil {
		return nil, err
	}
	return inv, nil
}

func derivedNumber(q *models.Quotation) string {
	if q.Number != nil && *q.Number != "" {
		return *q.Number
	}
	return q.DisplayNumber()
}

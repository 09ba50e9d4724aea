package render

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/diewo77/backoffice/internal/config"
	"github.com/diewo77/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultLeadTime is shown when an item carries no lead time.
const defaultLeadTime = "1-7 DAYS"

// Document is the format-independent view of an invoice or quotation.
// Both renderers consume this one shape, so the layout stays canonical.
type Document struct {
	Kind   string // "INVOICE" or "QUOTATION"
	Number string // human-assigned number or numeric id fallback

	ClientName string
	Currency   string

	DateCreated time.Time
	DueDate     time.Time // invoices only
	Status      string    // invoices only
	Validity    string    // quotations only

	Lines []Line

	Subtotal      string
	VATPercentage string
	VATAmount     string
	Total         string

	Notes  string
	Images []GalleryImage
}

// Line is a single items-table row, amounts already formatted.
type Line struct {
	Description string
	Quantity    string // quantity with unit suffix when present
	UnitPrice   string
	Total       string
	LeadTime    string
}

// GalleryImage is an item image destined for the 2x2 gallery pages.
// Path is empty when the stored image could not be resolved; renderers
// then show a placeholder caption instead of failing.
type GalleryImage struct {
	Name string
	Path string
}

var printer = message.NewPrinter(language.English)

// Amount formats a monetary value with thousands separators and zero
// decimal places, matching the document layout contract.
func Amount(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}

// FromInvoice builds the canonical document view of an invoice.
func FromInvoice(inv *models.Invoice, media config.MediaConfig) Document {
	doc := Document{
		Kind:          "INVOICE",
		Number:        inv.DisplayNumber(),
		ClientName:    inv.ClientName,
		Currency:      inv.Currency,
		DateCreated:   inv.DateCreated,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		Subtotal:      Amount(inv.Subtotal),
		VATPercentage: inv.VATPercentage.String(),
		VATAmount:     Amount(inv.VATAmount),
		Total:         Amount(inv.Total),
		Notes:         inv.Notes,
	}
	doc.Lines, doc.Images = buildLines(inv.Items, media)
	return doc
}

// FromQuotation builds the canonical document view of a quotation.
func FromQuotation(q *models.Quotation, media config.MediaConfig) Document {
	doc := Document{
		Kind:          "QUOTATION",
		Number:        q.DisplayNumber(),
		ClientName:    q.ClientName,
		Currency:      q.Currency,
		DateCreated:   q.DateCreated,
		Validity:      "30 days from date of issue",
		Subtotal:      Amount(q.Subtotal),
		VATPercentage: q.VATPercentage.String(),
		VATAmount:     Amount(q.VATAmount),
		Total:         Amount(q.Total),
		Notes:         q.Notes,
	}
	doc.Lines, doc.Images = buildLines(q.Items, media)
	return doc
}

func buildLines(items []models.Item, media config.MediaConfig) ([]Line, []GalleryImage) {
	lines := make([]Line, 0, len(items))
	var images []GalleryImage
	for i := range items {
		it := &items[i]
		qty := printer.Sprintf("%d", it.Quantity)
		if it.Unit != "" {
			qty += " " + it.Unit
		}
		lead := it.LeadTime
		if lead == "" {
			lead = defaultLeadTime
		}
		lines = append(lines, Line{
			Description: it.Name,
			Quantity:    qty,
			UnitPrice:   Amount(it.Price),
			Total:       Amount(it.Total()),
			LeadTime:    lead,
		})
		if it.Image != "" {
			path, ok := resolveImage(it.Image, media.MediaRoot)
			if !ok {
				path = ""
			}
			images = append(images, GalleryImage{Name: it.Name, Path: path})
		}
	}
	return lines, images
}

// resolveImage locates a stored item image on disk, trying the stored
// path, then the media root, then the item_images upload directory.
// Files that exist but do not decode as images are treated the same as
// missing ones, so a corrupt upload degrades to a placeholder instead
// of aborting the render.
func resolveImage(stored, mediaRoot string) (string, bool) {
	if stored == "" {
		return "", false
	}
	candidates := []string{stored}
	if !filepath.IsAbs(stored) {
		candidates = append(candidates, filepath.Join(mediaRoot, stored))
	}
	candidates = append(candidates, filepath.Join(mediaRoot, "item_images", filepath.Base(stored)))
	for _, c := range candidates {
		if readableImage(c) {
			return c, true
		}
	}
	return "", false
}

// resolveLogo returns the letterhead logo path, trying the primary then
// the fallback location. A missing or undecodable logo is non-fatal;
// the caller omits it.
func resolveLogo(lh config.Letterhead) (string, bool) {
	for _, p := range []string{lh.LogoPath, lh.LogoFallbackPath} {
		if p == "" {
			continue
		}
		if readableImage(p) {
			return p, true
		}
	}
	return "", false
}

// readableImage reports whether path exists and carries a decodable
// image header.
func readableImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	if fi, err := f.Stat(); err != nil || fi.IsDir() {
		return false
	}
	_, _, err = image.DecodeConfig(f)
	return err == nil
}

// headerLine is the boxed one-line company identity at the top of every
// document.
func headerLine(lh config.Letterhead) string {
	return lh.CompanyAddress + ", T: " + lh.CompanyPhone + ", E: " + lh.CompanyEmail + "."
}

// galleryBatches splits gallery images into pages of at most four.
func galleryBatches(images []GalleryImage) [][]GalleryImage {
	var batches [][]GalleryImage
	for start := 0; start < len(images); start += 4 {
		end := start + 4
		if end > len(images) {
			end = len(images)
		}
		batches = append(batches, images[start:end])
	}
	return batches
}

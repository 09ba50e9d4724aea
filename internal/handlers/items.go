package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/diewo77/backoffice/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 16 << 20

var leadingDigitsRegex = regexp.MustCompile(`^\s*(\d+)`)

// parseItemRows zips the parallel item_* form lists into Item records.
// Rows missing a name, price, or quantity are skipped silently; malformed
// units are dropped to the empty unit. Uploaded images are saved under
// mediaRoot/item_images and the stored path recorded on the item.
//
// Quotation forms submit item_quantity_display values like "2 M"; the
// quantity is the leading digit run and the unit comes from item_unit.
func parseItemRows(r *http.Request, mediaRoot string) []models.Item {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if err := r.ParseForm(); err != nil {
			return nil
		}
	}

	names := r.Form["item_name"]
	prices := r.Form["item_price"]
	quantities := r.Form["item_quantity"]
	displays := r.Form["item_quantity_display"]
	units := r.Form["item_unit"]
	leadTimes := r.Form["item_lead_time"]

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["item_image"]
	}

	items := make([]models.Item, 0, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		price, ok := parsePrice(at(prices, i))
		if !ok {
			continue
		}
		qty, ok := parseQuantity(at(quantities, i), at(displays, i))
		if !ok {
			continue
		}
		unit := strings.ToUpper(strings.TrimSpace(at(units, i)))
		if unit == "" && len(units) > 0 {
			// Quotation forms carry unit columns; a blank one means EA.
			unit = models.UnitEach
		}
		if !models.ValidUnit(unit) {
			unit = ""
		}
		item := models.Item{
			Name:     name,
			Price:    price,
			Quantity: qty,
			Unit:     unit,
			LeadTime: strings.TrimSpace(at(leadTimes, i)),
		}
		if i < len(files) && files[i] != nil {
			if stored, err := saveItemImage(files[i], mediaRoot); err == nil {
				item.Image = stored
			} else {
				zap.S().Warnw("item image not saved", "item", name, "error", err)
			}
		}
		items = append(items, item)
	}
	return items
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// parseQuantity prefers the plain quantity field and falls back to the
// leading digits of the display value. A display value with no digits
// at all still keeps the row, at quantity 1; only a truly absent
// quantity skips it.
func parseQuantity(plain, display string) (int, bool) {
	if v := strings.TrimSpace(plain); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n, true
		}
	}
	if m := leadingDigitsRegex.FindStringSubmatch(display); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n, true
		}
	}
	if strings.TrimSpace(display) != "" {
		return 1, true
	}
	return 0, false
}

// saveItemImage writes an uploaded file to mediaRoot/item_images and
// returns the path stored on the item. Name collisions get a numeric
// suffix so an earlier upload is never overwritten.
func saveItemImage(fh *multipart.FileHeader, mediaRoot string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dir := filepath.Join(mediaRoot, "item_images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := uniqueName(dir, filepath.Base(fh.Filename))
	out, err := os.Create(filepath.Join(dir, base))
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join("item_images", base)), nil
}

func uniqueName(dir, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := base
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
}

package render

import (
	"bytes"
	"testing"

	"github.com/diewo77/backoffice/internal/config"
)

func TestDOCXGenerates(t *testing.T) {
	doc := FromInvoice(sampleInvoice(), config.MediaConfig{})
	data, err := DOCX(testLetterhead, doc)
	if err != nil {
		t.Fatalf("DOCX: %v", err)
	}
	// An OOXML document is a zip archive.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("output does not look like a zip container")
	}
}

func TestDOCXWithZeroItems(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	inv.Subtotal = dec("0")
	inv.VATAmount = dec("0")
	inv.Total = dec("0")
	data, err := DOCX(testLetterhead, FromInvoice(inv, config.MediaConfig{}))
	if err != nil {
		t.Fatalf("empty document must still render: %v", err)
	}
	if len(data) == 0 {
		t.Errorf("empty output")
	}
}

func TestDOCXWithUnresolvedImage(t *testing.T) {
	inv := sampleInvoice()
	inv.Items[0].Image = "item_images/missing.png"
	data, err := DOCX(testLetterhead, FromInvoice(inv, config.MediaConfig{MediaRoot: t.TempDir()}))
	if err != nil {
		t.Fatalf("missing item image must not abort rendering: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("output does not look like a zip container")
	}
}

package render

import (
	"bytes"

	"github.com/diewo77/backoffice/internal/config"
	docx "github.com/fumiama/go-docx"
)

const tableWidth = 9000 // twips, roughly the printable width of A4

// DOCX renders the canonical document layout as an Open XML
// word-processing byte stream.
func DOCX(lh config.Letterhead, doc Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	// Boxed company identity line: a single-cell table gives the frame.
	headerTable := w.AddTable(1, 1, tableWidth, nil)
	headerTable.TableRows[0].TableCells[0].AddParagraph().AddText(headerLine(lh)).Size("18")

	// Logo is optional and silently omitted when unresolved or unreadable.
	if logo, ok := resolveLogo(lh); ok {
		logoPara := w.AddParagraph()
		if _, err := logoPara.AddInlineDrawingFrom(logo); err != nil {
			_ = err
		}
	}
	w.AddParagraph()

	title := w.AddParagraph().Justification("center")
	title.AddText(doc.Kind + " " + doc.Number).Size("32").Bold().Underline("single")

	w.AddParagraph()
	addInfoTable(w, doc)

	w.AddParagraph()
	addItemsTable(w, doc)

	w.AddParagraph()
	w.AddParagraph().AddText("Subtotal: " + doc.Currency + " " + doc.Subtotal)
	w.AddParagraph().AddText("VAT (" + doc.VATPercentage + "%): " + doc.Currency + " " + doc.VATAmount)
	w.AddParagraph().AddText("______________________________")
	w.AddParagraph().AddText("Total: " + doc.Currency + " " + doc.Total).Bold()

	if doc.Notes != "" {
		w.AddParagraph()
		w.AddParagraph().AddText("Notes:").Bold()
		w.AddParagraph().AddText(doc.Notes)
	}

	addGallery(w, doc.Images)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addInfoTable(w *docx.Docx, doc Document) {
	info := w.AddTable(1, 2, tableWidth, nil)

	clientCell := info.TableRows[0].TableCells[0]
	clientPara := clientCell.AddParagraph()
	clientPara.AddText("CLIENT: ").Bold()
	clientPara.AddText(doc.ClientName)

	metaCell := info.TableRows[0].TableCells[1]
	datePara := metaCell.AddParagraph()
	datePara.AddText("DATE: ").Bold()
	datePara.AddText(doc.DateCreated.Format(dateLayout))
	if doc.Kind == "INVOICE" {
		duePara := metaCell.AddParagraph()
		duePara.AddText("DUE DATE: ").Bold()
		duePara.AddText(doc.DueDate.Format(dateLayout))
		statusPara := metaCell.AddParagraph()
		statusPara.AddText("STATUS: ").Bold()
		statusPara.AddText(doc.Status)
	} else if doc.Validity != "" {
		validityPara := metaCell.AddParagraph()
		validityPara.AddText("VALIDITY: ").Bold()
		validityPara.AddText(doc.Validity)
	}
}

func addItemsTable(w *docx.Docx, doc Document) {
	table := w.AddTable(len(doc.Lines)+1, 5, tableWidth, nil)

	headers := []string{
		"DESCRIPTION",
		"QUANTITY",
		"UNIT PRICE (" + doc.Currency + ")",
		"TOTAL (" + doc.Currency + ")",
		"LEAD TIME",
	}
	for i, h := range headers {
		table.TableRows[0].TableCells[i].AddParagraph().AddText(h).Bold()
	}
	for r, l := range doc.Lines {
		cells := table.TableRows[r+1].TableCells
		cells[0].AddParagraph().AddText(l.Description)
		cells[1].AddParagraph().AddText(l.Quantity)
		cells[2].AddParagraph().AddText(l.UnitPrice)
		cells[3].AddParagraph().AddText(l.Total)
		cells[4].AddParagraph().AddText(l.LeadTime)
	}
}

// addGallery appends the item image pages: a 2x2 grid per batch of
// four, item names captioned, placeholder text when an image cannot be
// resolved or embedded.
func addGallery(w *docx.Docx, images []GalleryImage) {
	batches := galleryBatches(images)
	for bi, batch := range batches {
		w.AddParagraph().AddPageBreaks()
		title := "ITEM IMAGES"
		if bi > 0 {
			title = "ITEM IMAGES (CONTINUED)"
		}
		titlePara := w.AddParagraph().Justification("center")
		titlePara.AddText(title).Size("28").Bold()

		grid := w.AddTable(2, 2, tableWidth, nil)
		for j, g := range batch {
			cell := grid.TableRows[j/2].TableCells[j%2]
			picPara := cell.AddParagraph()
			embedded := false
			if g.Path != "" {
				if _, err := picPara.AddInlineDrawingFrom(g.Path); err == nil {
					embedded = true
				}
			}
			caption := cell.AddParagraph().Justification("center")
			if embedded {
				caption.AddText(g.Name).Bold()
			} else {
				picPara.AddText("[Image not available for " + g.Name + "]")
				caption.AddText("[No Image] " + g.Name).Bold()
			}
		}
	}
}

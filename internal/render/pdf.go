package render

import (
	"github.com/diewo77/backoffice/internal/config"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	mcfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const dateLayout = "02-01-2006"

// PDF renders the canonical document layout as a PDF byte stream.
func PDF(lh config.Letterhead, doc Document) ([]byte, error) {
	cfg := mcfg.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(10).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	// Boxed company identity line.
	m.AddRows(row.New(8).Add(
		text.NewCol(12, headerLine(lh), props.Text{Size: 9, Align: align.Center, Top: 2}).
			WithStyle(&props.Cell{BorderType: border.Full}),
	))

	// Logo is optional; a missing file is silently omitted.
	if logo, ok := resolveLogo(lh); ok {
		m.AddRows(row.New(18).Add(
			image.NewFromFileCol(4, logo, props.Rect{Percent: 90}),
			col.New(8),
		))
	}
	m.AddRows(line.NewRow(4))

	m.AddRows(row.New(12).Add(
		text.NewCol(12, doc.Kind+" "+doc.Number, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center, Top: 2}),
	))

	m.AddRows(infoRow(doc))

	m.AddRows(itemRows(doc)...)

	m.AddRows(
		row.New(6).Add(text.NewCol(12, "Subtotal: "+doc.Currency+" "+doc.Subtotal, props.Text{Size: 10, Top: 1})),
		row.New(6).Add(text.NewCol(12, "VAT ("+doc.VATPercentage+"%): "+doc.Currency+" "+doc.VATAmount, props.Text{Size: 10, Top: 1})),
		line.NewRow(2),
		row.New(7).Add(text.NewCol(12, "Total: "+doc.Currency+" "+doc.Total, props.Text{Size: 11, Style: fontstyle.Bold, Top: 1})),
	)

	if doc.Notes != "" {
		m.AddRows(
			row.New(7).Add(text.NewCol(12, "Notes:", props.Text{Size: 10, Style: fontstyle.Bold, Top: 2})),
			row.New(6).Add(text.NewCol(12, doc.Notes, props.Text{Size: 10})),
		)
	}

	addGalleryPages(m, doc.Images)

	out, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return out.GetBytes(), nil
}

// infoRow is the two-column client / date metadata block.
func infoRow(doc Document) core.Row {
	left := col.New(6).Add(
		text.New("CLIENT: "+doc.ClientName, props.Text{Size: 10, Top: 2, Left: 2}),
	).WithStyle(&props.Cell{BorderType: border.Full})

	meta := []string{"DATE: " + doc.DateCreated.Format(dateLayout)}
	if doc.Kind == "INVOICE" {
		meta = append(meta,
			"DUE DATE: "+doc.DueDate.Format(dateLayout),
			"STATUS: "+doc.Status,
		)
	} else if doc.Validity != "" {
		meta = append(meta, "VALIDITY: "+doc.Validity)
	}
	comps := make([]core.Component, 0, len(meta))
	for i, mline := range meta {
		comps = append(comps, text.New(mline, props.Text{Size: 10, Top: 2 + float64(i)*5, Left: 2}))
	}
	right := col.New(6).Add(comps...).WithStyle(&props.Cell{BorderType: border.Full})

	height := 4 + float64(len(meta))*5
	if height < 9 {
		height = 9
	}
	return row.New(height).Add(left, right)
}

func itemRows(doc Document) []core.Row {
	cellText := func(size int, value string, style fontstyle.Type) core.Col {
		return text.NewCol(size, value, props.Text{Size: 9, Style: style, Top: 1.5, Left: 1}).
			WithStyle(&props.Cell{BorderType: border.Full})
	}
	rows := []core.Row{
		row.New(8).Add(
			cellText(4, "DESCRIPTION", fontstyle.Bold),
			cellText(2, "QUANTITY", fontstyle.Bold),
			cellText(2, "UNIT PRICE ("+doc.Currency+")", fontstyle.Bold),
			cellText(2, "TOTAL ("+doc.Currency+")", fontstyle.Bold),
			cellText(2, "LEAD TIME", fontstyle.Bold),
		),
	}
	for _, l := range doc.Lines {
		rows = append(rows, row.New(7).Add(
			cellText(4, l.Description, fontstyle.Normal),
			cellText(2, l.Quantity, fontstyle.Normal),
			cellText(2, l.UnitPrice, fontstyle.Normal),
			cellText(2, l.Total, fontstyle.Normal),
			cellText(2, l.LeadTime, fontstyle.Normal),
		))
	}
	// A spacer under the table before totals.
	rows = append(rows, row.New(4))
	return rows
}

// addGalleryPages appends the item image gallery: four images per page
// in a 2x2 grid, captioned, with placeholders for unresolved files.
func addGalleryPages(m core.Maroto, images []GalleryImage) {
	for bi, batch := range galleryBatches(images) {
		title := "ITEM IMAGES"
		if bi > 0 {
			title = "ITEM IMAGES (CONTINUED)"
		}
		rows := []core.Row{
			row.New(12).Add(text.NewCol(12, title, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center, Top: 2})),
		}
		for i := 0; i < len(batch); i += 2 {
			var imgCols, capCols []core.Col
			for j := i; j < i+2 && j < len(batch); j++ {
				g := batch[j]
				if g.Path != "" {
					imgCols = append(imgCols, image.NewFromFileCol(6, g.Path, props.Rect{Center: true, Percent: 85}))
					capCols = append(capCols, text.NewCol(6, g.Name, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}))
				} else {
					imgCols = append(imgCols, text.NewCol(6, "[Image not available for "+g.Name+"]", props.Text{Size: 9, Align: align.Center, Top: 25}))
					capCols = append(capCols, text.NewCol(6, "[No Image] "+g.Name, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}))
				}
			}
			rows = append(rows, row.New(60).Add(imgCols...), row.New(8).Add(capCols...))
		}
		m.AddPages(page.New().Add(rows...))
	}
}

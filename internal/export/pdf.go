package export

import (
	"errors"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/gotabular/internal/normalize"
	"github.com/hyperifyio/gotabular/internal/table"
)

// WritePDF renders every table as a simple grid, one section per table, with
// the formatted display values (separators included, this is a visual
// artifact). Layout is intentionally minimal: fixed page, equal column
// widths, no pagination tuning.
func WritePDF(path string, tables []table.Table, opts normalize.Options) error {
	if len(tables) == 0 {
		return errors.New("no tables to export")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right

	for _, t := range tables {
		if len(t.Headers) == 0 {
			continue
		}
		pdf.AddPage()
		if t.Title != "" {
			pdf.SetFont("Helvetica", "B", 13)
			pdf.CellFormat(0, 8, t.Title, "", 1, "L", false, 0, "")
		}
		if t.Summary != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, t.Summary, "", "L", false)
			pdf.Ln(2)
		}
		colW := usable / float64(len(t.Headers))

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(220, 230, 241)
		for _, h := range headerRow(&t, opts) {
			pdf.CellFormat(colW, 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for i := range t.Rows {
			for _, h := range t.Headers {
				fv := normalize.Apply(t.Value(i, h), opts)
				align := "L"
				if fv.Numeric {
					align = "R"
				}
				pdf.CellFormat(colW, 6, fv.Display, "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
	}
	return pdf.OutputFileAndClose(path)
}

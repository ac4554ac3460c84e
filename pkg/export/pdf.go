package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// writePDF renders a markdown report to an A4 PDF at path. Core fonts only,
// so non-latin characters degrade through the cp1252 translator rather than
// failing the export.
func writePDF(path, report string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 20, 18)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, block := range parseMarkdown(report) {
		switch {
		case block.Level == 1:
			pdf.SetFont("Helvetica", "B", 18)
			pdf.MultiCell(0, 9, tr(block.Text), "", "L", false)
			pdf.Ln(2)
		case block.Level == 2:
			pdf.SetFont("Helvetica", "B", 14)
			pdf.MultiCell(0, 7, tr(block.Text), "", "L", false)
			pdf.Ln(1)
		case block.Level == 3:
			pdf.SetFont("Helvetica", "B", 12)
			pdf.MultiCell(0, 6, tr(block.Text), "", "L", false)
			pdf.Ln(1)
		case block.Bullet:
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetX(pdf.GetX() + 4)
			pdf.MultiCell(0, 5.5, tr("• "+block.Text), "", "L", false)
		case block.Text == "":
			pdf.Ln(3)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 5.5, tr(block.Text), "", "L", false)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

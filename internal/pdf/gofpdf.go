package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"quotation-service/internal/pricing"
)

// GofpdfGenerator renders quotations with gofpdf core fonts. Labels are
// Latin-only; SKUs, quantities and amounts render the same for both
// draft languages.
type GofpdfGenerator struct{}

// NewGenerator returns the default PDF generator.
func NewGenerator() *GofpdfGenerator { return &GofpdfGenerator{} }

func (g *GofpdfGenerator) Render(q pricing.Quotation) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Quotation "+q.Number, true)
	// Pin the document timestamp so rendering the same quotation twice
	// yields identical bytes.
	doc.SetCreationDate(q.GeneratedAt)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Quotation")
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, 6, fmt.Sprintf("No. %s, %s", q.Number, q.GeneratedAt.Format("02 Jan 2006")))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Client: %s (%s)", q.Client.Name, q.Client.Contact))
	doc.Ln(6)
	doc.Cell(0, 6, fmt.Sprintf("Currency: %s", q.Currency))
	doc.Ln(10)

	doc.SetFont("Helvetica", "B", 11)
	doc.Cell(70, 7, "SKU")
	doc.Cell(25, 7, "Qty")
	doc.Cell(45, 7, "Unit Price")
	doc.Cell(45, 7, "Line Total")
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	for _, item := range q.Items {
		doc.Cell(70, 6, trim(item.SKU, 38))
		doc.Cell(25, 6, fmt.Sprintf("%d", item.Qty))
		doc.Cell(45, 6, item.UnitPrice.StringFixed(2))
		doc.Cell(45, 6, item.LineTotal.StringFixed(2))
		doc.Ln(6)
	}

	doc.Ln(4)
	doc.SetFont("Helvetica", "B", 11)
	doc.Cell(0, 7, fmt.Sprintf("Grand Total: %s %s", q.GrandTotal.StringFixed(2), q.Currency))
	doc.Ln(8)

	doc.SetFont("Helvetica", "", 10)
	if q.DeliveryTerms != "" {
		doc.Cell(0, 6, fmt.Sprintf("Delivery Terms: %s", q.DeliveryTerms))
		doc.Ln(6)
	}
	if q.Notes != "" {
		doc.Cell(0, 6, fmt.Sprintf("Notes: %s", q.Notes))
		doc.Ln(6)
	}

	doc.Ln(4)
	doc.SetFont("Helvetica", "", 8)
	doc.Cell(0, 5, fmt.Sprintf("Generated at %s", q.GeneratedAt.Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}

package pdf

import "quotation-service/internal/pricing"

// Generator renders a quotation as a PDF document.
type Generator interface {
	Render(q pricing.Quotation) ([]byte, error)
}

package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supported client languages for quotation drafts.
const (
	LangEnglish = "en"
	LangArabic  = "ar"
)

// SupportedLang reports whether lang is a language the service can draft in.
func SupportedLang(lang string) bool {
	return lang == LangEnglish || lang == LangArabic
}

// Client identifies the recipient of a quotation.
type Client struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Lang    string `json:"lang"`
}

// LineItem is a single requested product or service entry.
type LineItem struct {
	SKU       string          `json:"sku"`
	Qty       int             `json:"qty"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	MarginPct decimal.Decimal `json:"margin_pct"`
}

// PricedLineItem is a line item with its derived unit price and total.
type PricedLineItem struct {
	LineItem
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Quotation is the full priced document returned to the caller. It is
// built once per request and never mutated or persisted.
type Quotation struct {
	ID            uuid.UUID        `json:"id"`
	Number        string           `json:"number"`
	Client        Client           `json:"client"`
	Currency      string           `json:"currency"`
	Items         []PricedLineItem `json:"items"`
	GrandTotal    decimal.Decimal  `json:"grand_total"`
	DeliveryTerms string           `json:"delivery_terms,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// ValidationError marks input rejected at the boundary. It maps to a
// client error, never a server error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var hundred = decimal.NewFromInt(100)

// round2 finalizes a monetary value at two decimal places, rounding half
// away from zero. All monetary rounding in the service goes through here
// so line totals and the grand total stay consistent.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Price turns validated line items into priced line items and a grand
// total. It is a pure function: output order matches input order, and
// identical input always yields identical output.
//
// unit_price = round2(unit_cost * (1 + margin_pct/100))
// line_total = round2(unit_price * qty)
// grand_total = round2(sum of line_total)
//
// Rounding is applied once per item so totals never drift from the sum
// of their parts.
func Price(items []LineItem) ([]PricedLineItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, &ValidationError{Field: "items", Reason: "at least one line item is required"}
	}

	priced := make([]PricedLineItem, 0, len(items))
	grandTotal := decimal.Zero
	for i, item := range items {
		if item.SKU == "" {
			return nil, decimal.Zero, &ValidationError{Field: fmt.Sprintf("items[%d].sku", i), Reason: "must not be empty"}
		}
		if item.Qty <= 0 {
			return nil, decimal.Zero, &ValidationError{Field: fmt.Sprintf("items[%d].qty", i), Reason: "must be greater than zero"}
		}
		if item.UnitCost.IsNegative() {
			return nil, decimal.Zero, &ValidationError{Field: fmt.Sprintf("items[%d].unit_cost", i), Reason: "must not be negative"}
		}
		if item.MarginPct.IsNegative() {
			return nil, decimal.Zero, &ValidationError{Field: fmt.Sprintf("items[%d].margin_pct", i), Reason: "must not be negative"}
		}

		// unit_cost * (100 + margin_pct) shifted down by two digits is
		// exact in decimal arithmetic; only the final rounding loses
		// precision.
		unitPrice := round2(item.UnitCost.Mul(hundred.Add(item.MarginPct)).Shift(-2))
		lineTotal := round2(unitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
		priced = append(priced, PricedLineItem{
			LineItem:  item,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
		grandTotal = grandTotal.Add(lineTotal)
	}
	return priced, round2(grandTotal), nil
}

// Params collects the caller-supplied fields of a quotation request.
type Params struct {
	Client        Client
	Currency      string
	Items         []LineItem
	DeliveryTerms string
	Notes         string
}

// NewQuotation prices the requested items and assembles the full
// quotation document. Identity fields (ID, Number, GeneratedAt) are the
// only non-deterministic parts; the pricing itself is Price.
func NewQuotation(p Params) (Quotation, error) {
	if p.Client.Name == "" {
		return Quotation{}, &ValidationError{Field: "client.name", Reason: "must not be empty"}
	}
	if !SupportedLang(p.Client.Lang) {
		return Quotation{}, &ValidationError{Field: "client.lang", Reason: `must be "en" or "ar"`}
	}
	if p.Currency == "" {
		return Quotation{}, &ValidationError{Field: "currency", Reason: "must not be empty"}
	}
	items, total, err := Price(p.Items)
	if err != nil {
		return Quotation{}, err
	}
	now := time.Now().UTC()
	return Quotation{
		ID:            uuid.New(),
		Number:        "QT-" + now.Format("20060102150405"),
		Client:        p.Client,
		Currency:      p.Currency,
		Items:         items,
		GrandTotal:    total,
		DeliveryTerms: p.DeliveryTerms,
		Notes:         p.Notes,
		GeneratedAt:   now,
	}, nil
}

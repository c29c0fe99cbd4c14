package billing

import (
	"fmt"

	"backend/pkg/apperror"

	"github.com/shopspring/decimal"
)

// LineItemInput is one line of an invoice before totals are computed
type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // percentage in [0,100]
	Discount    decimal.Decimal
}

// LineItem is a line item with its derived total filled in
type LineItem struct {
	LineItemInput
	Extended decimal.Decimal // quantity*unitPrice, rounded
	Tax      decimal.Decimal // extended*taxRate/100, rounded
	Total    decimal.Decimal // extended + tax - discount
}

// Totals aggregates the monetary result of an invoice computation
type Totals struct {
	Items     []LineItem
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// round2 is the single rounding point for monetary values: half-up to 2
// decimal places per line component, applied before aggregation so sums
// never drift.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeTotals fills per-item totals and aggregates subtotal, tax and total.
// Pure function: identical inputs always produce identical output. The total
// is not clamped at zero; ValidateItems keeps a negative total out of reach
// by bounding discounts at the boundary.
func ComputeTotals(items []LineItemInput, discountAmount decimal.Decimal) Totals {
	out := Totals{
		Items:     make([]LineItem, 0, len(items)),
		Subtotal:  decimal.Zero,
		TaxAmount: decimal.Zero,
	}

	for _, in := range items {
		extended := round2(in.Quantity.Mul(in.UnitPrice))
		tax := round2(extended.Mul(in.TaxRate).Div(hundred))

		out.Items = append(out.Items, LineItem{
			LineItemInput: in,
			Extended:      extended,
			Tax:           tax,
			Total:         extended.Add(tax).Sub(round2(in.Discount)),
		})
		out.Subtotal = out.Subtotal.Add(extended)
		out.TaxAmount = out.TaxAmount.Add(tax)
	}

	out.Total = out.Subtotal.Add(out.TaxAmount).Sub(round2(discountAmount))
	return out
}

// ValidateItems enforces the line-item input constraints before any totals
// are computed: non-empty sequence, quantity >= 0, unitPrice >= 0, taxRate in
// [0,100], and per-item discount within [0, extended+tax].
func ValidateItems(items []LineItemInput) error {
	if len(items) == 0 {
		return apperror.Validationf("invoice must contain at least one item")
	}

	for i, item := range items {
		if item.Description == "" {
			return apperror.Validationf("item %d: description is required", i+1)
		}
		if item.Quantity.IsNegative() {
			return apperror.Validationf("item %d: quantity must not be negative", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.Validationf("item %d: unit price must not be negative", i+1)
		}
		if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(hundred) {
			return apperror.Validationf("item %d: tax rate must be between 0 and 100", i+1)
		}
		if item.Discount.IsNegative() {
			return apperror.Validationf("item %d: discount must not be negative", i+1)
		}
		extended := round2(item.Quantity.Mul(item.UnitPrice))
		tax := round2(extended.Mul(item.TaxRate).Div(hundred))
		if item.Discount.GreaterThan(extended.Add(tax)) {
			return apperror.Validationf("item %d: discount exceeds item subtotal", i+1)
		}
	}
	return nil
}

// ValidateDiscount bounds the invoice-level discount at [0, subtotal+tax]
func ValidateDiscount(discountAmount, subtotal, taxAmount decimal.Decimal) error {
	if discountAmount.IsNegative() {
		return apperror.Validationf("discount amount must not be negative")
	}
	if discountAmount.GreaterThan(subtotal.Add(taxAmount)) {
		return fmt.Errorf("%w: discount amount %s exceeds subtotal plus tax %s",
			apperror.ErrValidation, discountAmount.StringFixed(2), subtotal.Add(taxAmount).StringFixed(2))
	}
	return nil
}

package billing

import (
	"testing"

	"backend/pkg/apperror"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(qty, price, rate, discount string) LineItemInput {
	return LineItemInput{
		Description: "work",
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
		TaxRate:     dec(rate),
		Discount:    dec(discount),
	}
}

func TestComputeTotalsSingleItem(t *testing.T) {
	totals := ComputeTotals([]LineItemInput{item("2", "50", "10", "0")}, decimal.Zero)

	if !totals.Subtotal.Equal(dec("100")) {
		t.Fatalf("expected subtotal 100 got %s", totals.Subtotal)
	}
	if !totals.TaxAmount.Equal(dec("10")) {
		t.Fatalf("expected tax 10 got %s", totals.TaxAmount)
	}
	if !totals.Total.Equal(dec("110")) {
		t.Fatalf("expected total 110 got %s", totals.Total)
	}
	if !totals.Items[0].Total.Equal(dec("110")) {
		t.Fatalf("expected item total 110 got %s", totals.Items[0].Total)
	}
}

func TestComputeTotalsItemDiscount(t *testing.T) {
	totals := ComputeTotals([]LineItemInput{item("1", "200", "5", "15")}, decimal.Zero)

	// Item discount affects the line total but not subtotal or tax.
	if !totals.Subtotal.Equal(dec("200")) {
		t.Fatalf("expected subtotal 200 got %s", totals.Subtotal)
	}
	if !totals.TaxAmount.Equal(dec("10")) {
		t.Fatalf("expected tax 10 got %s", totals.TaxAmount)
	}
	if !totals.Items[0].Total.Equal(dec("195")) {
		t.Fatalf("expected item total 195 got %s", totals.Items[0].Total)
	}
	if !totals.Total.Equal(dec("210")) {
		t.Fatalf("expected total 210 got %s", totals.Total)
	}
}

func TestComputeTotalsInvoiceDiscount(t *testing.T) {
	totals := ComputeTotals([]LineItemInput{item("3", "40", "0", "0")}, dec("20"))

	if !totals.Total.Equal(dec("100")) {
		t.Fatalf("expected total 100 got %s", totals.Total)
	}
}

func TestComputeTotalsRoundsPerLineBeforeAggregation(t *testing.T) {
	// 3 * 0.333 = 0.999 -> rounds to 1.00 per line; two lines sum to 2.00,
	// not round(1.998).
	items := []LineItemInput{
		item("3", "0.333", "0", "0"),
		item("3", "0.333", "0", "0"),
	}
	totals := ComputeTotals(items, decimal.Zero)

	if !totals.Subtotal.Equal(dec("2.00")) {
		t.Fatalf("expected subtotal 2.00 got %s", totals.Subtotal)
	}
	for i, it := range totals.Items {
		if !it.Extended.Equal(dec("1.00")) {
			t.Fatalf("line %d: expected extended 1.00 got %s", i, it.Extended)
		}
	}
}

func TestComputeTotalsRoundsDiscountsBeforeSubtraction(t *testing.T) {
	// A sub-cent discount is rounded half-up like every other component, so
	// line and invoice totals never carry more than 2 decimal places.
	totals := ComputeTotals([]LineItemInput{item("1", "10", "5", "0.005")}, dec("0.005"))

	if !totals.Items[0].Total.Equal(dec("10.49")) {
		t.Fatalf("expected item total 10.49 got %s", totals.Items[0].Total)
	}
	if !totals.Total.Equal(dec("10.49")) {
		t.Fatalf("expected total 10.49 got %s", totals.Total)
	}
}

func TestComputeTotalsSubtotalMatchesManualSum(t *testing.T) {
	items := []LineItemInput{
		item("2", "49.99", "10", "0"),
		item("0.5", "120", "17.5", "3"),
		item("7", "8.25", "0", "0"),
		item("0", "999", "100", "0"),
	}
	totals := ComputeTotals(items, decimal.Zero)

	want := decimal.Zero
	wantTax := decimal.Zero
	for _, in := range items {
		ext := in.Quantity.Mul(in.UnitPrice).Round(2)
		want = want.Add(ext)
		wantTax = wantTax.Add(ext.Mul(in.TaxRate).Div(decimal.NewFromInt(100)).Round(2))
	}
	if !totals.Subtotal.Equal(want) {
		t.Fatalf("expected subtotal %s got %s", want, totals.Subtotal)
	}
	if !totals.TaxAmount.Equal(wantTax) {
		t.Fatalf("expected tax %s got %s", wantTax, totals.TaxAmount)
	}
	if !totals.Total.Equal(want.Add(wantTax)) {
		t.Fatalf("expected total %s got %s", want.Add(wantTax), totals.Total)
	}
}

func TestComputeTotalsIsDeterministic(t *testing.T) {
	items := []LineItemInput{
		item("1.333", "7.77", "12.5", "0.33"),
		item("9", "0.01", "100", "0"),
	}
	first := ComputeTotals(items, dec("1.11"))
	second := ComputeTotals(items, dec("1.11"))

	if !first.Total.Equal(second.Total) || !first.Subtotal.Equal(second.Subtotal) || !first.TaxAmount.Equal(second.TaxAmount) {
		t.Fatalf("repeated computation diverged: %+v vs %+v", first, second)
	}
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	totals := ComputeTotals(nil, decimal.Zero)
	if !totals.Total.IsZero() || !totals.Subtotal.IsZero() || !totals.TaxAmount.IsZero() {
		t.Fatalf("expected zero totals for empty input, got %+v", totals)
	}
}

func TestValidateItems(t *testing.T) {
	cases := []struct {
		name  string
		items []LineItemInput
		ok    bool
	}{
		{"valid", []LineItemInput{item("2", "50", "10", "0")}, true},
		{"empty", nil, false},
		{"negative quantity", []LineItemInput{item("-1", "50", "0", "0")}, false},
		{"negative price", []LineItemInput{item("1", "-50", "0", "0")}, false},
		{"tax above 100", []LineItemInput{item("1", "50", "101", "0")}, false},
		{"negative tax", []LineItemInput{item("1", "50", "-1", "0")}, false},
		{"negative discount", []LineItemInput{item("1", "50", "0", "-1")}, false},
		{"discount over item total", []LineItemInput{item("1", "50", "10", "56")}, false},
		{"discount at item total", []LineItemInput{item("1", "50", "10", "55")}, true},
		{"zero quantity", []LineItemInput{item("0", "50", "10", "0")}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateItems(tc.items)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !apperror.IsValidation(err) {
					t.Fatalf("expected validation error class, got %v", err)
				}
			}
		})
	}

	missingDesc := []LineItemInput{{Quantity: dec("1"), UnitPrice: dec("10")}}
	if err := ValidateItems(missingDesc); err == nil {
		t.Fatal("expected error for missing description")
	}
}

func TestValidateDiscount(t *testing.T) {
	if err := ValidateDiscount(dec("10"), dec("100"), dec("10")); err != nil {
		t.Fatalf("expected valid discount, got %v", err)
	}
	if err := ValidateDiscount(dec("110"), dec("100"), dec("10")); err != nil {
		t.Fatalf("discount equal to subtotal+tax should pass, got %v", err)
	}
	if err := ValidateDiscount(dec("110.01"), dec("100"), dec("10")); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := ValidateDiscount(dec("-1"), dec("100"), dec("10")); !apperror.IsValidation(err) {
		t.Fatalf("expected validation error for negative discount, got %v", err)
	}
}

package billing

import (
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

func TestDeriveStatus(t *testing.T) {
	total := dec("100")

	paid := dec("60")
	due := total.Sub(paid)
	if got := DeriveStatus(model.InvoiceSent, paid, due); got != model.InvoicePartial {
		t.Fatalf("after paying 60 of 100 expected partial, got %s", got)
	}

	paid = paid.Add(dec("40"))
	due = total.Sub(paid)
	if got := DeriveStatus(model.InvoicePartial, paid, due); got != model.InvoicePaid {
		t.Fatalf("after paying in full expected paid, got %s", got)
	}

	// Overpayment still resolves to paid.
	if got := DeriveStatus(model.InvoicePartial, dec("150"), dec("-50")); got != model.InvoicePaid {
		t.Fatalf("overpayment expected paid, got %s", got)
	}

	// No payments: caller-set status is preserved.
	if got := DeriveStatus(model.InvoiceSent, decimal.Zero, total); got != model.InvoiceSent {
		t.Fatalf("expected status unchanged, got %s", got)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{model.InvoiceDraft, model.InvoiceSent},
		{model.InvoiceDraft, model.InvoiceCancelled},
		{model.InvoiceSent, model.InvoiceViewed},
		{model.InvoiceSent, model.InvoiceOverdue},
		{model.InvoiceViewed, model.InvoiceCancelled},
		{model.InvoicePartial, model.InvoiceOverdue},
		{model.InvoiceOverdue, model.InvoiceCancelled},
		{model.InvoiceDraft, model.InvoiceDraft}, // self no-op
		{model.InvoicePaid, model.InvoicePaid},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{model.InvoiceDraft, model.InvoicePaid},    // only payments reach paid
		{model.InvoiceDraft, model.InvoicePartial}, // only payments reach partial
		{model.InvoiceSent, model.InvoiceDraft},
		{model.InvoicePaid, model.InvoiceCancelled}, // paid is terminal
		{model.InvoiceCancelled, model.InvoiceSent}, // cancelled is terminal
		{model.InvoiceViewed, model.InvoiceSent},
		{"bogus", model.InvoiceSent},
	}
	for _, pair := range denied {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}

func TestIsStatus(t *testing.T) {
	for _, s := range []string{
		model.InvoiceDraft, model.InvoiceSent, model.InvoiceViewed,
		model.InvoicePaid, model.InvoicePartial, model.InvoiceOverdue, model.InvoiceCancelled,
	} {
		if !IsStatus(s) {
			t.Errorf("expected %q to be a known status", s)
		}
	}
	if IsStatus("approved") {
		t.Error("unexpected status accepted")
	}
}

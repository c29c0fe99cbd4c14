package billing

import (
	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// transitions is the explicit status table. paid and partial are absent from
// every target set on purpose: they are reachable only through DeriveStatus
// when a payment lands. cancelled and paid are terminal.
var transitions = map[string]map[string]bool{
	model.InvoiceDraft: {
		model.InvoiceSent:      true,
		model.InvoiceCancelled: true,
	},
	model.InvoiceSent: {
		model.InvoiceViewed:    true,
		model.InvoiceOverdue:   true,
		model.InvoiceCancelled: true,
	},
	model.InvoiceViewed: {
		model.InvoiceOverdue:   true,
		model.InvoiceCancelled: true,
	},
	model.InvoicePartial: {
		model.InvoiceOverdue:   true,
		model.InvoiceCancelled: true,
	},
	model.InvoiceOverdue: {
		model.InvoiceCancelled: true,
	},
	model.InvoicePaid:      {},
	model.InvoiceCancelled: {},
}

// IsStatus reports whether s is a known invoice status
func IsStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an externally-requested status change is
// legal. Re-asserting the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// DeriveStatus computes the payment-driven status. amountDue is clamped at
// zero conceptually: any due <= 0 means paid. This is the only path into
// paid or partial.
func DeriveStatus(current string, amountPaid, amountDue decimal.Decimal) string {
	switch {
	case amountDue.LessThanOrEqual(decimal.Zero):
		return model.InvoicePaid
	case amountPaid.GreaterThan(decimal.Zero):
		return model.InvoicePartial
	default:
		return current
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants
const (
	InvoiceDraft     = "draft"
	InvoiceSent      = "sent"
	InvoiceViewed    = "viewed"
	InvoicePaid      = "paid"
	InvoicePartial   = "partial"
	InvoiceOverdue   = "overdue"
	InvoiceCancelled = "cancelled"
)

// PaymentMethod enum constants
const (
	PaymentCash         = "cash"
	PaymentCreditCard   = "credit_card"
	PaymentDebitCard    = "debit_card"
	PaymentBankTransfer = "bank_transfer"
	PaymentPix          = "pix"
	PaymentCheck        = "check"
)

// ReminderMethod enum constants
const (
	ReminderEmail = "email"
	ReminderSMS   = "sms"
)

// Invoice is a billable record for work performed, composed of line items
// and an append-only payment history. amount_due = total - amount_paid.
type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_company_number" json:"company_id"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer       *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AppointmentID  *uuid.UUID      `gorm:"type:uuid" json:"appointment_id"`
	Appointment    *Appointment    `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	InvoiceNumber  string          `gorm:"type:varchar(40);not null;uniqueIndex:idx_invoices_company_number" json:"invoice_number"`
	IssueDate      time.Time       `gorm:"not null" json:"issue_date"`
	DueDate        time.Time       `gorm:"not null;index" json:"due_date"`
	Status         string          `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	AmountDue      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount_due"`
	Currency       string          `gorm:"type:varchar(3);default:'BRL'" json:"currency"`
	Notes          string          `gorm:"type:text" json:"notes"`
	Terms          string          `gorm:"type:text" json:"terms"`
	Payments       []Payment       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments"`
	Reminders      []Reminder      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"reminders"`
	CreatedBy      uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InvoiceItem is one billed unit of work or material.
// total = round2(quantity*unit_price) + round2(quantity*unit_price*tax_rate/100) - discount
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position    int             `gorm:"not null" json:"position"` // preserves line ordering
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate"` // percentage in [0,100]
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"discount"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
}

// Payment is one settlement against an invoice. Append-only, never mutated.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method        string          `gorm:"type:varchar(20);not null" json:"method"`
	TransactionID string          `gorm:"type:varchar(100);index" json:"transaction_id,omitempty"` // idempotency key when present
	PaidAt        time.Time       `gorm:"not null" json:"paid_at"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Reminder is one entry in an invoice's append-only reminder log
type Reminder struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	SentAt    time.Time `gorm:"not null" json:"sent_at"`
	Method    string    `gorm:"type:varchar(10);not null" json:"method"` // email, sms
	CreatedAt time.Time `json:"created_at"`
}

// InvoiceCounter holds the per-company sequence used for invoice numbering.
// Incremented under a row lock in the same transaction as the invoice insert.
type InvoiceCounter struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primaryKey" json:"company_id"`
	LastSeq   int64     `gorm:"not null;default:0" json:"last_seq"`
	UpdatedAt time.Time `json:"updated_at"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/billing"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type InvoiceItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	TaxRate     string `json:"tax_rate"` // percentage, defaults to 0
	Discount    string `json:"discount"` // defaults to 0
}

type CreateInvoiceRequest struct {
	CustomerID     string               `json:"customer_id" binding:"required"`
	AppointmentID  string               `json:"appointment_id"`
	Items          []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	DiscountAmount string               `json:"discount_amount"`
	DueDate        string               `json:"due_date" binding:"required"` // RFC3339
	Status         string               `json:"status"`                      // optional initial status, defaults to draft
	Notes          string               `json:"notes"`
	Terms          string               `json:"terms"`
}

type UpdateInvoiceRequest struct {
	Items          []InvoiceItemRequest `json:"items"` // when present, totals are recomputed
	DiscountAmount *string              `json:"discount_amount"`
	DueDate        *string              `json:"due_date"`
	Status         *string              `json:"status"`
	Notes          *string              `json:"notes"`
	Terms          *string              `json:"terms"`
}

type AddPaymentRequest struct {
	Amount        string `json:"amount" binding:"required"`
	Method        string `json:"method" binding:"required,oneof=cash credit_card debit_card bank_transfer pix check"`
	TransactionID string `json:"transaction_id"` // idempotency key when supplied
	PaidAt        string `json:"paid_at"`        // RFC3339, defaults to now
	Notes         string `json:"notes"`
}

type AddReminderRequest struct {
	Method string `json:"method" binding:"required,oneof=email sms"`
}

type InvoiceListQuery struct {
	Status     string
	CustomerID string
	StartDate  string
	EndDate    string
	Page       int
	Limit      int
}

type InvoiceItemResponse struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

type PaymentResponse struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id,omitempty"`
	PaidAt        string `json:"paid_at"`
	Notes         string `json:"notes,omitempty"`
}

type ReminderResponse struct {
	SentAt string `json:"sent_at"`
	Method string `json:"method"`
}

type InvoiceResponse struct {
	ID             string                `json:"id"`
	CompanyID      string                `json:"company_id"`
	CustomerID     string                `json:"customer_id"`
	AppointmentID  *string               `json:"appointment_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	IssueDate      string                `json:"issue_date"`
	DueDate        string                `json:"due_date"`
	Status         string                `json:"status"`
	Items          []InvoiceItemResponse `json:"items"`
	Subtotal       string                `json:"subtotal"`
	TaxAmount      string                `json:"tax_amount"`
	DiscountAmount string                `json:"discount_amount"`
	Total          string                `json:"total"`
	AmountPaid     string                `json:"amount_paid"`
	AmountDue      string                `json:"amount_due"`
	Currency       string                `json:"currency"`
	Notes          string                `json:"notes,omitempty"`
	Terms          string                `json:"terms,omitempty"`
	Payments       []PaymentResponse     `json:"payments"`
	Reminders      []ReminderResponse    `json:"reminders"`
	CreatedAt      string                `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, scope Scope, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, scope Scope, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, scope Scope, query InvoiceListQuery) ([]InvoiceResponse, int64, error)
	UpdateInvoice(ctx context.Context, scope Scope, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, scope Scope, id string) error
	AddPayment(ctx context.Context, scope Scope, id string, req AddPaymentRequest) (InvoiceResponse, error)
	AddReminder(ctx context.Context, scope Scope, id string, req AddReminderRequest) error
}

type invoiceService struct {
	invoiceRepo     repository.InvoiceRepository
	customerRepo    repository.CustomerRepository
	appointmentRepo repository.AppointmentRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	events          EventPublisher
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	appointmentRepo repository.AppointmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		appointmentRepo: appointmentRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		events:          events,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, scope Scope, req CreateInvoiceRequest) (InvoiceResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return InvoiceResponse{}, apperror.Validationf("invalid customer_id: %v", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, scope.CompanyID, customerID); err != nil {
		return InvoiceResponse{}, notFoundOr(err, "customer %s", req.CustomerID)
	}

	var appointmentID *uuid.UUID
	if req.AppointmentID != "" {
		parsed, parseErr := uuid.Parse(req.AppointmentID)
		if parseErr != nil {
			return InvoiceResponse{}, apperror.Validationf("invalid appointment_id: %v", parseErr)
		}
		if _, err := s.appointmentRepo.FindByID(ctx, scope.CompanyID, parsed); err != nil {
			return InvoiceResponse{}, notFoundOr(err, "appointment %s", req.AppointmentID)
		}
		appointmentID = &parsed
	}

	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return InvoiceResponse{}, apperror.Validationf("invalid due_date: %v", err)
	}

	items, err := parseItems(req.Items)
	if err != nil {
		return InvoiceResponse{}, err
	}
	if err := billing.ValidateItems(items); err != nil {
		return InvoiceResponse{}, err
	}

	discountAmount, err := parseAmount(req.DiscountAmount, "discount_amount")
	if err != nil {
		return InvoiceResponse{}, err
	}

	totals := billing.ComputeTotals(items, discountAmount)
	if err := billing.ValidateDiscount(discountAmount, totals.Subtotal, totals.TaxAmount); err != nil {
		return InvoiceResponse{}, err
	}

	status := model.InvoiceDraft
	if req.Status != "" {
		if !billing.IsStatus(req.Status) {
			return InvoiceResponse{}, apperror.Validationf("unknown status %q", req.Status)
		}
		if req.Status == model.InvoicePaid || req.Status == model.InvoicePartial {
			return InvoiceResponse{}, apperror.Validationf("status %q is only reachable through payments", req.Status)
		}
		status = req.Status
	}

	invoice := model.Invoice{
		CompanyID:      scope.CompanyID,
		CustomerID:     customerID,
		AppointmentID:  appointmentID,
		IssueDate:      time.Now(),
		DueDate:        dueDate,
		Status:         status,
		Items:          buildItems(totals.Items),
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		DiscountAmount: discountAmount,
		Total:          totals.Total,
		AmountPaid:     decimal.Zero,
		AmountDue:      totals.Total,
		Notes:          req.Notes,
		Terms:          req.Terms,
		CreatedBy:      scope.UserID,
	}

	// Counter increment and invoice insert share one transaction: the row
	// lock on the counter serializes concurrent creations per company, so
	// invoice numbers cannot collide.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seq, seqErr := s.invoiceRepo.NextSequence(txCtx, scope.CompanyID)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", seqErr)
		}
		invoice.InvoiceNumber = fmt.Sprintf("INV-%d-%05d", time.Now().UnixMilli(), seq)
		return s.invoiceRepo.Create(txCtx, &invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit(ctx, scope, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber, req)

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, scope Scope, id string) (InvoiceResponse, error) {
	invoice, err := s.find(ctx, scope, id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, scope Scope, query InvoiceListQuery) ([]InvoiceResponse, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	filter := repository.InvoiceListFilter{
		Status: query.Status,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if query.CustomerID != "" {
		parsed, err := uuid.Parse(query.CustomerID)
		if err != nil {
			return nil, 0, apperror.Validationf("invalid customer filter: %v", err)
		}
		filter.CustomerID = &parsed
	}
	if query.StartDate != "" {
		t, err := time.Parse(time.RFC3339, query.StartDate)
		if err != nil {
			return nil, 0, apperror.Validationf("invalid start_date: %v", err)
		}
		filter.StartDate = &t
	}
	if query.EndDate != "" {
		t, err := time.Parse(time.RFC3339, query.EndDate)
		if err != nil {
			return nil, 0, apperror.Validationf("invalid end_date: %v", err)
		}
		filter.EndDate = &t
	}

	invoices, total, err := s.invoiceRepo.ListByCompany(ctx, scope.CompanyID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, scope Scope, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoice, err := s.find(ctx, scope, id)
	if err != nil {
		return InvoiceResponse{}, err
	}

	if req.Status != nil && *req.Status != invoice.Status {
		if !billing.IsStatus(*req.Status) {
			return InvoiceResponse{}, apperror.Validationf("unknown status %q", *req.Status)
		}
		if !billing.CanTransition(invoice.Status, *req.Status) {
			return InvoiceResponse{}, apperror.Validationf("illegal status transition %s -> %s", invoice.Status, *req.Status)
		}
		invoice.Status = *req.Status
	}

	discountAmount := invoice.DiscountAmount
	if req.DiscountAmount != nil {
		discountAmount, err = parseAmount(*req.DiscountAmount, "discount_amount")
		if err != nil {
			return InvoiceResponse{}, err
		}
	}

	var newItems []model.InvoiceItem
	switch {
	case req.Items != nil:
		if invoice.Status == model.InvoicePaid {
			return InvoiceResponse{}, apperror.Conflictf("cannot change items of a paid invoice")
		}

		items, parseErr := parseItems(req.Items)
		if parseErr != nil {
			return InvoiceResponse{}, parseErr
		}
		if err := billing.ValidateItems(items); err != nil {
			return InvoiceResponse{}, err
		}

		totals := billing.ComputeTotals(items, discountAmount)
		if err := billing.ValidateDiscount(discountAmount, totals.Subtotal, totals.TaxAmount); err != nil {
			return InvoiceResponse{}, err
		}

		newItems = buildItems(totals.Items)
		for i := range newItems {
			newItems[i].InvoiceID = invoice.ID
		}

		invoice.Subtotal = totals.Subtotal
		invoice.TaxAmount = totals.TaxAmount
		invoice.DiscountAmount = discountAmount
		invoice.Total = totals.Total
		// Prior payments stay counted against the new total.
		invoice.AmountDue = totals.Total.Sub(invoice.AmountPaid)
		invoice.Items = newItems
	case req.DiscountAmount != nil:
		// Discount-only patch: validate against the stored subtotal and tax,
		// then recompute the totals the same way a full item rewrite would.
		if err := billing.ValidateDiscount(discountAmount, invoice.Subtotal, invoice.TaxAmount); err != nil {
			return InvoiceResponse{}, err
		}
		invoice.DiscountAmount = discountAmount
		invoice.Total = invoice.Subtotal.Add(invoice.TaxAmount).Sub(discountAmount.Round(2))
		invoice.AmountDue = invoice.Total.Sub(invoice.AmountPaid)
	}

	if req.DueDate != nil {
		dueDate, parseErr := time.Parse(time.RFC3339, *req.DueDate)
		if parseErr != nil {
			return InvoiceResponse{}, apperror.Validationf("invalid due_date: %v", parseErr)
		}
		invoice.DueDate = dueDate
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.Terms != nil {
		invoice.Terms = *req.Terms
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if newItems != nil {
			if itemsErr := s.invoiceRepo.ReplaceItems(txCtx, invoice.ID, newItems); itemsErr != nil {
				return itemsErr
			}
		}
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.audit(ctx, scope, model.ActionUpdateInvoice, invoice.ID.String(), invoice.InvoiceNumber, req)

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, scope Scope, id string) error {
	invoice, err := s.find(ctx, scope, id)
	if err != nil {
		return err
	}

	// Role makes no difference here: a paid invoice is immutable.
	if invoice.Status == model.InvoicePaid {
		return apperror.Conflictf("cannot delete a paid invoice")
	}

	if err := s.invoiceRepo.Delete(ctx, invoice); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.audit(ctx, scope, model.ActionDeleteInvoice, invoice.ID.String(), invoice.InvoiceNumber, nil)
	return nil
}

func (s *invoiceService) AddPayment(ctx context.Context, scope Scope, id string, req AddPaymentRequest) (InvoiceResponse, error) {
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return InvoiceResponse{}, err
	}
	if !amount.IsPositive() {
		return InvoiceResponse{}, apperror.Validationf("payment amount must be positive")
	}

	paidAt := time.Now()
	if req.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			return InvoiceResponse{}, apperror.Validationf("invalid paid_at: %v", err)
		}
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.find(txCtx, scope, id)
		if findErr != nil {
			return findErr
		}

		if req.TransactionID != "" {
			seen, dupErr := s.invoiceRepo.HasPaymentWithTransactionID(txCtx, invoice.ID, req.TransactionID)
			if dupErr != nil {
				return dupErr
			}
			if seen {
				return apperror.Conflictf("payment with transaction id %q already recorded", req.TransactionID)
			}
		}

		payment := model.Payment{
			InvoiceID:     invoice.ID,
			Amount:        amount,
			Method:        req.Method,
			TransactionID: req.TransactionID,
			PaidAt:        paidAt,
			Notes:         req.Notes,
		}
		if appendErr := s.invoiceRepo.AppendPayment(txCtx, &payment); appendErr != nil {
			return appendErr
		}

		invoice.AmountPaid = invoice.AmountPaid.Add(amount)
		invoice.AmountDue = invoice.Total.Sub(invoice.AmountPaid)
		invoice.Status = billing.DeriveStatus(invoice.Status, invoice.AmountPaid, invoice.AmountDue)
		invoice.Payments = append(invoice.Payments, payment)

		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit(ctx, scope, model.ActionAddPayment, invoice.ID.String(), invoice.InvoiceNumber, req)
	s.events.Publish("invoice."+invoice.Status, map[string]interface{}{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"amount_paid":    invoice.AmountPaid.StringFixed(2),
		"amount_due":     invoice.AmountDue.StringFixed(2),
	})

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) AddReminder(ctx context.Context, scope Scope, id string, req AddReminderRequest) error {
	invoice, err := s.find(ctx, scope, id)
	if err != nil {
		return err
	}

	reminder := model.Reminder{
		InvoiceID: invoice.ID,
		SentAt:    time.Now(),
		Method:    req.Method,
	}
	if err := s.invoiceRepo.AppendReminder(ctx, &reminder); err != nil {
		return fmt.Errorf("failed to record reminder: %w", err)
	}

	s.audit(ctx, scope, model.ActionSendReminder, invoice.ID.String(), invoice.InvoiceNumber, req)
	s.events.Publish("invoice.reminder", map[string]interface{}{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"method":         req.Method,
	})
	return nil
}

// --- Helpers ---

func (s *invoiceService) find(ctx context.Context, scope Scope, id string) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validationf("invalid invoice id: %v", err)
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, scope.CompanyID, invoiceID)
	if err != nil {
		return nil, notFoundOr(err, "invoice %s", id)
	}
	return invoice, nil
}

func (s *invoiceService) audit(ctx context.Context, scope Scope, action, entityID, entityName string, payload interface{}) {
	details := ""
	if payload != nil {
		raw, _ := json.Marshal(payload)
		details = string(raw)
	}
	userID := scope.UserID
	// Audit failures never fail the operation.
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		CompanyID:  scope.CompanyID,
		UserID:     &userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	})
}

func parseItems(reqs []InvoiceItemRequest) ([]billing.LineItemInput, error) {
	items := make([]billing.LineItemInput, 0, len(reqs))
	for i, r := range reqs {
		quantity, err := decimal.NewFromString(r.Quantity)
		if err != nil {
			return nil, apperror.Validationf("item %d: invalid quantity: %v", i+1, err)
		}
		unitPrice, err := decimal.NewFromString(r.UnitPrice)
		if err != nil {
			return nil, apperror.Validationf("item %d: invalid unit_price: %v", i+1, err)
		}
		taxRate := decimal.Zero
		if r.TaxRate != "" {
			taxRate, err = decimal.NewFromString(r.TaxRate)
			if err != nil {
				return nil, apperror.Validationf("item %d: invalid tax_rate: %v", i+1, err)
			}
		}
		discount := decimal.Zero
		if r.Discount != "" {
			discount, err = decimal.NewFromString(r.Discount)
			if err != nil {
				return nil, apperror.Validationf("item %d: invalid discount: %v", i+1, err)
			}
		}
		items = append(items, billing.LineItemInput{
			Description: r.Description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TaxRate:     taxRate,
			Discount:    discount,
		})
	}
	return items, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validationf("invalid %s: %v", field, err)
	}
	return amount, nil
}

func buildItems(lines []billing.LineItem) []model.InvoiceItem {
	items := make([]model.InvoiceItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, model.InvoiceItem{
			Position:    i,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
			Discount:    line.Discount,
			Total:       line.Total,
		})
	}
	return items
}

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || apperror.IsNotFound(err) {
		return apperror.NotFoundf(format+" not found", args...)
	}
	return err
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID.String(),
		CompanyID:      inv.CompanyID.String(),
		CustomerID:     inv.CustomerID.String(),
		InvoiceNumber:  inv.InvoiceNumber,
		IssueDate:      inv.IssueDate.Format(time.RFC3339),
		DueDate:        inv.DueDate.Format(time.RFC3339),
		Status:         inv.Status,
		Items:          make([]InvoiceItemResponse, 0, len(inv.Items)),
		Subtotal:       inv.Subtotal.StringFixed(2),
		TaxAmount:      inv.TaxAmount.StringFixed(2),
		DiscountAmount: inv.DiscountAmount.StringFixed(2),
		Total:          inv.Total.StringFixed(2),
		AmountPaid:     inv.AmountPaid.StringFixed(2),
		AmountDue:      inv.AmountDue.StringFixed(2),
		Currency:       inv.Currency,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		Payments:       make([]PaymentResponse, 0, len(inv.Payments)),
		Reminders:      make([]ReminderResponse, 0, len(inv.Reminders)),
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
	}

	if inv.AppointmentID != nil {
		s := inv.AppointmentID.String()
		resp.AppointmentID = &s
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, InvoiceItemResponse{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			TaxRate:     item.TaxRate.String(),
			Discount:    item.Discount.StringFixed(2),
			Total:       item.Total.StringFixed(2),
		})
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:            p.ID.String(),
			Amount:        p.Amount.StringFixed(2),
			Method:        p.Method,
			TransactionID: p.TransactionID,
			PaidAt:        p.PaidAt.Format(time.RFC3339),
			Notes:         p.Notes,
		})
	}
	for _, r := range inv.Reminders {
		resp.Reminders = append(resp.Reminders, ReminderResponse{
			SentAt: r.SentAt.Format(time.RFC3339),
			Method: r.Method,
		})
	}

	return resp
}

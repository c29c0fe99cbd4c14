package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mocks ---

type mockInvoiceRepo struct{ mock.Mock }

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, filter repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]model.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error {
	return m.Called(ctx, invoiceID, items).Error(0)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) AppendPayment(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockInvoiceRepo) AppendReminder(ctx context.Context, reminder *model.Reminder) error {
	return m.Called(ctx, reminder).Error(0)
}

func (m *mockInvoiceRepo) HasPaymentWithTransactionID(ctx context.Context, invoiceID uuid.UUID, transactionID string) (bool, error) {
	args := m.Called(ctx, invoiceID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvoiceRepo) NextSequence(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

type mockCustomerRepo struct{ mock.Mock }

func (m *mockCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *mockCustomerRepo) FindByUserID(ctx context.Context, companyID, userID uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context, companyID uuid.UUID, status, search string, page, limit int) ([]model.Customer, int64, error) {
	args := m.Called(ctx, companyID, status, search, page, limit)
	return args.Get(0).([]model.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerRepo) AddAddress(ctx context.Context, address *model.CustomerAddress) error {
	return m.Called(ctx, address).Error(0)
}

type mockAppointmentRepo struct{ mock.Mock }

func (m *mockAppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *mockAppointmentRepo) Update(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) FindByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockAppointmentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, filter repository.AppointmentListFilter) ([]model.Appointment, int64, error) {
	args := m.Called(ctx, companyID, filter)
	return args.Get(0).([]model.Appointment), args.Get(1).(int64), args.Error(2)
}

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, companyID, page, limit)
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

// fakeTxManager runs the closure directly, without a database.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeEvents records published events in order.
type fakeEvents struct {
	events []string
}

func (f *fakeEvents) Publish(event string, data map[string]interface{}) {
	f.events = append(f.events, event)
}

// --- Fixtures ---

type invoiceFixture struct {
	svc          InvoiceService
	invoiceRepo  *mockInvoiceRepo
	customerRepo *mockCustomerRepo
	apptRepo     *mockAppointmentRepo
	auditRepo    *mockAuditRepo
	events       *fakeEvents
	scope        Scope
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo:  new(mockInvoiceRepo),
		customerRepo: new(mockCustomerRepo),
		apptRepo:     new(mockAppointmentRepo),
		auditRepo:    new(mockAuditRepo),
		events:       &fakeEvents{},
		scope: Scope{
			CompanyID: uuid.New(),
			UserID:    uuid.New(),
			Role:      model.RoleAdmin,
		},
	}
	f.svc = NewInvoiceService(f.invoiceRepo, f.customerRepo, f.apptRepo, f.auditRepo, fakeTxManager{}, f.events)
	return f
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Tests ---

func TestCreateInvoice_ComputesTotals(t *testing.T) {
	f := newInvoiceFixture()
	customerID := uuid.New()

	f.customerRepo.On("FindByID", mock.Anything, f.scope.CompanyID, customerID).
		Return(&model.Customer{ID: customerID}, nil)
	f.invoiceRepo.On("NextSequence", mock.Anything, f.scope.CompanyID).Return(int64(7), nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice")).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.CreateInvoice(context.Background(), f.scope, CreateInvoiceRequest{
		CustomerID: customerID.String(),
		DueDate:    time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339),
		Items: []InvoiceItemRequest{
			{Description: "AC repair", Quantity: "2", UnitPrice: "50", TaxRate: "10"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "100.00", resp.Subtotal)
	assert.Equal(t, "10.00", resp.TaxAmount)
	assert.Equal(t, "110.00", resp.Total)
	assert.Equal(t, "0.00", resp.AmountPaid)
	assert.Equal(t, "110.00", resp.AmountDue)
	assert.Equal(t, model.InvoiceDraft, resp.Status)
	assert.Regexp(t, regexp.MustCompile(`^INV-\d+-00007$`), resp.InvoiceNumber)

	f.invoiceRepo.AssertExpectations(t)
}

func TestCreateInvoice_CustomerNotFound(t *testing.T) {
	f := newInvoiceFixture()
	customerID := uuid.New()

	f.customerRepo.On("FindByID", mock.Anything, f.scope.CompanyID, customerID).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.CreateInvoice(context.Background(), f.scope, CreateInvoiceRequest{
		CustomerID: customerID.String(),
		DueDate:    time.Now().Format(time.RFC3339),
		Items:      []InvoiceItemRequest{{Description: "x", Quantity: "1", UnitPrice: "10"}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvoice_RejectsPaidInitialStatus(t *testing.T) {
	f := newInvoiceFixture()
	customerID := uuid.New()

	f.customerRepo.On("FindByID", mock.Anything, f.scope.CompanyID, customerID).
		Return(&model.Customer{ID: customerID}, nil)

	_, err := f.svc.CreateInvoice(context.Background(), f.scope, CreateInvoiceRequest{
		CustomerID: customerID.String(),
		DueDate:    time.Now().Format(time.RFC3339),
		Status:     model.InvoicePaid,
		Items:      []InvoiceItemRequest{{Description: "x", Quantity: "1", UnitPrice: "10"}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestAddPayment_PartialThenPaid(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:         invoiceID,
		CompanyID:  f.scope.CompanyID,
		Status:     model.InvoiceSent,
		Total:      d("110"),
		AmountPaid: decimal.Zero,
		AmountDue:  d("110"),
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)
	f.invoiceRepo.On("AppendPayment", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	f.invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.AddPayment(context.Background(), f.scope, invoiceID.String(), AddPaymentRequest{
		Amount: "60", Method: model.PaymentPix,
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePartial, resp.Status)
	assert.Equal(t, "60.00", resp.AmountPaid)
	assert.Equal(t, "50.00", resp.AmountDue)

	resp, err = f.svc.AddPayment(context.Background(), f.scope, invoiceID.String(), AddPaymentRequest{
		Amount: "50", Method: model.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, resp.Status)
	assert.Equal(t, "0.00", resp.AmountDue)

	assert.Equal(t, []string{"invoice.partial", "invoice.paid"}, f.events.events)
}

func TestAddPayment_DuplicateTransactionID(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:        invoiceID,
		CompanyID: f.scope.CompanyID,
		Status:    model.InvoiceSent,
		Total:     d("100"),
		AmountDue: d("100"),
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)
	f.invoiceRepo.On("HasPaymentWithTransactionID", mock.Anything, invoiceID, "tx-123").Return(true, nil)

	_, err := f.svc.AddPayment(context.Background(), f.scope, invoiceID.String(), AddPaymentRequest{
		Amount: "100", Method: model.PaymentPix, TransactionID: "tx-123",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	f.invoiceRepo.AssertNotCalled(t, "AppendPayment", mock.Anything, mock.Anything)
}

func TestAddPayment_RejectsNonPositiveAmount(t *testing.T) {
	f := newInvoiceFixture()

	_, err := f.svc.AddPayment(context.Background(), f.scope, uuid.NewString(), AddPaymentRequest{
		Amount: "0", Method: model.PaymentCash,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDeleteInvoice_PaidIsImmutable(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:        invoiceID,
		CompanyID: f.scope.CompanyID,
		Status:    model.InvoicePaid,
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)

	err := f.svc.DeleteInvoice(context.Background(), f.scope, invoiceID.String())
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	f.invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateInvoice_IllegalTransition(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:        invoiceID,
		CompanyID: f.scope.CompanyID,
		Status:    model.InvoicePaid,
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)

	draft := model.InvoiceDraft
	_, err := f.svc.UpdateInvoice(context.Background(), f.scope, invoiceID.String(), UpdateInvoiceRequest{
		Status: &draft,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestUpdateInvoice_ItemsOnPaidInvoice(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:        invoiceID,
		CompanyID: f.scope.CompanyID,
		Status:    model.InvoicePaid,
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)

	_, err := f.svc.UpdateInvoice(context.Background(), f.scope, invoiceID.String(), UpdateInvoiceRequest{
		Items: []InvoiceItemRequest{{Description: "x", Quantity: "1", UnitPrice: "200"}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateInvoice_RecomputeKeepsPayments(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:             invoiceID,
		CompanyID:      f.scope.CompanyID,
		Status:         model.InvoiceSent,
		Subtotal:       d("110"),
		Total:          d("110"),
		DiscountAmount: decimal.Zero,
		AmountPaid:     d("60"),
		AmountDue:      d("50"),
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)
	f.invoiceRepo.On("ReplaceItems", mock.Anything, invoiceID, mock.Anything).Return(nil)
	f.invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.UpdateInvoice(context.Background(), f.scope, invoiceID.String(), UpdateInvoiceRequest{
		Items: []InvoiceItemRequest{{Description: "rework", Quantity: "1", UnitPrice: "200"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "200.00", resp.Total)
	assert.Equal(t, "60.00", resp.AmountPaid)
	assert.Equal(t, "140.00", resp.AmountDue)
}

func TestUpdateInvoice_DiscountOnlyPatch(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:             invoiceID,
		CompanyID:      f.scope.CompanyID,
		Status:         model.InvoiceSent,
		Subtotal:       d("100"),
		TaxAmount:      d("10"),
		Total:          d("110"),
		DiscountAmount: decimal.Zero,
		AmountPaid:     d("60"),
		AmountDue:      d("50"),
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)
	f.invoiceRepo.On("Update", mock.Anything, invoice).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	discount := "25"
	resp, err := f.svc.UpdateInvoice(context.Background(), f.scope, invoiceID.String(), UpdateInvoiceRequest{
		DiscountAmount: &discount,
	})
	require.NoError(t, err)

	assert.Equal(t, "25.00", resp.DiscountAmount)
	assert.Equal(t, "85.00", resp.Total)
	assert.Equal(t, "25.00", resp.AmountDue)
	f.invoiceRepo.AssertNotCalled(t, "ReplaceItems", mock.Anything, mock.Anything, mock.Anything)
	f.invoiceRepo.AssertExpectations(t)
}

func TestUpdateInvoice_DiscountOnlyExceedsTotals(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:        invoiceID,
		CompanyID: f.scope.CompanyID,
		Status:    model.InvoiceSent,
		Subtotal:  d("100"),
		TaxAmount: d("10"),
		Total:     d("110"),
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)

	discount := "150"
	_, err := f.svc.UpdateInvoice(context.Background(), f.scope, invoiceID.String(), UpdateInvoiceRequest{
		DiscountAmount: &discount,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	f.invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddReminder_AppendsAndPublishes(t *testing.T) {
	f := newInvoiceFixture()
	invoiceID := uuid.New()
	invoice := &model.Invoice{
		ID:            invoiceID,
		CompanyID:     f.scope.CompanyID,
		InvoiceNumber: "INV-1-00001",
		Status:        model.InvoiceOverdue,
	}

	f.invoiceRepo.On("FindByID", mock.Anything, f.scope.CompanyID, invoiceID).Return(invoice, nil)
	f.invoiceRepo.On("AppendReminder", mock.Anything, mock.AnythingOfType("*model.Reminder")).Return(nil)
	f.auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	err := f.svc.AddReminder(context.Background(), f.scope, invoiceID.String(), AddReminderRequest{Method: model.ReminderEmail})
	require.NoError(t, err)

	assert.Equal(t, []string{"invoice.reminder"}, f.events.events)
	f.invoiceRepo.AssertExpectations(t)
}

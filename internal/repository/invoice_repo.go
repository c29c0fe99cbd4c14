package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceListFilter narrows ListByCompany results
type InvoiceListFilter struct {
	Status     string
	CustomerID *uuid.UUID
	StartDate  *time.Time // inclusive lower bound on issue_date
	EndDate    *time.Time // inclusive upper bound on issue_date
	Page       int
	Limit      int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Invoice, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error
	Delete(ctx context.Context, invoice *model.Invoice) error
	AppendPayment(ctx context.Context, payment *model.Payment) error
	AppendReminder(ctx context.Context, reminder *model.Reminder) error
	HasPaymentWithTransactionID(ctx context.Context, invoiceID uuid.UUID, transactionID string) (bool, error)
	NextSequence(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at asc") }).
		Preload("Reminders", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at asc") }).
		First(&invoice, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at asc") }).
		Preload("Reminders", func(db *gorm.DB) *gorm.DB { return db.Order("sent_at asc") }).
		Preload("Customer").
		Preload("Appointment").
		First(&invoice, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("company_id = ?", companyID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.StartDate != nil {
			q = q.Where("issue_date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			q = q.Where("issue_date <= ?", *filter.EndDate)
		}
		return q
	}

	if err := apply(db.Model(&model.Invoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := apply(db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).Preload("Customer")).
		Order("issue_date desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Items", "Payments", "Reminders", "Customer", "Appointment").Save(invoice).Error
}

// ReplaceItems swaps the full line-item set of an invoice. Items carry their
// ordering in Position.
func (r *invoiceRepository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, items []model.InvoiceItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Delete(invoice).Error
}

func (r *invoiceRepository) AppendPayment(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *invoiceRepository) AppendReminder(ctx context.Context, reminder *model.Reminder) error {
	return GetDB(ctx, r.db).Create(reminder).Error
}

func (r *invoiceRepository) HasPaymentWithTransactionID(ctx context.Context, invoiceID uuid.UUID, transactionID string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Where("invoice_id = ? AND transaction_id = ?", invoiceID, transactionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSequence atomically increments and returns the per-company invoice
// counter. Must run inside RunInTx together with the invoice insert; the row
// lock serializes concurrent creations for the same company.
func (r *invoiceRepository) NextSequence(ctx context.Context, companyID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db)

	counter := model.InvoiceCounter{CompanyID: companyID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
		return 0, err
	}

	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&counter, "company_id = ?", companyID).Error; err != nil {
		return 0, err
	}

	counter.LastSeq++
	if err := db.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.LastSeq, nil
}

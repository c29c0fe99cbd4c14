package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentListFilter narrows ListByCompany results. TechnicianID and
// CustomerID double as the visibility scope for non-admin callers.
type AppointmentListFilter struct {
	Status       string
	TechnicianID *uuid.UUID
	CustomerID   *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	Limit        int
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Appointment, error)
	FindByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Appointment, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, filter AppointmentListFilter) ([]model.Appointment, int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return GetDB(ctx, r.db).Create(appointment).Error
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return GetDB(ctx, r.db).Omit("Customer", "Technician", "Service").Save(appointment).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, appointment *model.Appointment) error {
	return GetDB(ctx, r.db).Delete(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := GetDB(ctx, r.db).First(&appointment, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByIDWithRelations(ctx context.Context, companyID, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	err := GetDB(ctx, r.db).
		Preload("Customer").
		Preload("Technician").
		Preload("Service").
		First(&appointment, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, filter AppointmentListFilter) ([]model.Appointment, int64, error) {
	var appointments []model.Appointment
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("company_id = ?", companyID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.TechnicianID != nil {
			q = q.Where("technician_id = ?", *filter.TechnicianID)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.StartDate != nil {
			q = q.Where("scheduled_date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			q = q.Where("scheduled_date <= ?", *filter.EndDate)
		}
		return q
	}

	if err := apply(db.Model(&model.Appointment{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := apply(db.Preload("Customer").Preload("Technician").Preload("Service")).
		Order("scheduled_date asc, scheduled_start_time asc").
		Offset(offset).Limit(filter.Limit).Find(&appointments).Error
	if err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TechnicianRepository interface {
	Create(ctx context.Context, technician *model.Technician) error
	Update(ctx context.Context, technician *model.Technician) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Technician, error)
	FindByUserID(ctx context.Context, companyID, userID uuid.UUID) (*model.Technician, error)
	List(ctx context.Context, companyID uuid.UUID, activeOnly bool, search string, page, limit int) ([]model.Technician, int64, error)
}

type technicianRepository struct {
	db *gorm.DB
}

func NewTechnicianRepository(db *gorm.DB) TechnicianRepository {
	return &technicianRepository{db: db}
}

func (r *technicianRepository) Create(ctx context.Context, technician *model.Technician) error {
	return GetDB(ctx, r.db).Create(technician).Error
}

func (r *technicianRepository) Update(ctx context.Context, technician *model.Technician) error {
	return GetDB(ctx, r.db).Save(technician).Error
}

func (r *technicianRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.Technician{}).Error
}

func (r *technicianRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Technician, error) {
	var technician model.Technician
	if err := GetDB(ctx, r.db).First(&technician, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &technician, nil
}

func (r *technicianRepository) FindByUserID(ctx context.Context, companyID, userID uuid.UUID) (*model.Technician, error) {
	var technician model.Technician
	if err := GetDB(ctx, r.db).First(&technician, "user_id = ? AND company_id = ?", userID, companyID).Error; err != nil {
		return nil, err
	}
	return &technician, nil
}

func (r *technicianRepository) List(ctx context.Context, companyID uuid.UUID, activeOnly bool, search string, page, limit int) ([]model.Technician, int64, error) {
	var technicians []model.Technician
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("company_id = ?", companyID)
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		if search != "" {
			q = q.Where("first_name ILIKE ? OR last_name ILIKE ? OR skills ILIKE ?",
				"%"+search+"%", "%"+search+"%", "%"+search+"%")
		}
		return q
	}

	if err := apply(db.Model(&model.Technician{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db).Order("created_at DESC").Offset(offset).Limit(limit).Find(&technicians).Error; err != nil {
		return nil, 0, err
	}

	return technicians, total, nil
}

package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceOfferingRepository interface {
	Create(ctx context.Context, offering *model.ServiceOffering) error
	Update(ctx context.Context, offering *model.ServiceOffering) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.ServiceOffering, error)
	List(ctx context.Context, companyID uuid.UUID, category string, activeOnly bool, page, limit int) ([]model.ServiceOffering, int64, error)
}

type serviceOfferingRepository struct {
	db *gorm.DB
}

func NewServiceOfferingRepository(db *gorm.DB) ServiceOfferingRepository {
	return &serviceOfferingRepository{db: db}
}

func (r *serviceOfferingRepository) Create(ctx context.Context, offering *model.ServiceOffering) error {
	return GetDB(ctx, r.db).Create(offering).Error
}

func (r *serviceOfferingRepository) Update(ctx context.Context, offering *model.ServiceOffering) error {
	return GetDB(ctx, r.db).Save(offering).Error
}

func (r *serviceOfferingRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ? AND company_id = ?", id, companyID).Delete(&model.ServiceOffering{}).Error
}

func (r *serviceOfferingRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.ServiceOffering, error) {
	var offering model.ServiceOffering
	if err := GetDB(ctx, r.db).First(&offering, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *serviceOfferingRepository) List(ctx context.Context, companyID uuid.UUID, category string, activeOnly bool, page, limit int) ([]model.ServiceOffering, int64, error) {
	var offerings []model.ServiceOffering
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("company_id = ?", companyID)
		if category != "" {
			q = q.Where("category = ?", category)
		}
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		return q
	}

	if err := apply(db.Model(&model.ServiceOffering{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db).Order("name ASC").Offset(offset).Limit(limit).Find(&offerings).Error; err != nil {
		return nil, 0, err
	}

	return offerings, total, nil
}

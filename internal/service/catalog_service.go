package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateServiceOfferingRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	Category          string `json:"category" binding:"required"`
	BasePrice         string `json:"base_price" binding:"required"`
	PricingType       string `json:"pricing_type" binding:"omitempty,oneof=fixed hourly custom"`
	TaxRate           string `json:"tax_rate"`
	EstimatedDuration int    `json:"estimated_duration" binding:"omitempty,min=15"`
	RequiredSkills    string `json:"required_skills"`
}

type UpdateServiceOfferingRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	BasePrice         string `json:"base_price"`
	PricingType       string `json:"pricing_type" binding:"omitempty,oneof=fixed hourly custom"`
	TaxRate           string `json:"tax_rate"`
	EstimatedDuration int    `json:"estimated_duration" binding:"omitempty,min=15"`
	RequiredSkills    string `json:"required_skills"`
	IsActive          *bool  `json:"is_active"`
}

type ServiceOfferingListQuery struct {
	Category   string
	ActiveOnly bool
	Page       int
	Limit      int
}

type CatalogService interface {
	CreateOffering(ctx context.Context, scope Scope, req CreateServiceOfferingRequest) (*model.ServiceOffering, error)
	GetOffering(ctx context.Context, scope Scope, id string) (*model.ServiceOffering, error)
	ListOfferings(ctx context.Context, scope Scope, query ServiceOfferingListQuery) ([]model.ServiceOffering, int64, error)
	UpdateOffering(ctx context.Context, scope Scope, id string, req UpdateServiceOfferingRequest) (*model.ServiceOffering, error)
	DeleteOffering(ctx context.Context, scope Scope, id string) error
}

type catalogService struct {
	repo repository.ServiceOfferingRepository
}

func NewCatalogService(repo repository.ServiceOfferingRepository) CatalogService {
	return &catalogService{repo: repo}
}

func parseTaxRate(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validationf("invalid tax_rate: %v", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, apperror.Validationf("tax_rate must be between 0 and 100")
	}
	return rate, nil
}

func (s *catalogService) CreateOffering(ctx context.Context, scope Scope, req CreateServiceOfferingRequest) (*model.ServiceOffering, error) {
	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		return nil, apperror.Validationf("invalid base_price: %v", err)
	}
	if basePrice.IsNegative() {
		return nil, apperror.Validationf("base_price cannot be negative")
	}

	taxRate, err := parseTaxRate(req.TaxRate)
	if err != nil {
		return nil, err
	}

	pricingType := req.PricingType
	if pricingType == "" {
		pricingType = model.PricingFixed
	}
	estimatedDuration := req.EstimatedDuration
	if estimatedDuration == 0 {
		estimatedDuration = 60
	}

	offering := &model.ServiceOffering{
		CompanyID:         scope.CompanyID,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		BasePrice:         basePrice,
		PricingType:       pricingType,
		TaxRate:           taxRate,
		EstimatedDuration: estimatedDuration,
		RequiredSkills:    req.RequiredSkills,
		IsActive:          true,
	}

	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return offering, nil
}

func (s *catalogService) GetOffering(ctx context.Context, scope Scope, id string) (*model.ServiceOffering, error) {
	return s.find(ctx, scope, id)
}

func (s *catalogService) ListOfferings(ctx context.Context, scope Scope, query ServiceOfferingListQuery) ([]model.ServiceOffering, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	offerings, total, err := s.repo.List(ctx, scope.CompanyID, query.Category, query.ActiveOnly, query.Page, query.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch services: %w", err)
	}
	return offerings, total, nil
}

func (s *catalogService) UpdateOffering(ctx context.Context, scope Scope, id string, req UpdateServiceOfferingRequest) (*model.ServiceOffering, error) {
	offering, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		offering.Name = req.Name
	}
	if req.Description != "" {
		offering.Description = req.Description
	}
	if req.Category != "" {
		offering.Category = req.Category
	}
	if req.BasePrice != "" {
		basePrice, parseErr := decimal.NewFromString(req.BasePrice)
		if parseErr != nil {
			return nil, apperror.Validationf("invalid base_price: %v", parseErr)
		}
		if basePrice.IsNegative() {
			return nil, apperror.Validationf("base_price cannot be negative")
		}
		offering.BasePrice = basePrice
	}
	if req.PricingType != "" {
		offering.PricingType = req.PricingType
	}
	if req.TaxRate != "" {
		taxRate, parseErr := parseTaxRate(req.TaxRate)
		if parseErr != nil {
			return nil, parseErr
		}
		offering.TaxRate = taxRate
	}
	if req.EstimatedDuration != 0 {
		offering.EstimatedDuration = req.EstimatedDuration
	}
	if req.RequiredSkills != "" {
		offering.RequiredSkills = req.RequiredSkills
	}
	if req.IsActive != nil {
		offering.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return offering, nil
}

func (s *catalogService) DeleteOffering(ctx context.Context, scope Scope, id string) error {
	offering, err := s.find(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, scope.CompanyID, offering.ID)
}

func (s *catalogService) find(ctx context.Context, scope Scope, id string) (*model.ServiceOffering, error) {
	offeringID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validationf("invalid service id: %v", err)
	}
	offering, err := s.repo.FindByID(ctx, scope.CompanyID, offeringID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("service %s not found", id)
		}
		return nil, err
	}
	return offering, nil
}

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

type CreateTechnicianRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Skills     string `json:"skills"`
	HourlyRate string `json:"hourly_rate"`
	UserID     string `json:"user_id"` // optional login account link
}

type UpdateTechnicianRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Skills     string `json:"skills"`
	HourlyRate string `json:"hourly_rate"`
	IsActive   *bool  `json:"is_active"`
}

type TechnicianListQuery struct {
	ActiveOnly bool
	Search     string
	Page       int
	Limit      int
}

type TechnicianService interface {
	CreateTechnician(ctx context.Context, scope Scope, req CreateTechnicianRequest) (*model.Technician, error)
	GetTechnician(ctx context.Context, scope Scope, id string) (*model.Technician, error)
	ListTechnicians(ctx context.Context, scope Scope, query TechnicianListQuery) ([]model.Technician, int64, error)
	UpdateTechnician(ctx context.Context, scope Scope, id string, req UpdateTechnicianRequest) (*model.Technician, error)
	DeleteTechnician(ctx context.Context, scope Scope, id string) error
}

type technicianService struct {
	repo repository.TechnicianRepository
}

func NewTechnicianService(repo repository.TechnicianRepository) TechnicianService {
	return &technicianService{repo: repo}
}

func (s *technicianService) CreateTechnician(ctx context.Context, scope Scope, req CreateTechnicianRequest) (*model.Technician, error) {
	hourlyRate := decimal.Zero
	if req.HourlyRate != "" {
		parsed, err := decimal.NewFromString(req.HourlyRate)
		if err != nil {
			return nil, apperror.Validationf("invalid hourly_rate: %v", err)
		}
		if parsed.IsNegative() {
			return nil, apperror.Validationf("hourly_rate cannot be negative")
		}
		hourlyRate = parsed
	}

	technician := &model.Technician{
		CompanyID:  scope.CompanyID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Skills:     req.Skills,
		HourlyRate: hourlyRate,
		IsActive:   true,
	}
	if req.UserID != "" {
		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, apperror.Validationf("invalid user_id: %v", err)
		}
		technician.UserID = &userID
	}

	if err := s.repo.Create(ctx, technician); err != nil {
		return nil, fmt.Errorf("failed to create technician: %w", err)
	}
	return technician, nil
}

func (s *technicianService) GetTechnician(ctx context.Context, scope Scope, id string) (*model.Technician, error) {
	return s.find(ctx, scope, id)
}

func (s *technicianService) ListTechnicians(ctx context.Context, scope Scope, query TechnicianListQuery) ([]model.Technician, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	technicians, total, err := s.repo.List(ctx, scope.CompanyID, query.ActiveOnly, query.Search, query.Page, query.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch technicians: %w", err)
	}
	return technicians, total, nil
}

func (s *technicianService) UpdateTechnician(ctx context.Context, scope Scope, id string, req UpdateTechnicianRequest) (*model.Technician, error) {
	technician, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		technician.FirstName = req.FirstName
	}
	if req.LastName != "" {
		technician.LastName = req.LastName
	}
	if req.Email != "" {
		technician.Email = req.Email
	}
	if req.Phone != "" {
		technician.Phone = req.Phone
	}
	if req.Skills != "" {
		technician.Skills = req.Skills
	}
	if req.HourlyRate != "" {
		parsed, parseErr := decimal.NewFromString(req.HourlyRate)
		if parseErr != nil {
			return nil, apperror.Validationf("invalid hourly_rate: %v", parseErr)
		}
		if parsed.IsNegative() {
			return nil, apperror.Validationf("hourly_rate cannot be negative")
		}
		technician.HourlyRate = parsed
	}
	if req.IsActive != nil {
		technician.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, technician); err != nil {
		return nil, fmt.Errorf("failed to update technician: %w", err)
	}
	return technician, nil
}

func (s *technicianService) DeleteTechnician(ctx context.Context, scope Scope, id string) error {
	technician, err := s.find(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, scope.CompanyID, technician.ID)
}

func (s *technicianService) find(ctx context.Context, scope Scope, id string) (*model.Technician, error) {
	technicianID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validationf("invalid technician id: %v", err)
	}
	technician, err := s.repo.FindByID(ctx, scope.CompanyID, technicianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("technician %s not found", id)
		}
		return nil, err
	}
	return technician, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
)

type UpdateCompanyRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
	Timezone string `json:"timezone"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
	Currency  string `json:"currency"`
	Timezone  string `json:"timezone"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type CompanyService interface {
	GetCompany(ctx context.Context, scope Scope) (*CompanyResponse, error)
	UpdateCompany(ctx context.Context, scope Scope, req UpdateCompanyRequest) (*CompanyResponse, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func mapCompanyResponse(company *model.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:        company.ID.String(),
		Name:      company.Name,
		Email:     company.Email,
		Phone:     company.Phone,
		Website:   company.Website,
		Street:    company.Street,
		City:      company.City,
		State:     company.State,
		ZipCode:   company.ZipCode,
		Country:   company.Country,
		Currency:  company.Currency,
		Timezone:  company.Timezone,
		IsActive:  company.IsActive,
		CreatedAt: company.CreatedAt.Format(time.RFC3339),
	}
}

func (s *companyService) GetCompany(ctx context.Context, scope Scope) (*CompanyResponse, error) {
	company, err := s.repo.FindByID(ctx, scope.CompanyID)
	if err != nil {
		return nil, apperror.NotFoundf("company not found")
	}
	return mapCompanyResponse(company), nil
}

func (s *companyService) UpdateCompany(ctx context.Context, scope Scope, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.repo.FindByID(ctx, scope.CompanyID)
	if err != nil {
		return nil, apperror.NotFoundf("company not found")
	}

	if req.Name != "" {
		company.Name = req.Name
	}
	if req.Phone != "" {
		company.Phone = req.Phone
	}
	if req.Website != "" {
		company.Website = req.Website
	}
	if req.Street != "" {
		company.Street = req.Street
	}
	if req.City != "" {
		company.City = req.City
	}
	if req.State != "" {
		company.State = req.State
	}
	if req.ZipCode != "" {
		company.ZipCode = req.ZipCode
	}
	if req.Country != "" {
		company.Country = req.Country
	}
	if req.Currency != "" {
		company.Currency = req.Currency
	}
	if req.Timezone != "" {
		if _, tzErr := time.LoadLocation(req.Timezone); tzErr != nil {
			return nil, apperror.Validationf("invalid timezone %q", req.Timezone)
		}
		company.Timezone = req.Timezone
	}

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	return mapCompanyResponse(company), nil
}

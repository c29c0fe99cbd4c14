package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressRequest struct {
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	ZipCode   string `json:"zip_code" binding:"required"`
	Country   string `json:"country"`
	IsDefault bool   `json:"is_default"`
}

type CreateCustomerRequest struct {
	FirstName string           `json:"first_name" binding:"required"`
	LastName  string           `json:"last_name" binding:"required"`
	Email     string           `json:"email" binding:"omitempty,email"`
	Phone     string           `json:"phone"`
	Tags      string           `json:"tags"`
	Notes     string           `json:"notes"`
	Addresses []AddressRequest `json:"addresses" binding:"omitempty,dive"`
}

type UpdateCustomerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Status    string `json:"status" binding:"omitempty,oneof=active inactive blocked"`
	Tags      string `json:"tags"`
	Notes     string `json:"notes"`
}

type CustomerListQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, scope Scope, req CreateCustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, scope Scope, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context, scope Scope, query CustomerListQuery) ([]model.Customer, int64, error)
	UpdateCustomer(ctx context.Context, scope Scope, id string, req UpdateCustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, scope Scope, id string) error
	AddAddress(ctx context.Context, scope Scope, id string, req AddressRequest) (*model.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) CreateCustomer(ctx context.Context, scope Scope, req CreateCustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		CompanyID:     scope.CompanyID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Status:        model.CustomerActive,
		Tags:          req.Tags,
		Notes:         req.Notes,
		CustomerSince: time.Now(),
	}
	for _, a := range req.Addresses {
		customer.Addresses = append(customer.Addresses, model.CustomerAddress{
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			ZipCode:   a.ZipCode,
			Country:   a.Country,
			IsDefault: a.IsDefault,
		})
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, scope Scope, id string) (*model.Customer, error) {
	return s.find(ctx, scope, id)
}

func (s *customerService) ListCustomers(ctx context.Context, scope Scope, query CustomerListQuery) ([]model.Customer, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	customers, total, err := s.repo.List(ctx, scope.CompanyID, query.Status, query.Search, query.Page, query.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, scope Scope, id string, req UpdateCustomerRequest) (*model.Customer, error) {
	customer, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		customer.FirstName = req.FirstName
	}
	if req.LastName != "" {
		customer.LastName = req.LastName
	}
	if req.Email != "" {
		customer.Email = req.Email
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	if req.Status != "" {
		customer.Status = req.Status
	}
	if req.Tags != "" {
		customer.Tags = req.Tags
	}
	if req.Notes != "" {
		customer.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, scope Scope, id string) error {
	customer, err := s.find(ctx, scope, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, scope.CompanyID, customer.ID)
}

func (s *customerService) AddAddress(ctx context.Context, scope Scope, id string, req AddressRequest) (*model.Customer, error) {
	customer, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	address := &model.CustomerAddress{
		CustomerID: customer.ID,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
	if err := s.repo.AddAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	customer.Addresses = append(customer.Addresses, *address)
	return customer, nil
}

func (s *customerService) find(ctx context.Context, scope Scope, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validationf("invalid customer id: %v", err)
	}
	customer, err := s.repo.FindByID(ctx, scope.CompanyID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("customer %s not found", id)
		}
		return nil, err
	}
	return customer, nil
}

package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type CreateAppointmentRequest struct {
	CustomerID         string `json:"customer_id" binding:"required"`
	TechnicianID       string `json:"technician_id"`
	ServiceID          string `json:"service_id" binding:"required"`
	ScheduledDate      string `json:"scheduled_date" binding:"required"` // RFC3339
	ScheduledStartTime string `json:"scheduled_start_time" binding:"required"`
	ScheduledEndTime   string `json:"scheduled_end_time" binding:"required"`
	Duration           int    `json:"duration" binding:"required,min=15"`
	Priority           string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Street             string `json:"street" binding:"required"`
	City               string `json:"city" binding:"required"`
	State              string `json:"state" binding:"required"`
	ZipCode            string `json:"zip_code" binding:"required"`
	Country            string `json:"country"`
	Description        string `json:"description" binding:"required"`
	InternalNotes      string `json:"internal_notes"`
}

type UpdateAppointmentRequest struct {
	TechnicianID       *string `json:"technician_id"`
	ScheduledDate      *string `json:"scheduled_date"`
	ScheduledStartTime *string `json:"scheduled_start_time"`
	ScheduledEndTime   *string `json:"scheduled_end_time"`
	Duration           *int    `json:"duration" binding:"omitempty,min=15"`
	Status             *string `json:"status" binding:"omitempty,oneof=scheduled confirmed in-progress completed cancelled no-show"`
	Priority           *string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Description        *string `json:"description"`
	InternalNotes      *string `json:"internal_notes"`
}

type CheckOutRequest struct {
	ActualCost string `json:"actual_cost"`
	Notes      string `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AppointmentListQuery struct {
	Status       string
	TechnicianID string
	CustomerID   string
	StartDate    string
	EndDate      string
	Page         int
	Limit        int
}

type AppointmentService interface {
	CreateAppointment(ctx context.Context, scope Scope, req CreateAppointmentRequest) (*model.Appointment, error)
	GetAppointment(ctx context.Context, scope Scope, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, scope Scope, query AppointmentListQuery) ([]model.Appointment, int64, error)
	UpdateAppointment(ctx context.Context, scope Scope, id string, req UpdateAppointmentRequest) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, scope Scope, id string) error
	CheckIn(ctx context.Context, scope Scope, id string) (*model.Appointment, error)
	CheckOut(ctx context.Context, scope Scope, id string, req CheckOutRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, scope Scope, id string, req CancelAppointmentRequest) (*model.Appointment, error)
}

type appointmentService struct {
	appointmentRepo repository.AppointmentRepository
	customerRepo    repository.CustomerRepository
	technicianRepo  repository.TechnicianRepository
	catalogRepo     repository.ServiceOfferingRepository
	auditRepo       repository.AuditRepository
	events          EventPublisher
}

func NewAppointmentService(
	appointmentRepo repository.AppointmentRepository,
	customerRepo repository.CustomerRepository,
	technicianRepo repository.TechnicianRepository,
	catalogRepo repository.ServiceOfferingRepository,
	auditRepo repository.AuditRepository,
	events EventPublisher,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: appointmentRepo,
		customerRepo:    customerRepo,
		technicianRepo:  technicianRepo,
		catalogRepo:     catalogRepo,
		auditRepo:       auditRepo,
		events:          events,
	}
}

func (s *appointmentService) CreateAppointment(ctx context.Context, scope Scope, req CreateAppointmentRequest) (*model.Appointment, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperror.Validationf("invalid customer_id: %v", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, scope.CompanyID, customerID); err != nil {
		return nil, notFoundOr(err, "customer %s", req.CustomerID)
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return nil, apperror.Validationf("invalid service_id: %v", err)
	}
	offering, err := s.catalogRepo.FindByID(ctx, scope.CompanyID, serviceID)
	if err != nil {
		return nil, notFoundOr(err, "service %s", req.ServiceID)
	}

	var technicianID *uuid.UUID
	if req.TechnicianID != "" {
		parsed, parseErr := uuid.Parse(req.TechnicianID)
		if parseErr != nil {
			return nil, apperror.Validationf("invalid technician_id: %v", parseErr)
		}
		if _, err := s.technicianRepo.FindByID(ctx, scope.CompanyID, parsed); err != nil {
			return nil, notFoundOr(err, "technician %s", req.TechnicianID)
		}
		technicianID = &parsed
	}

	scheduledDate, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		return nil, apperror.Validationf("invalid scheduled_date: %v", err)
	}
	if err := validateClockRange(req.ScheduledStartTime, req.ScheduledEndTime); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	appointment := &model.Appointment{
		CompanyID:          scope.CompanyID,
		CustomerID:         customerID,
		TechnicianID:       technicianID,
		ServiceID:          serviceID,
		ScheduledDate:      scheduledDate,
		ScheduledStartTime: req.ScheduledStartTime,
		ScheduledEndTime:   req.ScheduledEndTime,
		Duration:           req.Duration,
		Status:             model.AppointmentScheduled,
		Priority:           priority,
		Street:             req.Street,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		Country:            req.Country,
		Description:        req.Description,
		InternalNotes:      req.InternalNotes,
		EstimatedCost:      offering.BasePrice,
	}
	if offering.PricingType == model.PricingHourly {
		hours := decimal.NewFromInt(int64(req.Duration)).Div(decimal.NewFromInt(60))
		appointment.EstimatedCost = offering.BasePrice.Mul(hours).Round(2)
	}

	if err := s.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.audit(ctx, scope, model.ActionCreateAppointment, appointment.ID.String(), req.Description)
	s.events.Publish("appointment.created", map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"scheduled_date": appointment.ScheduledDate.Format(time.RFC3339),
	})

	return appointment, nil
}

func (s *appointmentService) GetAppointment(ctx context.Context, scope Scope, id string) (*model.Appointment, error) {
	appointment, err := s.findWithRelations(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(ctx, scope, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *appointmentService) ListAppointments(ctx context.Context, scope Scope, query AppointmentListQuery) ([]model.Appointment, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	filter := repository.AppointmentListFilter{
		Status: query.Status,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	if query.TechnicianID != "" {
		parsed, err := uuid.Parse(query.TechnicianID)
		if err != nil {
			return nil, 0, apperror.Validationf("invalid technician filter: %v", err)
		}
		filter.TechnicianID = &parsed
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

	// Non-admin callers only see their own agenda regardless of filters.
	switch scope.Role {
	case model.RoleTechnician:
		technician, err := s.technicianRepo.FindByUserID(ctx, scope.CompanyID, scope.UserID)
		if err != nil {
			return []model.Appointment{}, 0, nil
		}
		filter.TechnicianID = &technician.ID
	case model.RoleCustomer:
		customer, err := s.customerRepo.FindByUserID(ctx, scope.CompanyID, scope.UserID)
		if err != nil {
			return []model.Appointment{}, 0, nil
		}
		filter.CustomerID = &customer.ID
	}

	appointments, total, err := s.appointmentRepo.ListByCompany(ctx, scope.CompanyID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	return appointments, total, nil
}

func (s *appointmentService) UpdateAppointment(ctx context.Context, scope Scope, id string, req UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if appointment.Status == model.AppointmentCompleted || appointment.Status == model.AppointmentCancelled {
		return nil, apperror.Conflictf("appointment is %s and can no longer change", appointment.Status)
	}

	if req.TechnicianID != nil {
		if *req.TechnicianID == "" {
			appointment.TechnicianID = nil
		} else {
			parsed, parseErr := uuid.Parse(*req.TechnicianID)
			if parseErr != nil {
				return nil, apperror.Validationf("invalid technician_id: %v", parseErr)
			}
			if _, err := s.technicianRepo.FindByID(ctx, scope.CompanyID, parsed); err != nil {
				return nil, notFoundOr(err, "technician %s", *req.TechnicianID)
			}
			appointment.TechnicianID = &parsed
		}
	}
	if req.ScheduledDate != nil {
		scheduledDate, parseErr := time.Parse(time.RFC3339, *req.ScheduledDate)
		if parseErr != nil {
			return nil, apperror.Validationf("invalid scheduled_date: %v", parseErr)
		}
		appointment.ScheduledDate = scheduledDate
	}
	if req.ScheduledStartTime != nil || req.ScheduledEndTime != nil {
		start := appointment.ScheduledStartTime
		end := appointment.ScheduledEndTime
		if req.ScheduledStartTime != nil {
			start = *req.ScheduledStartTime
		}
		if req.ScheduledEndTime != nil {
			end = *req.ScheduledEndTime
		}
		if err := validateClockRange(start, end); err != nil {
			return nil, err
		}
		appointment.ScheduledStartTime = start
		appointment.ScheduledEndTime = end
	}
	if req.Duration != nil {
		appointment.Duration = *req.Duration
	}
	if req.Status != nil {
		appointment.Status = *req.Status
	}
	if req.Priority != nil {
		appointment.Priority = *req.Priority
	}
	if req.Description != nil {
		appointment.Description = *req.Description
	}
	if req.InternalNotes != nil {
		appointment.InternalNotes = *req.InternalNotes
	}

	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.audit(ctx, scope, model.ActionUpdateAppointment, appointment.ID.String(), appointment.Description)
	return appointment, nil
}

func (s *appointmentService) DeleteAppointment(ctx context.Context, scope Scope, id string) error {
	appointment, err := s.find(ctx, scope, id)
	if err != nil {
		return err
	}
	if appointment.Status == model.AppointmentInProgress {
		return apperror.Conflictf("cannot delete an appointment in progress")
	}
	return s.appointmentRepo.Delete(ctx, appointment)
}

// CheckIn marks the technician's arrival and starts the visit.
func (s *appointmentService) CheckIn(ctx context.Context, scope Scope, id string) (*model.Appointment, error) {
	appointment, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTechnicianAssignment(ctx, scope, appointment); err != nil {
		return nil, err
	}

	if appointment.Status != model.AppointmentScheduled && appointment.Status != model.AppointmentConfirmed {
		return nil, apperror.Conflictf("cannot check in: appointment is %s", appointment.Status)
	}

	now := time.Now()
	appointment.ActualStartTime = &now
	appointment.Status = model.AppointmentInProgress

	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}

	s.audit(ctx, scope, model.ActionCheckIn, appointment.ID.String(), appointment.Description)
	s.events.Publish("appointment.in-progress", map[string]interface{}{
		"appointment_id": appointment.ID.String(),
	})
	return appointment, nil
}

// CheckOut closes the visit and records the actual cost.
func (s *appointmentService) CheckOut(ctx context.Context, scope Scope, id string, req CheckOutRequest) (*model.Appointment, error) {
	appointment, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTechnicianAssignment(ctx, scope, appointment); err != nil {
		return nil, err
	}

	if appointment.Status != model.AppointmentInProgress {
		return nil, apperror.Conflictf("cannot check out: appointment is %s", appointment.Status)
	}

	now := time.Now()
	appointment.ActualEndTime = &now
	appointment.Status = model.AppointmentCompleted

	actualCost := appointment.EstimatedCost
	if req.ActualCost != "" {
		parsed, parseErr := decimal.NewFromString(req.ActualCost)
		if parseErr != nil {
			return nil, apperror.Validationf("invalid actual_cost: %v", parseErr)
		}
		if parsed.IsNegative() {
			return nil, apperror.Validationf("actual_cost cannot be negative")
		}
		actualCost = parsed
	}
	appointment.ActualCost = &actualCost

	if req.Notes != "" {
		appointment.InternalNotes = req.Notes
	}
	if appointment.ActualStartTime != nil {
		appointment.Duration = int(now.Sub(*appointment.ActualStartTime).Minutes())
		if appointment.Duration < 15 {
			appointment.Duration = 15
		}
	}

	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to check out: %w", err)
	}

	s.audit(ctx, scope, model.ActionCheckOut, appointment.ID.String(), appointment.Description)
	s.events.Publish("appointment.completed", map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"actual_cost":    actualCost.StringFixed(2),
	})
	return appointment, nil
}

func (s *appointmentService) Cancel(ctx context.Context, scope Scope, id string, req CancelAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.find(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisibility(ctx, scope, appointment); err != nil {
		return nil, err
	}

	switch appointment.Status {
	case model.AppointmentCompleted, model.AppointmentCancelled, model.AppointmentInProgress:
		return nil, apperror.Conflictf("cannot cancel: appointment is %s", appointment.Status)
	}

	now := time.Now()
	userID := scope.UserID
	appointment.Status = model.AppointmentCancelled
	appointment.CancellationReason = req.Reason
	appointment.CancelledBy = &userID
	appointment.CancelledAt = &now

	if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.audit(ctx, scope, model.ActionCancelAppointment, appointment.ID.String(), req.Reason)
	s.events.Publish("appointment.cancelled", map[string]interface{}{
		"appointment_id": appointment.ID.String(),
		"reason":         req.Reason,
	})
	return appointment, nil
}

// --- Helpers ---

func (s *appointmentService) find(ctx context.Context, scope Scope, id string) (*model.Appointment, error) {
	appointmentID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validationf("invalid appointment id: %v", err)
	}
	appointment, err := s.appointmentRepo.FindByID(ctx, scope.CompanyID, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment %s", id)
	}
	return appointment, nil
}

func (s *appointmentService) findWithRelations(ctx context.Context, scope Scope, id string) (*model.Appointment, error) {
	appointmentID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validationf("invalid appointment id: %v", err)
	}
	appointment, err := s.appointmentRepo.FindByIDWithRelations(ctx, scope.CompanyID, appointmentID)
	if err != nil {
		return nil, notFoundOr(err, "appointment %s", id)
	}
	return appointment, nil
}

// checkVisibility hides appointments that do not belong to the caller.
func (s *appointmentService) checkVisibility(ctx context.Context, scope Scope, appointment *model.Appointment) error {
	switch scope.Role {
	case model.RoleTechnician:
		technician, err := s.technicianRepo.FindByUserID(ctx, scope.CompanyID, scope.UserID)
		if err != nil || appointment.TechnicianID == nil || *appointment.TechnicianID != technician.ID {
			return apperror.NotFoundf("appointment %s not found", appointment.ID)
		}
	case model.RoleCustomer:
		customer, err := s.customerRepo.FindByUserID(ctx, scope.CompanyID, scope.UserID)
		if err != nil || appointment.CustomerID != customer.ID {
			return apperror.NotFoundf("appointment %s not found", appointment.ID)
		}
	}
	return nil
}

// checkTechnicianAssignment lets admins act on any appointment but restricts
// technicians to their own assignments.
func (s *appointmentService) checkTechnicianAssignment(ctx context.Context, scope Scope, appointment *model.Appointment) error {
	if scope.Role == model.RoleAdmin {
		return nil
	}
	technician, err := s.technicianRepo.FindByUserID(ctx, scope.CompanyID, scope.UserID)
	if err != nil || appointment.TechnicianID == nil || *appointment.TechnicianID != technician.ID {
		return apperror.Validationf("appointment is not assigned to you")
	}
	return nil
}

func (s *appointmentService) audit(ctx context.Context, scope Scope, action, entityID, entityName string) {
	userID := scope.UserID
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		CompanyID:  scope.CompanyID,
		UserID:     &userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	})
}

func validateClockRange(start, end string) error {
	if !clockPattern.MatchString(start) {
		return apperror.Validationf("invalid scheduled_start_time %q, expected HH:MM", start)
	}
	if !clockPattern.MatchString(end) {
		return apperror.Validationf("invalid scheduled_end_time %q, expected HH:MM", end)
	}
	if end <= start {
		return apperror.Validationf("scheduled_end_time must be after scheduled_start_time")
	}
	return nil
}

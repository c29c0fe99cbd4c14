package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentStatus enum constants
const (
	AppointmentScheduled  = "scheduled"
	AppointmentConfirmed  = "confirmed"
	AppointmentInProgress = "in-progress"
	AppointmentCompleted  = "completed"
	AppointmentCancelled  = "cancelled"
	AppointmentNoShow     = "no-show"
)

// AppointmentPriority enum constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Appointment is one scheduled visit of a technician to a customer
type Appointment struct {
	ID                 uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_appointments_company_date" json:"company_id"`
	CustomerID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer           *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TechnicianID       *uuid.UUID       `gorm:"type:uuid;index" json:"technician_id"`
	Technician         *Technician      `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	ServiceID          uuid.UUID        `gorm:"type:uuid;not null" json:"service_id"`
	Service            *ServiceOffering `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	ScheduledDate      time.Time        `gorm:"not null;index:idx_appointments_company_date" json:"scheduled_date"`
	ScheduledStartTime string           `gorm:"type:varchar(5);not null" json:"scheduled_start_time"` // "HH:MM"
	ScheduledEndTime   string           `gorm:"type:varchar(5);not null" json:"scheduled_end_time"`
	ActualStartTime    *time.Time       `json:"actual_start_time"`
	ActualEndTime      *time.Time       `json:"actual_end_time"`
	Duration           int              `gorm:"not null" json:"duration"` // minutes, minimum 15
	Status             string           `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Priority           string           `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Street             string           `gorm:"type:varchar(255);not null" json:"street"`
	City               string           `gorm:"type:varchar(100);not null" json:"city"`
	State              string           `gorm:"type:varchar(100);not null" json:"state"`
	ZipCode            string           `gorm:"type:varchar(20);not null" json:"zip_code"`
	Country            string           `gorm:"type:varchar(2);default:'BR'" json:"country"`
	Description        string           `gorm:"type:text;not null" json:"description"`
	InternalNotes      string           `gorm:"type:text" json:"internal_notes"`
	EstimatedCost      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"estimated_cost"`
	ActualCost         *decimal.Decimal `gorm:"type:decimal(18,4)" json:"actual_cost"`
	CancellationReason string           `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        *uuid.UUID       `gorm:"type:uuid" json:"cancelled_by"`
	CancelledAt        *time.Time       `json:"cancelled_at"`
	InvoiceID          *uuid.UUID       `gorm:"type:uuid" json:"invoice_id"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

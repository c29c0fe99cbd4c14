package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerStatus enum constants
const (
	CustomerActive   = "active"
	CustomerInactive = "inactive"
	CustomerBlocked  = "blocked"
)

// Customer is a billable client of one company
type Customer struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID        *uuid.UUID        `gorm:"type:uuid;index" json:"user_id"` // Optional login account
	User          *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FirstName     string            `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName      string            `gorm:"type:varchar(50);not null" json:"last_name"`
	Email         string            `gorm:"type:varchar(255);index" json:"email"`
	Phone         string            `gorm:"type:varchar(20)" json:"phone"`
	Status        string            `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // active, inactive, blocked
	Tags          string            `gorm:"type:text" json:"tags"`                                          // comma-separated labels
	Notes         string            `gorm:"type:text" json:"notes"`
	CustomerSince time.Time         `gorm:"autoCreateTime" json:"customer_since"`
	Addresses     []CustomerAddress `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"addresses"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
}

// CustomerAddress is a service location for a customer
type CustomerAddress struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Street     string    `gorm:"type:varchar(255);not null" json:"street"`
	City       string    `gorm:"type:varchar(100);not null" json:"city"`
	State      string    `gorm:"type:varchar(100);not null" json:"state"`
	ZipCode    string    `gorm:"type:varchar(20);not null" json:"zip_code"`
	Country    string    `gorm:"type:varchar(2);default:'BR'" json:"country"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

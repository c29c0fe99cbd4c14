package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Technician is a field worker who executes appointments for one company
type Technician struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID     *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"` // Optional login account
	User       *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	FirstName  string          `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName   string          `gorm:"type:varchar(50);not null" json:"last_name"`
	Email      string          `gorm:"type:varchar(255);index" json:"email"`
	Phone      string          `gorm:"type:varchar(20)" json:"phone"`
	Skills     string          `gorm:"type:text" json:"skills"` // comma-separated skill codes
	HourlyRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"hourly_rate"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

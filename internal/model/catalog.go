package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingType enum constants
const (
	PricingFixed  = "fixed"
	PricingHourly = "hourly"
	PricingCustom = "custom"
)

// ServiceOffering is one entry in a company's service catalog
type ServiceOffering struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Name              string          `gorm:"type:varchar(100);not null" json:"name"`
	Description       string          `gorm:"type:varchar(500)" json:"description"`
	Category          string          `gorm:"type:varchar(100);not null;index" json:"category"`
	BasePrice         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"base_price"`
	PricingType       string          `gorm:"type:varchar(20);not null;default:'fixed'" json:"pricing_type"` // fixed, hourly, custom
	TaxRate           decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"tax_rate"`          // percentage in [0,100]
	EstimatedDuration int             `gorm:"not null;default:60" json:"estimated_duration"`                 // minutes
	RequiredSkills    string          `gorm:"type:text" json:"required_skills"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the tenant boundary: every record in the system belongs to one company
type Company struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Website   string         `gorm:"type:varchar(255)" json:"website"`
	Street    string         `gorm:"type:varchar(255)" json:"street"`
	City      string         `gorm:"type:varchar(100)" json:"city"`
	State     string         `gorm:"type:varchar(100)" json:"state"`
	ZipCode   string         `gorm:"type:varchar(20)" json:"zip_code"`
	Country   string         `gorm:"type:varchar(2);default:'BR'" json:"country"`
	Currency  string         `gorm:"type:varchar(3);default:'BRL'" json:"currency"`
	Timezone  string         `gorm:"type:varchar(64);default:'America/Sao_Paulo'" json:"timezone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

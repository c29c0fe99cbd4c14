package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateInvoice     = "CREATE_INVOICE"
	ActionUpdateInvoice     = "UPDATE_INVOICE"
	ActionDeleteInvoice     = "DELETE_INVOICE"
	ActionAddPayment        = "ADD_PAYMENT"
	ActionSendReminder      = "SEND_REMINDER"
	ActionCreateAppointment = "CREATE_APPOINTMENT"
	ActionUpdateAppointment = "UPDATE_APPOINTMENT"
	ActionCancelAppointment = "CANCEL_APPOINTMENT"
	ActionCheckIn           = "APPOINTMENT_CHECK_IN"
	ActionCheckOut          = "APPOINTMENT_CHECK_OUT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

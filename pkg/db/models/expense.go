package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Expense is a recorded reason for money leaving the cash balance.
type Expense struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Description string              `gorm:"column:description;type:text;not null"`
	Amount      int64               `gorm:"column:amount;not null"`
	Category    string              `gorm:"column:category;type:text;not null"`
	Status      enums.ExpenseStatus `gorm:"column:status;type:text;not null;default:'approved'"`
	IsSystem    bool                `gorm:"column:is_system;not null;default:false"`
	Metadata    json.RawMessage     `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

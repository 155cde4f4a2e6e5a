package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/umarxon/delivera-backend/pkg/enums"
)

// CashMovement is an append-only balance change. (ReferenceType, ReferenceID)
// is unique per logical cause; reversals are new compensating movements.
type CashMovement struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Direction     enums.MovementDirection `gorm:"column:direction;type:text;not null"`
	Amount        int64                   `gorm:"column:amount;not null"`
	ReferenceType enums.ReferenceType     `gorm:"column:reference_type;type:text;not null;uniqueIndex:cash_movements_reference_key,priority:1"`
	ReferenceID   string                  `gorm:"column:reference_id;type:text;not null;uniqueIndex:cash_movements_reference_key,priority:2"`
	Description   *string                 `gorm:"column:description;type:text"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}

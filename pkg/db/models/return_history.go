package models

import (
	"time"

	"github.com/google/uuid"
)

// ReturnHistory is an append-only audit row written for every return
// reconciliation attempt, including failed ones.
type ReturnHistory struct {
	ID                      uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnOrderID           uuid.UUID  `gorm:"column:return_order_id;type:uuid;not null;index:return_histories_return_order_idx"`
	OriginalOrderID         *uuid.UUID `gorm:"column:original_order_id;type:uuid"`
	RefundAmount            int64      `gorm:"column:refund_amount;not null"`
	EmployeeDeduction       int64      `gorm:"column:employee_deduction;not null;default:0"`
	SystemDeduction         int64      `gorm:"column:system_deduction;not null;default:0"`
	FinancialHandlerSuccess bool       `gorm:"column:financial_handler_success;not null;default:false"`
	ErrorMessage            *string    `gorm:"column:error_message;type:text"`
	ActorID                 *uuid.UUID `gorm:"column:actor_id;type:uuid"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
}

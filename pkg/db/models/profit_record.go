package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/umarxon/delivera-backend/pkg/enums"
)

// ProfitRecord holds the revenue/profit split for a profit-eligible order.
// Unique on OrderID so an order never accrues two profit rows.
type ProfitRecord struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID          `gorm:"column:order_id;type:uuid;not null;uniqueIndex:profit_records_order_id_key"`
	TotalRevenue   int64              `gorm:"column:total_revenue;not null;default:0"`
	ProfitAmount   int64              `gorm:"column:profit_amount;not null;default:0"`
	EmployeeProfit int64              `gorm:"column:employee_profit;not null;default:0"`
	Status         enums.ProfitStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

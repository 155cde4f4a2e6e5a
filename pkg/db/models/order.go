package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Order is one customer purchase. Partner-facing fields stay null until the
// first successful sync; after creation the reconciliation engine is the only
// writer of the money and status columns.
//
// Invariants: FinalAmount == ProductsPrice + DeliveryFee after every
// reconciliation pass, and Discount and PriceIncrease are never both non-zero.
type Order struct {
	ID                     uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TrackingNumber         string                `gorm:"column:tracking_number;type:text;not null;uniqueIndex:orders_tracking_number_key"`
	QRID                   *string               `gorm:"column:qr_id;type:text"`
	DeliveryPartner        enums.DeliveryPartner `gorm:"column:delivery_partner;type:text;not null"`
	DeliveryPartnerOrderID *string               `gorm:"column:delivery_partner_order_id;type:text"`
	CustomerPhone          string                `gorm:"column:customer_phone;type:text;not null"`
	EmployeeID             *uuid.UUID            `gorm:"column:employee_id;type:uuid"`
	EmployeePercent        int64                 `gorm:"column:employee_percent;not null;default:0"`
	ProductsPrice          int64                 `gorm:"column:products_price;not null"`
	DeliveryFee            int64                 `gorm:"column:delivery_fee;not null;default:0"`
	FinalAmount            int64                 `gorm:"column:final_amount;not null"`
	Discount               int64                 `gorm:"column:discount;not null;default:0"`
	PriceIncrease          int64                 `gorm:"column:price_increase;not null;default:0"`
	PriceChangeType        enums.PriceChangeType `gorm:"column:price_change_type;type:text;not null;default:'none'"`
	Status                 enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'created'"`
	DeliveryStatus         *string               `gorm:"column:delivery_status;type:text"`
	ReceiptReceived        bool                  `gorm:"column:receipt_received;not null;default:false"`
	IsReturn               bool                  `gorm:"column:is_return;not null;default:false"`
	OriginalOrderID        *uuid.UUID            `gorm:"column:original_order_id;type:uuid"`
	CreatedAt              time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

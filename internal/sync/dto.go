package sync

import (
	"github.com/google/uuid"

	"github.com/umarxon/delivera-backend/pkg/enums"
)

// SyncResult summarizes one reconciliation pass over a single order.
type SyncResult struct {
	OrderID         uuid.UUID             `json:"order_id"`
	Updated         bool                  `json:"updated"`
	Status          enums.OrderStatus     `json:"status"`
	DeliveryStatus  string                `json:"delivery_status"`
	PriceChange     enums.PriceChangeType `json:"price_change"`
	ReceiptReceived bool                  `json:"receipt_received"`
}

// WebhookEvent is the normalized partner push payload. ID is the partner's
// identifier for the order and is matched against qr_id, tracking_number and
// delivery_partner_order_id in that order.
type WebhookEvent struct {
	ID                  string
	StatusCode          string
	ReportedTotalPrice  int64
	ReportedDeliveryFee int64
	FinancialConfirmed  bool
}

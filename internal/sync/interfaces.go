package sync

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/internal/partner"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Repository manages persistence for orders and their profit records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// FindByIdentifier tries qr_id, then tracking_number, then
	// delivery_partner_order_id; first match wins.
	FindByIdentifier(ctx context.Context, candidate string) (*models.Order, error)
	ListOpenOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error

	GetProfitRecord(ctx context.Context, orderID uuid.UUID) (*models.ProfitRecord, error)
	CreateProfitRecord(ctx context.Context, record *models.ProfitRecord) error
	UpdateProfitRevenue(ctx context.Context, orderID uuid.UUID, totalRevenue int64) error
}

// PartnerGateway is the slice of the partner proxy the sync handler needs.
type PartnerGateway interface {
	GetOrderStatus(ctx context.Context, p enums.DeliveryPartner, partnerOrderID string) (*partner.Snapshot, error)
}

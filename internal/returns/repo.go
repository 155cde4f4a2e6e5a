package returns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Repository manages persistence for return resolution.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// FindLatestDeliveredByPhone is the linking heuristic for returns that
	// arrive without an original order reference: the most recent delivered
	// order on the same customer phone is assumed to be the one coming back.
	FindLatestDeliveredByPhone(ctx context.Context, phone string, excludeID uuid.UUID) (*models.Order, error)
	LinkReturn(ctx context.Context, returnOrderID, originalOrderID uuid.UUID) error

	GetProfitRecord(ctx context.Context, orderID uuid.UUID) (*models.ProfitRecord, error)
	UpdateProfitDeductions(ctx context.Context, orderID uuid.UUID, totalRevenue, profitAmount, employeeProfit int64) error

	CreateReturnHistory(ctx context.Context, history *models.ReturnHistory) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a returns repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLatestDeliveredByPhone(ctx context.Context, phone string, excludeID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("customer_phone = ?", phone).
		Where("status = ?", enums.OrderStatusDelivered).
		Where("is_return = ?", false).
		Where("id <> ?", excludeID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) LinkReturn(ctx context.Context, returnOrderID, originalOrderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", returnOrderID).
		Updates(map[string]any{
			"is_return":         true,
			"original_order_id": originalOrderID,
		}).Error
}

func (r *repository) GetProfitRecord(ctx context.Context, orderID uuid.UUID) (*models.ProfitRecord, error) {
	var record models.ProfitRecord
	if err := r.db.WithContext(ctx).First(&record, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) UpdateProfitDeductions(ctx context.Context, orderID uuid.UUID, totalRevenue, profitAmount, employeeProfit int64) error {
	return r.db.WithContext(ctx).
		Model(&models.ProfitRecord{}).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"total_revenue":   totalRevenue,
			"profit_amount":   profitAmount,
			"employee_profit": employeeProfit,
		}).Error
}

func (r *repository) CreateReturnHistory(ctx context.Context, history *models.ReturnHistory) error {
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(history).Error
}

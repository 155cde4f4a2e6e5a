package sync

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sync repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIdentifier resolves a partner-supplied identifier against qr_id,
// then tracking_number, then delivery_partner_order_id. The first column
// with a hit wins, regardless of row age.
func (r *repository) FindByIdentifier(ctx context.Context, candidate string) (*models.Order, error) {
	for _, column := range []string{"qr_id", "tracking_number", "delivery_partner_order_id"} {
		var order models.Order
		err := r.db.WithContext(ctx).
			Where(column+" = ?", candidate).
			Order("created_at DESC").
			First(&order).Error
		if err == nil {
			return &order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *repository) ListOpenOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).
		Where("status IN ?", []enums.OrderStatus{enums.OrderStatusCreated, enums.OrderStatusInTransit}).
		Where("delivery_partner_order_id IS NOT NULL").
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) GetProfitRecord(ctx context.Context, orderID uuid.UUID) (*models.ProfitRecord, error) {
	var record models.ProfitRecord
	if err := r.db.WithContext(ctx).First(&record, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) CreateProfitRecord(ctx context.Context, record *models.ProfitRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) UpdateProfitRevenue(ctx context.Context, orderID uuid.UUID, totalRevenue int64) error {
	return r.db.WithContext(ctx).
		Model(&models.ProfitRecord{}).
		Where("order_id = ?", orderID).
		Update("total_revenue", totalRevenue).Error
}

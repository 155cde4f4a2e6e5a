package integrity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Repository exposes the read queries the checker needs plus the single write
// used by explicit repair.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListMovements(ctx context.Context) ([]models.CashMovement, error)
	GetMovement(ctx context.Context, id uuid.UUID) (*models.CashMovement, error)
	ListApprovedExpenses(ctx context.Context) ([]models.Expense, error)
	CreateMovement(ctx context.Context, movement *models.CashMovement) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an integrity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListMovements(ctx context.Context) ([]models.CashMovement, error) {
	var movements []models.CashMovement
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) GetMovement(ctx context.Context, id uuid.UUID) (*models.CashMovement, error) {
	var movement models.CashMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// ListApprovedExpenses returns the expenses the ledger pairing applies to.
// System expenses (return refunds) carry movements keyed by their own
// reference types and stay out of the expense cross-check.
func (r *repository) ListApprovedExpenses(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ExpenseStatusApproved).
		Where("is_system = ?", false).
		Order("created_at ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.CashMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

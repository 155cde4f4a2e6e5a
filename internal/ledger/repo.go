package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Repository manages persistence for expenses and cash movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	CreateMovement(ctx context.Context, movement *models.CashMovement) error
	FindMovementByReference(ctx context.Context, refType enums.ReferenceType, refID string) (*models.CashMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) GetExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.CashMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) FindMovementByReference(ctx context.Context, refType enums.ReferenceType, refID string) (*models.CashMovement, error) {
	var movement models.CashMovement
	err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		First(&movement).Error
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

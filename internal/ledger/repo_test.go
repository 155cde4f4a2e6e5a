package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	expenses := `
CREATE TABLE IF NOT EXISTS expenses (
  id TEXT PRIMARY KEY,
  description TEXT NOT NULL,
  amount INTEGER NOT NULL,
  category TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'approved',
  is_system INTEGER NOT NULL DEFAULT 0,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	movements := `
CREATE TABLE IF NOT EXISTS cash_movements (
  id TEXT PRIMARY KEY,
  direction TEXT NOT NULL,
  amount INTEGER NOT NULL,
  reference_type TEXT NOT NULL,
  reference_id TEXT NOT NULL,
  description TEXT,
  created_at DATETIME,
  UNIQUE (reference_type, reference_id)
);`
	require.NoError(t, gdb.Exec(expenses).Error)
	require.NoError(t, gdb.Exec(movements).Error)
	return gdb
}

func TestRepositoryMovementReferenceUnique(t *testing.T) {
	gdb := setupLedgerTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	refID := uuid.NewString()
	first := &models.CashMovement{
		Direction:     enums.MovementOut,
		Amount:        10000,
		ReferenceType: enums.ReferenceTypeExpense,
		ReferenceID:   refID,
	}
	require.NoError(t, repo.CreateMovement(ctx, first))

	dup := &models.CashMovement{
		Direction:     enums.MovementOut,
		Amount:        10000,
		ReferenceType: enums.ReferenceTypeExpense,
		ReferenceID:   refID,
	}
	err := repo.CreateMovement(ctx, dup)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))

	// Same reference id under a different type is a distinct logical cause.
	refund := &models.CashMovement{
		Direction:     enums.MovementIn,
		Amount:        10000,
		ReferenceType: enums.ReferenceTypeExpenseRefund,
		ReferenceID:   refID,
	}
	require.NoError(t, repo.CreateMovement(ctx, refund))
}

func TestRepositoryFindMovementByReference(t *testing.T) {
	gdb := setupLedgerTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	refID := uuid.NewString()
	desc := "return of order TRK-1"
	require.NoError(t, repo.CreateMovement(ctx, &models.CashMovement{
		Direction:     enums.MovementOut,
		Amount:        25000,
		ReferenceType: enums.ReferenceTypeAdjustment,
		ReferenceID:   refID,
		Description:   &desc,
	}))

	found, err := repo.FindMovementByReference(ctx, enums.ReferenceTypeAdjustment, refID)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), found.Amount)

	_, err = repo.FindMovementByReference(ctx, enums.ReferenceTypeCustomerRefund, refID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryExpenseLifecycle(t *testing.T) {
	gdb := setupLedgerTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	expense := &models.Expense{
		Description: "courier bonus",
		Amount:      15000,
		Category:    "payroll",
		Status:      enums.ExpenseStatusApproved,
	}
	require.NoError(t, repo.CreateExpense(ctx, expense))
	require.NotEqual(t, uuid.Nil, expense.ID)

	loaded, err := repo.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, "courier bonus", loaded.Description)

	require.NoError(t, repo.DeleteExpense(ctx, expense.ID))
	_, err = repo.GetExpense(ctx, expense.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

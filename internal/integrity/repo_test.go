package integrity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

func setupIntegrityTestDB(t *testing.T) *gorm.DB {
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

func TestRepositoryListApprovedExpensesScopesOutSystemRows(t *testing.T) {
	gdb := setupIntegrityTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	operator := &models.Expense{
		ID:          uuid.New(),
		Description: "warehouse rent",
		Amount:      120000,
		Category:    "rent",
		Status:      enums.ExpenseStatusApproved,
	}
	systemRefund := &models.Expense{
		ID:          uuid.New(),
		Description: "customer refund for unmatched return TRK-9",
		Amount:      45000,
		Category:    "customer_refund",
		Status:      enums.ExpenseStatusApproved,
		IsSystem:    true,
	}
	pending := &models.Expense{
		ID:          uuid.New(),
		Description: "unapproved invoice",
		Amount:      30000,
		Category:    "logistics",
		Status:      enums.ExpenseStatusPending,
	}
	for _, expense := range []*models.Expense{operator, systemRefund, pending} {
		require.NoError(t, gdb.Create(expense).Error)
	}

	listed, err := repo.ListApprovedExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, operator.ID, listed[0].ID)
}

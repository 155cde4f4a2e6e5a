package integrity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

type fakeIntegrityRepo struct {
	movements []models.CashMovement
	expenses  []models.Expense
	created   []*models.CashMovement
}

func (f *fakeIntegrityRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeIntegrityRepo) ListMovements(ctx context.Context) ([]models.CashMovement, error) {
	return f.movements, nil
}

func (f *fakeIntegrityRepo) GetMovement(ctx context.Context, id uuid.UUID) (*models.CashMovement, error) {
	for i := range f.movements {
		if f.movements[i].ID == id {
			copied := f.movements[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIntegrityRepo) ListApprovedExpenses(ctx context.Context) ([]models.Expense, error) {
	return f.expenses, nil
}

func (f *fakeIntegrityRepo) CreateMovement(ctx context.Context, movement *models.CashMovement) error {
	f.created = append(f.created, movement)
	return nil
}

func newIntegrityService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func expenseWithMovement(amount int64) (models.Expense, models.CashMovement) {
	expense := models.Expense{
		ID:          uuid.New(),
		Description: "supplies",
		Amount:      amount,
		Category:    "warehouse",
		Status:      enums.ExpenseStatusApproved,
	}
	movement := models.CashMovement{
		ID:            uuid.New(),
		Direction:     enums.MovementOut,
		Amount:        amount,
		ReferenceType: enums.ReferenceTypeExpense,
		ReferenceID:   expense.ID.String(),
	}
	return expense, movement
}

func TestCheckLedgerCleanBooks(t *testing.T) {
	expense, movement := expenseWithMovement(20000)
	repo := &fakeIntegrityRepo{
		expenses:  []models.Expense{expense},
		movements: []models.CashMovement{movement},
	}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	assert.Equal(t, 1, report.MovementsScanned)
	assert.Equal(t, 1, report.ExpensesScanned)
	assert.Equal(t, int64(-20000), report.Balance)
	assert.Empty(t, repo.created)
}

func TestCheckLedgerSystemRefundExpenseIsClean(t *testing.T) {
	// An unlinked return persists a system expense whose movement is keyed by
	// the return order, not by the expense row. That pairing is healthy.
	returnOrderID := uuid.New()
	refundExpense := models.Expense{
		ID:          uuid.New(),
		Description: "customer refund for unmatched return TRK-77",
		Amount:      45000,
		Category:    "customer_refund",
		Status:      enums.ExpenseStatusApproved,
		IsSystem:    true,
	}
	refundMovement := models.CashMovement{
		ID:            uuid.New(),
		Direction:     enums.MovementOut,
		Amount:        45000,
		ReferenceType: enums.ReferenceTypeCustomerRefund,
		ReferenceID:   returnOrderID.String(),
	}
	repo := &fakeIntegrityRepo{
		expenses:  []models.Expense{refundExpense},
		movements: []models.CashMovement{refundMovement},
	}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	assert.Equal(t, int64(-45000), report.Balance)
}

func TestCheckLedgerMissingMovement(t *testing.T) {
	expense := models.Expense{
		ID:          uuid.New(),
		Description: "unpaid invoice",
		Amount:      90000,
		Category:    "logistics",
		Status:      enums.ExpenseStatusApproved,
	}
	repo := &fakeIntegrityRepo{expenses: []models.Expense{expense}}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, IssueMissingMovement, issue.Kind)
	require.NotNil(t, issue.ExpenseID)
	assert.Equal(t, expense.ID, *issue.ExpenseID)
	assert.Equal(t, int64(90000), issue.Amount)
}

func TestCheckLedgerAmountMismatch(t *testing.T) {
	expense, movement := expenseWithMovement(20000)
	movement.Amount = 25000
	repo := &fakeIntegrityRepo{
		expenses:  []models.Expense{expense},
		movements: []models.CashMovement{movement},
	}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueAmountMismatch, report.Issues[0].Kind)
}

func TestCheckLedgerDuplicateMovements(t *testing.T) {
	refID := uuid.NewString()
	dup1 := models.CashMovement{
		ID:            uuid.New(),
		Direction:     enums.MovementOut,
		Amount:        30000,
		ReferenceType: enums.ReferenceTypeAdjustment,
		ReferenceID:   refID,
	}
	dup2 := dup1
	dup2.ID = uuid.New()
	dup2.ReferenceType = enums.ReferenceTypeCustomerRefund
	repo := &fakeIntegrityRepo{movements: []models.CashMovement{dup1, dup2}}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, IssueDuplicateMovement, issue.Kind)
	assert.Len(t, issue.MovementIDs, 2)
}

func TestCheckLedgerReversedExpenseIsClean(t *testing.T) {
	// The expense row was deleted by a reversal; its refund movement remains.
	_, movement := expenseWithMovement(15000)
	refund := models.CashMovement{
		ID:            uuid.New(),
		Direction:     enums.MovementIn,
		Amount:        15000,
		ReferenceType: enums.ReferenceTypeExpenseRefund,
		ReferenceID:   movement.ReferenceID,
	}
	repo := &fakeIntegrityRepo{movements: []models.CashMovement{movement, refund}}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	assert.Equal(t, int64(0), report.Balance)
}

func TestCheckLedgerOrphanMovement(t *testing.T) {
	_, movement := expenseWithMovement(15000)
	repo := &fakeIntegrityRepo{movements: []models.CashMovement{movement}}

	report, err := newIntegrityService(t, repo).CheckLedger(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueOrphanMovement, report.Issues[0].Kind)
}

func TestRepairWritesCompensatingMovement(t *testing.T) {
	_, movement := expenseWithMovement(40000)
	repo := &fakeIntegrityRepo{movements: []models.CashMovement{movement}}

	svc := newIntegrityService(t, repo)
	compensation, err := svc.Repair(context.Background(), movement.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.MovementIn, compensation.Direction)
	assert.Equal(t, int64(40000), compensation.Amount)
	assert.Equal(t, enums.ReferenceTypeAdjustment, compensation.ReferenceType)
	assert.Equal(t, "repair:"+movement.ID.String(), compensation.ReferenceID)
	require.Len(t, repo.created, 1)
}

func TestRepairUnknownMovement(t *testing.T) {
	svc := newIntegrityService(t, &fakeIntegrityRepo{})
	_, err := svc.Repair(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

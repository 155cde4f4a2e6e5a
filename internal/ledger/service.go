package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// Service defines the financial operations that touch the cash balance. Every
// expense is paired with exactly one cash movement; when the movement cannot
// be written, the expense is rolled back so the books never drift.
type Service interface {
	ApplyExpense(ctx context.Context, input ApplyExpenseInput) (*models.Expense, error)
	ReverseExpense(ctx context.Context, expenseID uuid.UUID) error
	RecordReturnAdjustment(ctx context.Context, returnOrderID uuid.UUID, amount int64, description string) (*models.CashMovement, error)
	RecordCustomerRefund(ctx context.Context, returnOrderID uuid.UUID, amount int64, description string) (*models.CashMovement, error)
}

// ApplyExpenseInput captures the data one expense requires.
type ApplyExpenseInput struct {
	Description string          `json:"description" validate:"required"`
	Amount      int64           `json:"amount" validate:"required,gt=0"`
	Category    string          `json:"category" validate:"required"`
	IsSystem    bool            `json:"is_system"`
	Metadata    json.RawMessage `json:"metadata"`
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ApplyExpense(ctx context.Context, input ApplyExpenseInput) (*models.Expense, error) {
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense amount must be positive")
	}
	if input.Description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense description required")
	}
	if input.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense category required")
	}

	expense := &models.Expense{
		ID:          uuid.New(),
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
		Status:      enums.ExpenseStatusApproved,
		IsSystem:    input.IsSystem,
		Metadata:    input.Metadata,
	}
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}

	// System expenses carry their cash effect under their own reference
	// (customer_refund, return order id); only operator expenses pair with
	// an (expense, id) movement here.
	if expense.IsSystem {
		return expense, nil
	}

	movement := &models.CashMovement{
		Direction:     enums.MovementOut,
		Amount:        expense.Amount,
		ReferenceType: enums.ReferenceTypeExpense,
		ReferenceID:   expense.ID.String(),
		Description:   &expense.Description,
	}
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		// Compensate: an expense without its movement would understate the
		// cash balance, so the row must not survive.
		if delErr := s.repo.DeleteExpense(ctx, expense.ID); delErr != nil {
			s.logg.Error(ctx, "expense rollback failed after movement write error", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeLedgerWrite, err, "record expense movement")
	}

	return expense, nil
}

func (s *service) ReverseExpense(ctx context.Context, expenseID uuid.UUID) error {
	if expenseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "expense id required")
	}

	refID := expenseID.String()
	if _, err := s.repo.FindMovementByReference(ctx, enums.ReferenceTypeExpenseRefund, refID); err == nil {
		// Already reversed; replaying is a no-op.
		return nil
	} else if !isNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check refund movement")
	}

	expense, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expense")
	}

	if err := s.repo.DeleteExpense(ctx, expenseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}

	description := "reversal: " + expense.Description
	movement := &models.CashMovement{
		Direction:     enums.MovementIn,
		Amount:        expense.Amount,
		ReferenceType: enums.ReferenceTypeExpenseRefund,
		ReferenceID:   refID,
		Description:   &description,
	}
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		// Put the expense back; a deletion without its compensating movement
		// would silently inflate the balance.
		restored := *expense
		if createErr := s.repo.CreateExpense(ctx, &restored); createErr != nil {
			s.logg.Error(ctx, "expense restore failed after refund movement error", createErr)
		}
		return pkgerrors.Wrap(pkgerrors.CodeLedgerWrite, err, "record refund movement")
	}

	return nil
}

func (s *service) RecordReturnAdjustment(ctx context.Context, returnOrderID uuid.UUID, amount int64, description string) (*models.CashMovement, error) {
	if returnOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return order id required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment amount must be positive")
	}

	movement := &models.CashMovement{
		Direction:     enums.MovementOut,
		Amount:        amount,
		ReferenceType: enums.ReferenceTypeAdjustment,
		ReferenceID:   returnOrderID.String(),
		Description:   &description,
	}
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		if db.IsUniqueViolation(err, "") {
			return s.existingMovement(ctx, enums.ReferenceTypeAdjustment, returnOrderID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeLedgerWrite, err, "record return adjustment")
	}
	return movement, nil
}

func (s *service) RecordCustomerRefund(ctx context.Context, returnOrderID uuid.UUID, amount int64, description string) (*models.CashMovement, error) {
	if returnOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return order id required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	metadata, _ := json.Marshal(map[string]string{"return_order_id": returnOrderID.String()})
	expense := &models.Expense{
		ID:          uuid.New(),
		Description: description,
		Amount:      amount,
		Category:    "customer_refund",
		Status:      enums.ExpenseStatusApproved,
		IsSystem:    true,
		Metadata:    metadata,
	}
	if err := s.repo.CreateExpense(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund expense")
	}

	movement := &models.CashMovement{
		Direction:     enums.MovementOut,
		Amount:        amount,
		ReferenceType: enums.ReferenceTypeCustomerRefund,
		ReferenceID:   returnOrderID.String(),
		Description:   &description,
	}
	if err := s.repo.CreateMovement(ctx, movement); err != nil {
		if delErr := s.repo.DeleteExpense(ctx, expense.ID); delErr != nil {
			s.logg.Error(ctx, "refund expense rollback failed after movement write error", delErr)
		}
		if db.IsUniqueViolation(err, "") {
			return s.existingMovement(ctx, enums.ReferenceTypeCustomerRefund, returnOrderID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeLedgerWrite, err, "record refund movement")
	}
	return movement, nil
}

func (s *service) existingMovement(ctx context.Context, refType enums.ReferenceType, refID string) (*models.CashMovement, error) {
	movement, err := s.repo.FindMovementByReference(ctx, refType, refID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing movement")
	}
	return movement, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

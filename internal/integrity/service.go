package integrity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/pkg/db/models"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// IssueKind classifies a single ledger inconsistency.
type IssueKind string

const (
	IssueMissingMovement   IssueKind = "missing_movement"
	IssueDuplicateMovement IssueKind = "duplicate_movement"
	IssueAmountMismatch    IssueKind = "amount_mismatch"
	IssueOrphanMovement    IssueKind = "orphan_movement"
)

// Issue is one inconsistency found by the checker.
type Issue struct {
	Kind        IssueKind   `json:"kind"`
	ExpenseID   *uuid.UUID  `json:"expense_id,omitempty"`
	MovementIDs []uuid.UUID `json:"movement_ids,omitempty"`
	Amount      int64       `json:"amount"`
	Detail      string      `json:"detail"`
}

// Report is the outcome of one read-only ledger scan. The checker never
// mutates data; fixing an issue is a separate, explicit Repair call.
type Report struct {
	GeneratedAt      time.Time `json:"generated_at"`
	MovementsScanned int       `json:"movements_scanned"`
	ExpensesScanned  int       `json:"expenses_scanned"`
	Balance          int64     `json:"balance"`
	Issues           []Issue   `json:"issues"`
}

// Service checks ledger consistency and applies explicit repairs.
type Service interface {
	CheckLedger(ctx context.Context) (*Report, error)
	Repair(ctx context.Context, movementID uuid.UUID) (*models.CashMovement, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the integrity checker.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("integrity repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) CheckLedger(ctx context.Context) (*Report, error) {
	var scanErr error

	movements, err := s.repo.ListMovements(ctx)
	if err != nil {
		scanErr = multierr.Append(scanErr, fmt.Errorf("list movements: %w", err))
	}
	expenses, err := s.repo.ListApprovedExpenses(ctx)
	if err != nil {
		scanErr = multierr.Append(scanErr, fmt.Errorf("list expenses: %w", err))
	}
	if scanErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, scanErr, "ledger scan")
	}

	report := &Report{
		GeneratedAt:      time.Now().UTC(),
		MovementsScanned: len(movements),
		ExpensesScanned:  len(expenses),
	}

	byReference := map[string][]models.CashMovement{}
	for _, movement := range movements {
		if movement.Direction == enums.MovementIn {
			report.Balance += movement.Amount
		} else {
			report.Balance -= movement.Amount
		}
		byReference[movement.ReferenceID] = append(byReference[movement.ReferenceID], movement)
	}

	report.Issues = append(report.Issues, duplicateIssues(byReference)...)
	report.Issues = append(report.Issues, expenseIssues(expenses, byReference)...)
	report.Issues = append(report.Issues, orphanIssues(expenses, movements)...)

	return report, nil
}

// duplicateIssues flags reference ids that accumulated more than one movement
// in the same direction with the same amount. The unique reference index stops
// exact duplicates; this catches the same cause recorded under two types.
func duplicateIssues(byReference map[string][]models.CashMovement) []Issue {
	var issues []Issue
	for refID, group := range byReference {
		if len(group) < 2 {
			continue
		}
		seen := map[string][]uuid.UUID{}
		for _, movement := range group {
			key := fmt.Sprintf("%s|%d", movement.Direction, movement.Amount)
			seen[key] = append(seen[key], movement.ID)
		}
		for _, ids := range seen {
			if len(ids) < 2 {
				continue
			}
			issues = append(issues, Issue{
				Kind:        IssueDuplicateMovement,
				MovementIDs: ids,
				Amount:      group[0].Amount,
				Detail:      fmt.Sprintf("reference %s has %d movements with the same direction and amount", refID, len(ids)),
			})
		}
	}
	return issues
}

// expenseIssues cross-checks every approved non-system expense against its
// movement. System expenses never get an (expense, id) movement; their cash
// effect is recorded under the return's own reference.
func expenseIssues(expenses []models.Expense, byReference map[string][]models.CashMovement) []Issue {
	var issues []Issue
	for i := range expenses {
		expense := expenses[i]
		if expense.IsSystem {
			continue
		}
		refID := expense.ID.String()

		var match *models.CashMovement
		for j := range byReference[refID] {
			movement := byReference[refID][j]
			if movement.ReferenceType == enums.ReferenceTypeExpense {
				match = &movement
				break
			}
		}

		if match == nil {
			id := expense.ID
			issues = append(issues, Issue{
				Kind:      IssueMissingMovement,
				ExpenseID: &id,
				Amount:    expense.Amount,
				Detail:    fmt.Sprintf("approved expense %q has no cash movement", expense.Description),
			})
			continue
		}
		if match.Amount != expense.Amount {
			id := expense.ID
			issues = append(issues, Issue{
				Kind:        IssueAmountMismatch,
				ExpenseID:   &id,
				MovementIDs: []uuid.UUID{match.ID},
				Amount:      expense.Amount,
				Detail:      fmt.Sprintf("expense amount %d does not match movement amount %d", expense.Amount, match.Amount),
			})
		}
	}
	return issues
}

// orphanIssues finds expense movements whose expense row is gone without a
// compensating refund movement. Reversals legitimately delete the row, so a
// (expense, expense_refund) pair is clean.
func orphanIssues(expenses []models.Expense, movements []models.CashMovement) []Issue {
	existing := map[string]bool{}
	for _, expense := range expenses {
		existing[expense.ID.String()] = true
	}
	refunded := map[string]bool{}
	for _, movement := range movements {
		if movement.ReferenceType == enums.ReferenceTypeExpenseRefund {
			refunded[movement.ReferenceID] = true
		}
	}

	var issues []Issue
	for _, movement := range movements {
		if movement.ReferenceType != enums.ReferenceTypeExpense {
			continue
		}
		if existing[movement.ReferenceID] || refunded[movement.ReferenceID] {
			continue
		}
		issues = append(issues, Issue{
			Kind:        IssueOrphanMovement,
			MovementIDs: []uuid.UUID{movement.ID},
			Amount:      movement.Amount,
			Detail:      fmt.Sprintf("movement references expense %s which no longer exists", movement.ReferenceID),
		})
	}
	return issues
}

// Repair writes a compensating movement for the given one. It is the only
// write path in this package and always leaves an audit trail: the original
// movement stays untouched and the compensation carries a repair reference.
func (s *service) Repair(ctx context.Context, movementID uuid.UUID) (*models.CashMovement, error) {
	if movementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id required")
	}

	movement, err := s.repo.GetMovement(ctx, movementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load movement")
	}

	direction := enums.MovementIn
	if movement.Direction == enums.MovementIn {
		direction = enums.MovementOut
	}
	description := fmt.Sprintf("integrity repair of movement %s", movement.ID)
	compensation := &models.CashMovement{
		Direction:     direction,
		Amount:        movement.Amount,
		ReferenceType: enums.ReferenceTypeAdjustment,
		ReferenceID:   "repair:" + movement.ID.String(),
		Description:   &description,
	}
	if err := s.repo.CreateMovement(ctx, compensation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeLedgerWrite, err, "write repair movement")
	}

	s.logg.Info(s.logg.WithField(ctx, "movement_id", movement.ID.String()), "compensating movement written")
	return compensation, nil
}

package returns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/internal/notifications"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// Service resolves incoming returns against their original orders and applies
// the financial consequences. The audit row is written for every attempt, so
// a failed financial pass can be retried without losing track of what happened.
type Service interface {
	Resolve(ctx context.Context, input ResolveInput) (*Resolution, error)
}

// ResolveInput identifies the return order being processed. RefundAmount
// overrides the refunded sum for partial refunds; when nil the original
// order's final amount (or the return order's, when unlinked) is refunded.
type ResolveInput struct {
	ReturnOrderID uuid.UUID
	RefundAmount  *int64
	ActorID       *uuid.UUID
}

// Resolution summarizes the outcome of one return pass.
type Resolution struct {
	ReturnOrderID           uuid.UUID  `json:"return_order_id"`
	OriginalOrderID         *uuid.UUID `json:"original_order_id,omitempty"`
	RefundAmount            int64      `json:"refund_amount"`
	EmployeeDeduction       int64      `json:"employee_deduction"`
	SystemDeduction         int64      `json:"system_deduction"`
	FinancialHandlerSuccess bool       `json:"financial_handler_success"`
}

// LedgerRecorder is the slice of the ledger the return resolver needs.
type LedgerRecorder interface {
	RecordReturnAdjustment(ctx context.Context, returnOrderID uuid.UUID, amount int64, description string) (*models.CashMovement, error)
	RecordCustomerRefund(ctx context.Context, returnOrderID uuid.UUID, amount int64, description string) (*models.CashMovement, error)
}

type service struct {
	repo     Repository
	ledger   LedgerRecorder
	notifier notifications.Service
	logg     *logger.Logger
}

// NewService wires the return resolver. The notifier is optional.
func NewService(repo Repository, ledger LedgerRecorder, notifier notifications.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, ledger: ledger, notifier: notifier, logg: logg}, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*Resolution, error) {
	if input.ReturnOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return order id required")
	}
	if input.RefundAmount != nil && *input.RefundAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	returnOrder, err := s.repo.GetOrder(ctx, input.ReturnOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "return order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return order")
	}
	if returnOrder.Status != enums.OrderStatusReturned && returnOrder.Status != enums.OrderStatusReturnedInStock {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in a returned state").
			WithDetails(map[string]any{"status": returnOrder.Status})
	}

	original := s.findOriginal(ctx, returnOrder)

	resolution := &Resolution{ReturnOrderID: returnOrder.ID}
	var handlerErr error
	if original != nil {
		id := original.ID
		resolution.OriginalOrderID = &id
		refund := original.FinalAmount
		if input.RefundAmount != nil {
			refund = *input.RefundAmount
		}
		resolution.RefundAmount = refund
		resolution.EmployeeDeduction, resolution.SystemDeduction =
			splitDeduction(refund, original.EmployeePercent)
		handlerErr = s.applyLinkedReturn(ctx, returnOrder, original, resolution)
	} else {
		refund := returnOrder.FinalAmount
		if input.RefundAmount != nil {
			refund = *input.RefundAmount
		}
		resolution.RefundAmount = refund
		resolution.SystemDeduction = refund
		handlerErr = s.applyUnlinkedReturn(ctx, returnOrder, resolution)
	}
	resolution.FinancialHandlerSuccess = handlerErr == nil

	history := &models.ReturnHistory{
		ReturnOrderID:           returnOrder.ID,
		OriginalOrderID:         resolution.OriginalOrderID,
		RefundAmount:            resolution.RefundAmount,
		EmployeeDeduction:       resolution.EmployeeDeduction,
		SystemDeduction:         resolution.SystemDeduction,
		FinancialHandlerSuccess: resolution.FinancialHandlerSuccess,
		ActorID:                 input.ActorID,
	}
	if handlerErr != nil {
		msg := handlerErr.Error()
		history.ErrorMessage = &msg
	}
	if err := s.repo.CreateReturnHistory(ctx, history); err != nil {
		// The audit row is the one write that must never be skipped.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write return history")
	}

	if handlerErr != nil {
		return nil, handlerErr
	}

	s.notifyReturn(ctx, returnOrder, original, resolution)
	return resolution, nil
}

func (s *service) findOriginal(ctx context.Context, returnOrder *models.Order) *models.Order {
	if returnOrder.OriginalOrderID != nil {
		original, err := s.repo.GetOrder(ctx, *returnOrder.OriginalOrderID)
		if err == nil {
			return original
		}
		s.logg.Warn(s.logg.WithOrderID(ctx, returnOrder.ID.String()),
			"linked original order could not be loaded, falling back to phone lookup")
	}

	original, err := s.repo.FindLatestDeliveredByPhone(ctx, returnOrder.CustomerPhone, returnOrder.ID)
	if err != nil {
		return nil
	}
	return original
}

func (s *service) applyLinkedReturn(ctx context.Context, returnOrder, original *models.Order, resolution *Resolution) error {
	if err := s.repo.LinkReturn(ctx, returnOrder.ID, original.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist return link")
	}

	description := fmt.Sprintf("return of order %s", original.TrackingNumber)
	if _, err := s.ledger.RecordReturnAdjustment(ctx, returnOrder.ID, resolution.RefundAmount, description); err != nil {
		return err
	}

	return s.deductProfit(ctx, original.ID, resolution.SystemDeduction, resolution.EmployeeDeduction)
}

func (s *service) applyUnlinkedReturn(ctx context.Context, returnOrder *models.Order, resolution *Resolution) error {
	description := fmt.Sprintf("customer refund for unmatched return %s", returnOrder.TrackingNumber)
	_, err := s.ledger.RecordCustomerRefund(ctx, returnOrder.ID, resolution.RefundAmount, description)
	return err
}

// deductProfit lowers the original order's revenue and profit figures. The
// full refund comes off total_revenue, the system share off profit_amount and
// the employee share off employee_profit. Every column clamps at zero; a
// return never drives the record negative.
func (s *service) deductProfit(ctx context.Context, originalOrderID uuid.UUID, systemDeduction, employeeDeduction int64) error {
	record, err := s.repo.GetProfitRecord(ctx, originalOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profit record")
	}

	revenue := record.TotalRevenue - (systemDeduction + employeeDeduction)
	if revenue < 0 {
		revenue = 0
	}
	profit := record.ProfitAmount - systemDeduction
	if profit < 0 {
		profit = 0
	}
	employee := record.EmployeeProfit - employeeDeduction
	if employee < 0 {
		employee = 0
	}
	if revenue == record.TotalRevenue && profit == record.ProfitAmount && employee == record.EmployeeProfit {
		return nil
	}
	if err := s.repo.UpdateProfitDeductions(ctx, originalOrderID, revenue, profit, employee); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profit deductions")
	}
	return nil
}

func (s *service) notifyReturn(ctx context.Context, returnOrder *models.Order, original *models.Order, resolution *Resolution) {
	if s.notifier == nil || original == nil || original.EmployeeID == nil {
		return
	}

	data, _ := json.Marshal(resolution)
	_, err := s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:  *original.EmployeeID,
		Type:    enums.NotificationTypeReturnAlert,
		Title:   "Order returned",
		Message: fmt.Sprintf("Order %s was returned, %d deducted from your profit", original.TrackingNumber, resolution.EmployeeDeduction),
		Data:    data,
	})
	if err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, returnOrder.ID.String()), "return notification failed", err)
	}
}

// splitDeduction divides the refund between employee and system shares. The
// employee share floors, so rounding remainders always land on the system side.
func splitDeduction(refund, employeePercent int64) (employee, system int64) {
	if refund <= 0 {
		return 0, 0
	}
	if employeePercent <= 0 {
		return 0, refund
	}
	if employeePercent > 100 {
		employeePercent = 100
	}

	share := decimal.NewFromInt(refund).
		Mul(decimal.NewFromInt(employeePercent)).
		Div(decimal.NewFromInt(100)).
		Floor()
	employee = share.IntPart()
	return employee, refund - employee
}

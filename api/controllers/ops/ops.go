package ops

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/umarxon/delivera-backend/api/responses"
	"github.com/umarxon/delivera-backend/api/validators"
	"github.com/umarxon/delivera-backend/internal/integrity"
	"github.com/umarxon/delivera-backend/internal/ledger"
	"github.com/umarxon/delivera-backend/internal/returns"
	"github.com/umarxon/delivera-backend/internal/sync"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// ReconcileOrder triggers a manual reconciliation pass for one order.
func ReconcileOrder(svc sync.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		result, err := svc.Reconcile(logg.WithOrderID(ctx, orderID.String()), orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type resolveReturnRequest struct {
	ReturnOrderID string  `json:"return_order_id" validate:"required,uuid"`
	RefundAmount  *int64  `json:"refund_amount,omitempty" validate:"omitempty,gt=0"`
	ActorID       *string `json:"actor_id,omitempty" validate:"omitempty,uuid"`
}

// ResolveReturn runs the return resolver for one returned order.
func ResolveReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req resolveReturnRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		returnOrderID, err := uuid.Parse(req.ReturnOrderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid return order id"))
			return
		}
		input := returns.ResolveInput{ReturnOrderID: returnOrderID, RefundAmount: req.RefundAmount}
		if req.ActorID != nil {
			actorID, err := uuid.Parse(*req.ActorID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid actor id"))
				return
			}
			input.ActorID = &actorID
		}

		resolution, err := svc.Resolve(logg.WithOrderID(ctx, returnOrderID.String()), input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolution)
	}
}

// IntegrityReport runs the read-only ledger check and returns the findings.
func IntegrityReport(svc integrity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		report, err := svc.CheckLedger(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

type repairRequest struct {
	MovementID string `json:"movement_id" validate:"required,uuid"`
}

// IntegrityRepair writes a compensating movement for the given one.
func IntegrityRepair(svc integrity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req repairRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		movementID, err := uuid.Parse(req.MovementID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement id"))
			return
		}

		movement, err := svc.Repair(ctx, movementID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

type applyExpenseRequest struct {
	Description string `json:"description" validate:"required"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
}

// ApplyExpense records an operator expense with its cash movement.
func ApplyExpense(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req applyExpenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		expense, err := svc.ApplyExpense(ctx, ledger.ApplyExpenseInput{
			Description: req.Description,
			Amount:      req.Amount,
			Category:    req.Category,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ReverseExpense deletes an expense and writes its compensating movement.
func ReverseExpense(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		expenseID, err := uuid.Parse(chi.URLParam(r, "expenseID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense id"))
			return
		}

		if err := svc.ReverseExpense(ctx, expenseID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "reversed"})
	}
}

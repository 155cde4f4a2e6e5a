package deliverywebhook

import (
	"context"
	"fmt"

	"github.com/umarxon/delivera-backend/internal/returns"
	"github.com/umarxon/delivera-backend/internal/sync"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// Outcome reports what one webhook delivery did.
type Outcome struct {
	Duplicate bool             `json:"duplicate"`
	Result    *sync.SyncResult `json:"result,omitempty"`
}

// Service processes partner status webhooks.
type Service struct {
	guard     *IdempotencyGuard
	syncSvc   sync.Service
	returnSvc returns.Service
	logg      *logger.Logger
}

// ServiceParams configure the webhook handler. Guard and ReturnService are
// optional; without a guard every delivery is processed.
type ServiceParams struct {
	Guard         *IdempotencyGuard
	SyncService   sync.Service
	ReturnService returns.Service
	Logger        *logger.Logger
}

// NewService wires the webhook handler.
func NewService(params ServiceParams) (*Service, error) {
	if params.SyncService == nil {
		return nil, fmt.Errorf("sync service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		guard:     params.Guard,
		syncSvc:   params.SyncService,
		returnSvc: params.ReturnService,
		logg:      params.Logger,
	}, nil
}

// HandleEvent applies one partner webhook. Replays of an already processed
// event succeed without touching the order again; a failed apply clears the
// idempotency mark so the partner's retry gets another chance.
func (s *Service) HandleEvent(ctx context.Context, event sync.WebhookEvent) (*Outcome, error) {
	if event.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if event.StatusCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status code required")
	}

	dedupeKey := event.ID + ":" + event.StatusCode
	if s.guard != nil {
		seen, err := s.guard.CheckAndMark(ctx, dedupeKey)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check")
		}
		if seen {
			s.logg.Info(s.logg.WithField(ctx, "event_id", event.ID), "duplicate webhook delivery skipped")
			return &Outcome{Duplicate: true}, nil
		}
	}

	result, order, err := s.syncSvc.ApplyWebhook(ctx, event)
	if err != nil {
		if s.guard != nil {
			if delErr := s.guard.Delete(ctx, dedupeKey); delErr != nil {
				s.logg.Error(ctx, "failed to clear idempotency mark", delErr)
			}
		}
		return nil, err
	}

	if s.returnSvc != nil && isReturnedStatus(result.Status) {
		orderCtx := s.logg.WithOrderID(ctx, order.ID.String())
		if _, err := s.returnSvc.Resolve(orderCtx, returns.ResolveInput{ReturnOrderID: order.ID}); err != nil {
			s.logg.Error(orderCtx, "return resolution failed", err)
		}
	}

	return &Outcome{Result: result}, nil
}

func isReturnedStatus(status enums.OrderStatus) bool {
	return status == enums.OrderStatusReturned || status == enums.OrderStatusReturnedInStock
}

package cron

import (
	"context"
	"fmt"

	"github.com/umarxon/delivera-backend/internal/returns"
	"github.com/umarxon/delivera-backend/internal/sync"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

const defaultSyncBatchSize = 200

// SyncJob polls the delivery partners for every open order and applies the
// result. Orders that come back as returned are handed to the return resolver
// in the same pass.
type SyncJob struct {
	repo      sync.Repository
	syncSvc   sync.Service
	returnSvc returns.Service
	logg      *logger.Logger
	batchSize int
}

// NewSyncJob builds the partner polling job. The return resolver is optional.
func NewSyncJob(repo sync.Repository, syncSvc sync.Service, returnSvc returns.Service, logg *logger.Logger, batchSize int) (*SyncJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("sync repository required")
	}
	if syncSvc == nil {
		return nil, fmt.Errorf("sync service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if batchSize <= 0 {
		batchSize = defaultSyncBatchSize
	}
	return &SyncJob{
		repo:      repo,
		syncSvc:   syncSvc,
		returnSvc: returnSvc,
		logg:      logg,
		batchSize: batchSize,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *SyncJob) Name() string { return "partner_sync" }

// Run reconciles one batch of open orders. A failure on one order does not
// stop the rest of the batch.
func (j *SyncJob) Run(ctx context.Context) error {
	orders, err := j.repo.ListOpenOrders(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}
	if len(orders) == 0 {
		j.logg.Info(ctx, "no open orders to reconcile")
		return nil
	}

	var failed int
	for _, order := range orders {
		orderCtx := j.logg.WithOrderID(ctx, order.ID.String())
		orderCtx = j.logg.WithPartner(orderCtx, string(order.DeliveryPartner))

		result, err := j.syncSvc.Reconcile(orderCtx, order.ID)
		if err != nil {
			failed++
			j.logg.Error(orderCtx, "order reconciliation failed", err)
			continue
		}

		if j.returnSvc != nil && isReturnedStatus(result.Status) {
			if _, err := j.returnSvc.Resolve(orderCtx, returns.ResolveInput{ReturnOrderID: order.ID}); err != nil {
				j.logg.Error(orderCtx, "return resolution failed", err)
			}
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"orders": len(orders),
		"failed": failed,
	}), "reconciliation batch finished")

	if failed == len(orders) {
		return fmt.Errorf("all %d reconciliations failed", failed)
	}
	return nil
}

func isReturnedStatus(status enums.OrderStatus) bool {
	return status == enums.OrderStatusReturned || status == enums.OrderStatusReturnedInStock
}

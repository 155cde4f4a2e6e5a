package deliverywebhook

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarxon/delivera-backend/internal/returns"
	ordersync "github.com/umarxon/delivera-backend/internal/sync"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: map[string]bool{}}
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[key] {
		return "1", nil
	}
	return "", errors.New("redis: nil")
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

type fakeSyncService struct {
	result *ordersync.SyncResult
	order  *models.Order
	err    error
	calls  int
}

func (f *fakeSyncService) Reconcile(ctx context.Context, orderID uuid.UUID) (*ordersync.SyncResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeSyncService) ApplyWebhook(ctx context.Context, event ordersync.WebhookEvent) (*ordersync.SyncResult, *models.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.result, f.order, nil
}

type fakeReturnResolver struct {
	resolved []uuid.UUID
}

func (f *fakeReturnResolver) Resolve(ctx context.Context, input returns.ResolveInput) (*returns.Resolution, error) {
	f.resolved = append(f.resolved, input.ReturnOrderID)
	return &returns.Resolution{ReturnOrderID: input.ReturnOrderID}, nil
}

func newWebhookService(t *testing.T, syncSvc ordersync.Service, resolver returns.Service, store *fakeIdempotencyStore) *Service {
	t.Helper()

	var guard *IdempotencyGuard
	if store != nil {
		var err error
		guard, err = NewIdempotencyGuard(store, time.Hour, "delivery")
		require.NoError(t, err)
	}
	svc, err := NewService(ServiceParams{
		Guard:       guard,
		SyncService: syncSvc,
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	svc.returnSvc = resolver
	return svc
}

func TestHandleEventAppliesWebhook(t *testing.T) {
	orderID := uuid.New()
	syncSvc := &fakeSyncService{
		result: &ordersync.SyncResult{OrderID: orderID, Updated: true, Status: enums.OrderStatusDelivered},
		order:  &models.Order{ID: orderID},
	}

	svc := newWebhookService(t, syncSvc, nil, newFakeIdempotencyStore())
	outcome, err := svc.HandleEvent(context.Background(), ordersync.WebhookEvent{ID: "F-1", StatusCode: "6"})
	require.NoError(t, err)

	assert.False(t, outcome.Duplicate)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, enums.OrderStatusDelivered, outcome.Result.Status)
	assert.Equal(t, 1, syncSvc.calls)
}

func TestHandleEventDeduplicatesReplays(t *testing.T) {
	orderID := uuid.New()
	syncSvc := &fakeSyncService{
		result: &ordersync.SyncResult{OrderID: orderID, Status: enums.OrderStatusInTransit},
		order:  &models.Order{ID: orderID},
	}

	svc := newWebhookService(t, syncSvc, nil, newFakeIdempotencyStore())
	event := ordersync.WebhookEvent{ID: "F-1", StatusCode: "4"}

	first, err := svc.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := svc.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, 1, syncSvc.calls)

	// A different status for the same order is a new event.
	third, err := svc.HandleEvent(context.Background(), ordersync.WebhookEvent{ID: "F-1", StatusCode: "5"})
	require.NoError(t, err)
	assert.False(t, third.Duplicate)
}

func TestHandleEventClearsMarkOnFailure(t *testing.T) {
	syncSvc := &fakeSyncService{err: errors.New("db timeout")}
	store := newFakeIdempotencyStore()

	svc := newWebhookService(t, syncSvc, nil, store)
	event := ordersync.WebhookEvent{ID: "F-2", StatusCode: "4"}

	_, err := svc.HandleEvent(context.Background(), event)
	require.Error(t, err)

	// The partner's retry must get through.
	syncSvc.err = nil
	orderID := uuid.New()
	syncSvc.result = &ordersync.SyncResult{OrderID: orderID, Status: enums.OrderStatusInTransit}
	syncSvc.order = &models.Order{ID: orderID}

	outcome, err := svc.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
}

func TestHandleEventTriggersReturnResolution(t *testing.T) {
	orderID := uuid.New()
	syncSvc := &fakeSyncService{
		result: &ordersync.SyncResult{OrderID: orderID, Status: enums.OrderStatusReturnedInStock},
		order:  &models.Order{ID: orderID},
	}
	resolver := &fakeReturnResolver{}

	svc := newWebhookService(t, syncSvc, resolver, newFakeIdempotencyStore())
	_, err := svc.HandleEvent(context.Background(), ordersync.WebhookEvent{ID: "F-3", StatusCode: "8"})
	require.NoError(t, err)

	require.Len(t, resolver.resolved, 1)
	assert.Equal(t, orderID, resolver.resolved[0])
}

func TestHandleEventValidation(t *testing.T) {
	svc := newWebhookService(t, &fakeSyncService{}, nil, nil)

	_, err := svc.HandleEvent(context.Background(), ordersync.WebhookEvent{StatusCode: "4"})
	assert.Error(t, err)

	_, err = svc.HandleEvent(context.Background(), ordersync.WebhookEvent{ID: "F-1"})
	assert.Error(t, err)
}

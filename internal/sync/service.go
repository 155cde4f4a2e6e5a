package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umarxon/delivera-backend/internal/partner"
	"github.com/umarxon/delivera-backend/internal/pricing"
	"github.com/umarxon/delivera-backend/internal/statusmap"
	"github.com/umarxon/delivera-backend/pkg/db"
	"github.com/umarxon/delivera-backend/pkg/db/models"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// Service drives reconciliation passes. The webhook receiver and the
// scheduled sync both funnel into ApplyEvent so push and pull cannot diverge.
type Service interface {
	Reconcile(ctx context.Context, orderID uuid.UUID) (*SyncResult, error)
	ApplyWebhook(ctx context.Context, event WebhookEvent) (*SyncResult, *models.Order, error)
}

type service struct {
	repo    Repository
	gateway PartnerGateway
	logg    *logger.Logger
}

// NewService wires the sync handler with its dependencies.
func NewService(repo Repository, gateway PartnerGateway, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sync repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("partner gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, gateway: gateway, logg: logg}, nil
}

func (s *service) Reconcile(ctx context.Context, orderID uuid.UUID) (*SyncResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DeliveryPartnerOrderID == nil || *order.DeliveryPartnerOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no partner record yet")
	}

	snapshot, err := s.gateway.GetOrderStatus(ctx, order.DeliveryPartner, *order.DeliveryPartnerOrderID)
	if err != nil {
		return nil, err
	}

	return s.applyEvent(ctx, order, *snapshot)
}

func (s *service) ApplyWebhook(ctx context.Context, event WebhookEvent) (*SyncResult, *models.Order, error) {
	if event.ID == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}

	order, err := s.repo.FindByIdentifier(ctx, event.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "no local order matches webhook identifier").
				WithDetails(map[string]any{"id": event.ID})
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locate order")
	}

	snapshot := partner.Snapshot{
		PartnerOrderID:      event.ID,
		StatusCode:          event.StatusCode,
		ReportedTotalPrice:  event.ReportedTotalPrice,
		ReportedDeliveryFee: event.ReportedDeliveryFee,
		FinancialConfirmed:  event.FinancialConfirmed,
	}

	result, err := s.applyEvent(ctx, order, snapshot)
	if err != nil {
		return nil, nil, err
	}
	return result, order, nil
}

// applyEvent performs one reconciliation pass: resolve the partner status,
// reconcile prices, issue a single order update and propagate revenue to the
// profit record. Re-applying the same snapshot converges to the same state.
func (s *service) applyEvent(ctx context.Context, order *models.Order, snapshot partner.Snapshot) (*SyncResult, error) {
	resolution := statusmap.Resolve(order.DeliveryPartner, snapshot.StatusCode)

	updates := map[string]any{}

	newStatus := resolution.Status
	// A late or unknown event must not reopen an order that already reached a
	// terminal state.
	if order.Status.IsTerminal() && !resolution.Status.IsTerminal() && resolution.Status != enums.OrderStatusReturned {
		newStatus = order.Status
	}
	if newStatus != order.Status {
		updates["status"] = newStatus
	}
	if order.DeliveryStatus == nil || *order.DeliveryStatus != snapshot.StatusCode {
		updates["delivery_status"] = snapshot.StatusCode
	}

	receipt := order.ReceiptReceived || resolution.ReceiptReceived || snapshot.FinancialConfirmed
	if receipt != order.ReceiptReceived {
		updates["receipt_received"] = receipt
	}

	// Set once, never overwritten after the first non-null value.
	if (order.DeliveryPartnerOrderID == nil || *order.DeliveryPartnerOrderID == "") && snapshot.PartnerOrderID != "" {
		updates["delivery_partner_order_id"] = snapshot.PartnerOrderID
	}

	priceChange := order.PriceChangeType
	finalAmount := order.FinalAmount
	if snapshot.ReportedTotalPrice > 0 {
		decision, err := pricing.Reconcile(pricing.Input{
			ReportedTotalPrice:    snapshot.ReportedTotalPrice,
			ReportedDeliveryFee:   snapshot.ReportedDeliveryFee,
			OriginalProductsPrice: pricing.OriginalProductsPrice(order.ProductsPrice, order.Discount, order.PriceIncrease),
			CurrentProductsPrice:  order.ProductsPrice,
			CurrentDeliveryFee:    order.DeliveryFee,
		})
		if err != nil {
			return nil, err
		}
		priceChange = decision.ChangeType
		finalAmount = decision.FinalAmount
		if decision.Changed {
			updates["products_price"] = decision.ProductsPrice
			updates["delivery_fee"] = decision.DeliveryFee
			updates["final_amount"] = decision.FinalAmount
			updates["discount"] = decision.Discount
			updates["price_increase"] = decision.PriceIncrease
			updates["price_change_type"] = decision.ChangeType
		}
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
	}

	// Revenue propagation is best-effort: the order update above is already
	// committed and must not be rolled back by a profit failure.
	receiptTurnedOn := receipt && !order.ReceiptReceived
	if receiptTurnedOn || newStatus == enums.OrderStatusDelivered {
		if err := s.propagateRevenue(ctx, order.ID, finalAmount); err != nil {
			logCtx := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Error(logCtx, "profit revenue propagation failed", err)
		}
	}

	return &SyncResult{
		OrderID:         order.ID,
		Updated:         len(updates) > 0,
		Status:          newStatus,
		DeliveryStatus:  snapshot.StatusCode,
		PriceChange:     priceChange,
		ReceiptReceived: receipt,
	}, nil
}

func (s *service) propagateRevenue(ctx context.Context, orderID uuid.UUID, totalRevenue int64) error {
	record, err := s.repo.GetProfitRecord(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if record == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		createErr := s.repo.CreateProfitRecord(ctx, &models.ProfitRecord{
			OrderID:      orderID,
			TotalRevenue: totalRevenue,
			Status:       enums.ProfitStatusPending,
		})
		if createErr == nil {
			return nil
		}
		// A concurrent pass may have created the row first.
		if !db.IsUniqueViolation(createErr, "") {
			return createErr
		}
		record, err = s.repo.GetProfitRecord(ctx, orderID)
		if err != nil {
			return err
		}
	}

	if record.TotalRevenue == totalRevenue {
		return nil
	}
	return s.repo.UpdateProfitRevenue(ctx, orderID, totalRevenue)
}

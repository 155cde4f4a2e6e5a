package pricing

import (
	"testing"

	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

func TestReconcileNoDrift(t *testing.T) {
	decision, err := Reconcile(Input{
		ReportedTotalPrice:    55000,
		ReportedDeliveryFee:   5000,
		OriginalProductsPrice: 50000,
		CurrentProductsPrice:  50000,
		CurrentDeliveryFee:    5000,
	})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if decision.Changed {
		t.Fatal("identical snapshot should not require an update")
	}
	if decision.ChangeType != enums.PriceChangeNone {
		t.Fatalf("change type = %s, want none", decision.ChangeType)
	}
}

func TestReconcileDiscount(t *testing.T) {
	decision, err := Reconcile(Input{
		ReportedTotalPrice:    50000,
		ReportedDeliveryFee:   5000,
		OriginalProductsPrice: 50000,
		CurrentProductsPrice:  50000,
		CurrentDeliveryFee:    5000,
	})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if !decision.Changed {
		t.Fatal("expected an update")
	}
	if decision.ChangeType != enums.PriceChangeDiscount || decision.Discount != 5000 {
		t.Fatalf("unexpected classification: %+v", decision)
	}
	if decision.PriceIncrease != 0 {
		t.Fatalf("discount and increase are mutually exclusive: %+v", decision)
	}
	if decision.ProductsPrice != 45000 || decision.FinalAmount != 50000 {
		t.Fatalf("unexpected amounts: %+v", decision)
	}
}

func TestReconcileLargeDiscountStaysDiscount(t *testing.T) {
	// The classification follows the sign of the diff, not of the reported value.
	decision, err := Reconcile(Input{
		ReportedTotalPrice:    40000,
		ReportedDeliveryFee:   5000,
		OriginalProductsPrice: 50000,
		CurrentProductsPrice:  50000,
		CurrentDeliveryFee:    5000,
	})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if decision.ChangeType != enums.PriceChangeDiscount || decision.Discount != 15000 {
		t.Fatalf("unexpected classification: %+v", decision)
	}
}

func TestReconcileIncrease(t *testing.T) {
	decision, err := Reconcile(Input{
		ReportedTotalPrice:    62000,
		ReportedDeliveryFee:   5000,
		OriginalProductsPrice: 50000,
		CurrentProductsPrice:  50000,
		CurrentDeliveryFee:    5000,
	})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if decision.ChangeType != enums.PriceChangeIncrease || decision.PriceIncrease != 7000 {
		t.Fatalf("unexpected classification: %+v", decision)
	}
	if decision.Discount != 0 {
		t.Fatalf("discount and increase are mutually exclusive: %+v", decision)
	}
}

func TestReconcileInvalidDecomposition(t *testing.T) {
	_, err := Reconcile(Input{
		ReportedTotalPrice:    3000,
		ReportedDeliveryFee:   5000,
		OriginalProductsPrice: 50000,
		CurrentProductsPrice:  50000,
		CurrentDeliveryFee:    5000,
	})
	if err == nil {
		t.Fatal("expected decomposition error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePriceDecomposition {
		t.Fatalf("expected %s, got %v", pkgerrors.CodePriceDecomposition, err)
	}
}

func TestReconcileIdempotentAfterDiscount(t *testing.T) {
	// Second pass with the same snapshot, after the first one applied the discount.
	decision, err := Reconcile(Input{
		ReportedTotalPrice:    50000,
		ReportedDeliveryFee:   5000,
		OriginalProductsPrice: OriginalProductsPrice(45000, 5000, 0),
		CurrentProductsPrice:  45000,
		CurrentDeliveryFee:    5000,
	})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if decision.Changed {
		t.Fatal("re-applying the same snapshot must be a no-op")
	}
	if decision.ChangeType != enums.PriceChangeDiscount || decision.Discount != 5000 {
		t.Fatalf("classification should remain stable: %+v", decision)
	}
}

func TestReconcileInvariant(t *testing.T) {
	decision, err := Reconcile(Input{
		ReportedTotalPrice:    48000,
		ReportedDeliveryFee:   6000,
		OriginalProductsPrice: 50000,
		CurrentProductsPrice:  50000,
		CurrentDeliveryFee:    5000,
	})
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if decision.FinalAmount != decision.ProductsPrice+decision.DeliveryFee {
		t.Fatalf("final amount invariant violated: %+v", decision)
	}
	if decision.Discount != 0 && decision.PriceIncrease != 0 {
		t.Fatalf("discount and increase both set: %+v", decision)
	}
}

package pricing

import (
	"fmt"

	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
)

// Input carries the partner-reported totals and the order's price fields.
// OriginalProductsPrice is the products price at order creation;
// CurrentProductsPrice reflects earlier reconciliation passes.
type Input struct {
	ReportedTotalPrice  int64
	ReportedDeliveryFee int64

	OriginalProductsPrice int64
	CurrentProductsPrice  int64
	CurrentDeliveryFee    int64
}

// Decision is the pure outcome of one price reconciliation. It never mutates
// state; the sync handler turns it into a single order update.
type Decision struct {
	Changed bool

	ProductsPrice int64
	DeliveryFee   int64
	FinalAmount   int64

	ChangeType    enums.PriceChangeType
	Discount      int64
	PriceIncrease int64
}

// Reconcile decomposes the partner-reported total into products price and
// delivery fee, classifies the drift against the creation-time products price
// and decides whether an update is needed. A negative decomposition means the
// partner data is corrupt and nothing must be written.
func Reconcile(in Input) (*Decision, error) {
	if in.ReportedTotalPrice < 0 || in.ReportedDeliveryFee < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reported prices must be non-negative")
	}

	reportedProducts := in.ReportedTotalPrice - in.ReportedDeliveryFee
	if reportedProducts < 0 {
		return nil, pkgerrors.New(pkgerrors.CodePriceDecomposition,
			fmt.Sprintf("reported total %d is below reported delivery fee %d", in.ReportedTotalPrice, in.ReportedDeliveryFee))
	}

	decision := &Decision{
		ProductsPrice: reportedProducts,
		DeliveryFee:   in.ReportedDeliveryFee,
		FinalAmount:   reportedProducts + in.ReportedDeliveryFee,
		ChangeType:    enums.PriceChangeNone,
	}

	diff := in.OriginalProductsPrice - reportedProducts
	switch {
	case diff > 0:
		decision.ChangeType = enums.PriceChangeDiscount
		decision.Discount = diff
	case diff < 0:
		decision.ChangeType = enums.PriceChangeIncrease
		decision.PriceIncrease = -diff
	}

	// Repeated identical snapshots must be no-ops.
	decision.Changed = reportedProducts != in.CurrentProductsPrice ||
		in.ReportedDeliveryFee != in.CurrentDeliveryFee

	return decision, nil
}

// OriginalProductsPrice reconstructs the creation-time products price from the
// order's current fields.
func OriginalProductsPrice(currentProducts, discount, priceIncrease int64) int64 {
	return currentProducts + discount - priceIncrease
}

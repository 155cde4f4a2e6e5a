package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/umarxon/delivera-backend/api/responses"
	deliverywebhook "github.com/umarxon/delivera-backend/internal/webhooks/delivery"
	"github.com/umarxon/delivera-backend/internal/sync"
	"github.com/umarxon/delivera-backend/pkg/config"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

const signatureHeader = "X-Delivery-Signature"

// DeliveryWebhookService is the slice of the webhook handler the controller needs.
type DeliveryWebhookService interface {
	HandleEvent(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error)
}

// deliveryEvent mirrors the status payload both partners push. status_id
// arrives as a number or a string depending on the partner API version.
type deliveryEvent struct {
	ID                  string      `json:"id"`
	StatusID            json.Number `json:"status_id"`
	TotalPrice          int64       `json:"total_price"`
	DeliveryPrice       int64       `json:"delivery_price"`
	DeliverConfirmedFin bool        `json:"deliver_confirmed_fin"`
}

// DeliveryWebhook receives partner status pushes. When a webhook secret is
// configured the payload must carry a hex HMAC-SHA256 signature over the body.
func DeliveryWebhook(svc DeliveryWebhookService, cfg config.WebhookConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if cfg.Secret != "" {
			signature := r.Header.Get(signatureHeader)
			if signature == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature missing"))
				return
			}
			if !validSignature(payload, cfg.Secret, signature) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
				return
			}
		}

		var event deliveryEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		outcome, err := svc.HandleEvent(ctx, sync.WebhookEvent{
			ID:                  event.ID,
			StatusCode:          event.StatusID.String(),
			ReportedTotalPrice:  event.TotalPrice,
			ReportedDeliveryFee: event.DeliveryPrice,
			FinancialConfirmed:  event.DeliverConfirmedFin,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}

func validSignature(payload []byte, secret, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

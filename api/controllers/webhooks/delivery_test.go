package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	deliverywebhook "github.com/umarxon/delivera-backend/internal/webhooks/delivery"
	"github.com/umarxon/delivera-backend/internal/sync"
	"github.com/umarxon/delivera-backend/pkg/config"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

type testWebhookService struct {
	handleFn func(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error)
}

func (s *testWebhookService) HandleEvent(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error) {
	if s.handleFn != nil {
		return s.handleFn(ctx, event)
	}
	return &deliverywebhook.Outcome{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestDeliveryWebhookMapsEvent(t *testing.T) {
	var received sync.WebhookEvent
	svc := &testWebhookService{
		handleFn: func(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error) {
			received = event
			return &deliverywebhook.Outcome{Result: &sync.SyncResult{Status: enums.OrderStatusDelivered}}, nil
		},
	}

	body := []byte(`{"id":"evt-1","status_id":5,"total_price":55000,"delivery_price":5000,"deliver_confirmed_fin":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/delivery", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	DeliveryWebhook(svc, config.WebhookConfig{}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if received.ID != "evt-1" {
		t.Fatalf("unexpected event id %q", received.ID)
	}
	if received.StatusCode != "5" {
		t.Fatalf("unexpected status code %q", received.StatusCode)
	}
	if received.ReportedTotalPrice != 55000 || received.ReportedDeliveryFee != 5000 {
		t.Fatalf("unexpected prices %d/%d", received.ReportedTotalPrice, received.ReportedDeliveryFee)
	}
	if !received.FinancialConfirmed {
		t.Fatal("expected financial confirmation to carry through")
	}

	var envelope struct {
		Data deliverywebhook.Outcome `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Result == nil || envelope.Data.Result.Status != enums.OrderStatusDelivered {
		t.Fatalf("unexpected outcome %+v", envelope.Data)
	}
}

func TestDeliveryWebhookStringStatusCode(t *testing.T) {
	var received sync.WebhookEvent
	svc := &testWebhookService{
		handleFn: func(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error) {
			received = event
			return &deliverywebhook.Outcome{}, nil
		},
	}

	body := []byte(`{"id":"evt-2","status_id":"RET"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/delivery", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	DeliveryWebhook(svc, config.WebhookConfig{}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if received.StatusCode != "RET" {
		t.Fatalf("unexpected status code %q", received.StatusCode)
	}
}

func TestDeliveryWebhookRejectsMissingSignature(t *testing.T) {
	called := false
	svc := &testWebhookService{
		handleFn: func(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error) {
			called = true
			return &deliverywebhook.Outcome{}, nil
		},
	}

	body := []byte(`{"id":"evt-3","status_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/delivery", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	DeliveryWebhook(svc, config.WebhookConfig{Secret: "topsecret"}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if called {
		t.Fatal("service must not run without a signature")
	}
}

func TestDeliveryWebhookRejectsBadSignature(t *testing.T) {
	svc := &testWebhookService{}

	body := []byte(`{"id":"evt-4","status_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/delivery", bytes.NewReader(body))
	req.Header.Set("X-Delivery-Signature", signPayload(body, "wrong-secret"))
	resp := httptest.NewRecorder()

	DeliveryWebhook(svc, config.WebhookConfig{Secret: "topsecret"}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestDeliveryWebhookAcceptsValidSignature(t *testing.T) {
	called := false
	svc := &testWebhookService{
		handleFn: func(ctx context.Context, event sync.WebhookEvent) (*deliverywebhook.Outcome, error) {
			called = true
			return &deliverywebhook.Outcome{}, nil
		},
	}

	body := []byte(`{"id":"evt-5","status_id":7}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/delivery", bytes.NewReader(body))
	req.Header.Set("X-Delivery-Signature", signPayload(body, "topsecret"))
	resp := httptest.NewRecorder()

	DeliveryWebhook(svc, config.WebhookConfig{Secret: "topsecret"}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestDeliveryWebhookRejectsMalformedBody(t *testing.T) {
	svc := &testWebhookService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/delivery", bytes.NewReader([]byte("not-json")))
	resp := httptest.NewRecorder()

	DeliveryWebhook(svc, config.WebhookConfig{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

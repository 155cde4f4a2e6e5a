package partner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umarxon/delivera-backend/pkg/config"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

func newTestClient(t *testing.T, fargoURL string) Client {
	t.Helper()
	client, err := NewHTTPClient(config.PartnerConfig{
		FargoBaseURL: fargoURL,
		FargoToken:   "test-token",
		Timeout:      2 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return client
}

func TestGetOrderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders/F-1001", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"F-1001","status_id":6,"total_price":55000,"delivery_price":5000,"deliver_confirmed_fin":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	snapshot, err := client.GetOrderStatus(context.Background(), enums.DeliveryPartnerFargo, "F-1001")
	require.NoError(t, err)

	assert.Equal(t, "F-1001", snapshot.PartnerOrderID)
	assert.Equal(t, "6", snapshot.StatusCode)
	assert.Equal(t, int64(55000), snapshot.ReportedTotalPrice)
	assert.Equal(t, int64(5000), snapshot.ReportedDeliveryFee)
	assert.True(t, snapshot.FinancialConfirmed)
}

func TestGetOrderStatusStringStatusID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"F-2","status_id":"4","total_price":10000,"delivery_price":2000}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	snapshot, err := client.GetOrderStatus(context.Background(), enums.DeliveryPartnerFargo, "F-2")
	require.NoError(t, err)
	assert.Equal(t, "4", snapshot.StatusCode)
}

func TestGetOrderStatusServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetOrderStatus(context.Background(), enums.DeliveryPartnerFargo, "F-1001")
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePartnerUnavailable, typed.Code())
}

func TestGetOrderStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetOrderStatus(context.Background(), enums.DeliveryPartnerFargo, "F-9999")
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetOrderStatusUnconfiguredPartner(t *testing.T) {
	client := newTestClient(t, "http://fargo.test")
	_, err := client.GetOrderStatus(context.Background(), enums.DeliveryPartnerBTS, "B-1")
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePartnerUnavailable, typed.Code())
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		w.Write([]byte(`{"id":"F-3001","tracking_ref":"TRK-3001"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.CreateOrder(context.Background(), enums.DeliveryPartnerFargo, CreateOrderInput{
		TrackingNumber: "TRK-3001",
		CustomerPhone:  "+998901234567",
		TotalPrice:     75000,
		DeliveryFee:    5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "F-3001", result.PartnerOrderID)
	assert.Equal(t, "TRK-3001", result.TrackingRef)
}

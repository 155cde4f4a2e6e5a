package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/umarxon/delivera-backend/pkg/config"
	pkgerrors "github.com/umarxon/delivera-backend/pkg/errors"
	"github.com/umarxon/delivera-backend/pkg/enums"
	"github.com/umarxon/delivera-backend/pkg/logger"
)

// Snapshot is the partner-side view of one order.
type Snapshot struct {
	PartnerOrderID      string
	StatusCode          string
	ReportedTotalPrice  int64
	ReportedDeliveryFee int64
	FinancialConfirmed  bool
}

// CreateResult is returned when an order is registered with a partner.
type CreateResult struct {
	PartnerOrderID string
	TrackingRef    string
}

// CreateOrderInput is the payload for registering a local order with a partner.
type CreateOrderInput struct {
	TrackingNumber string
	CustomerPhone  string
	Address        string
	TotalPrice     int64
	DeliveryFee    int64
}

// Client is the proxy to the delivery partners' order APIs.
type Client interface {
	GetOrderStatus(ctx context.Context, partner enums.DeliveryPartner, partnerOrderID string) (*Snapshot, error)
	CreateOrder(ctx context.Context, partner enums.DeliveryPartner, input CreateOrderInput) (*CreateResult, error)
}

type endpoint struct {
	baseURL string
	token   string
}

type httpClient struct {
	endpoints map[enums.DeliveryPartner]endpoint
	http      *http.Client
	logg      *logger.Logger
}

var errLoggerRequired = errors.New("partner logger is required")

// NewHTTPClient builds the HTTP-backed partner proxy from configuration.
func NewHTTPClient(cfg config.PartnerConfig, logg *logger.Logger) (Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	endpoints := map[enums.DeliveryPartner]endpoint{}
	if url := strings.TrimSpace(cfg.FargoBaseURL); url != "" {
		endpoints[enums.DeliveryPartnerFargo] = endpoint{baseURL: strings.TrimRight(url, "/"), token: cfg.FargoToken}
	}
	if url := strings.TrimSpace(cfg.BTSBaseURL); url != "" {
		endpoints[enums.DeliveryPartnerBTS] = endpoint{baseURL: strings.TrimRight(url, "/"), token: cfg.BTSToken}
	}
	return &httpClient{
		endpoints: endpoints,
		http:      &http.Client{Timeout: cfg.Timeout},
		logg:      logg,
	}, nil
}

// statusResponse mirrors the partner order status payload. Both partners use
// the same field names; status_id arrives as a number or a string depending
// on the API version.
type statusResponse struct {
	ID                  string      `json:"id"`
	StatusID            json.Number `json:"status_id"`
	TotalPrice          int64       `json:"total_price"`
	DeliveryPrice       int64       `json:"delivery_price"`
	DeliverConfirmedFin bool        `json:"deliver_confirmed_fin"`
}

type createResponse struct {
	ID          string `json:"id"`
	TrackingRef string `json:"tracking_ref"`
}

func (c *httpClient) GetOrderStatus(ctx context.Context, partner enums.DeliveryPartner, partnerOrderID string) (*Snapshot, error) {
	if strings.TrimSpace(partnerOrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "partner order id required")
	}
	ep, err := c.endpointFor(partner)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v1/orders/%s", ep.baseURL, partnerOrderID)
	body, err := c.do(ctx, http.MethodGet, url, ep.token, nil)
	if err != nil {
		return nil, err
	}

	var payload statusResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartnerUnavailable, err, "decode partner status")
	}

	return &Snapshot{
		PartnerOrderID:      payload.ID,
		StatusCode:          payload.StatusID.String(),
		ReportedTotalPrice:  payload.TotalPrice,
		ReportedDeliveryFee: payload.DeliveryPrice,
		FinancialConfirmed:  payload.DeliverConfirmedFin,
	}, nil
}

func (c *httpClient) CreateOrder(ctx context.Context, partner enums.DeliveryPartner, input CreateOrderInput) (*CreateResult, error) {
	ep, err := c.endpointFor(partner)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(map[string]any{
		"tracking_number": input.TrackingNumber,
		"phone":           input.CustomerPhone,
		"address":         input.Address,
		"total_price":     input.TotalPrice,
		"delivery_price":  input.DeliveryFee,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode create order payload")
	}

	url := fmt.Sprintf("%s/api/v1/orders", ep.baseURL)
	body, err := c.do(ctx, http.MethodPost, url, ep.token, reqBody)
	if err != nil {
		return nil, err
	}

	var payload createResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartnerUnavailable, err, "decode partner create response")
	}

	return &CreateResult{PartnerOrderID: payload.ID, TrackingRef: payload.TrackingRef}, nil
}

func (c *httpClient) endpointFor(partner enums.DeliveryPartner) (endpoint, error) {
	ep, ok := c.endpoints[partner]
	if !ok {
		return endpoint{}, pkgerrors.New(pkgerrors.CodePartnerUnavailable,
			fmt.Sprintf("partner %s is not configured", partner))
	}
	return ep, nil
}

func (c *httpClient) do(ctx context.Context, method, url, token string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build partner request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartnerUnavailable, err, "partner request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartnerUnavailable, err, "read partner response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "partner order not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodePartnerUnavailable,
			fmt.Sprintf("partner returned status %d", resp.StatusCode))
	}

	return payload, nil
}

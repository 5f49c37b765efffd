package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/novaai/backend/pkg/apperr"
	cfgpkg "github.com/novaai/backend/pkg/config"
)

// Client talks to the card-billing gateway. Authentication is HTTP Basic
// with the secret key as username and an empty password, per the
// provider's API convention.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    cfg.Payments.BaseURL,
		secretKey:  cfg.Payments.SecretKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

type ChargeRequest struct {
	BillingKey  string `json:"-"`
	CustomerKey string `json:"customerKey"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderName   string `json:"orderName"`
}

// ChargeResult mirrors the gateway's payment object for the fields this
// service consumes.
type ChargeResult struct {
	PaymentKey  string          `json:"paymentKey"`
	OrderID     string          `json:"orderId"`
	OrderName   string          `json:"orderName"`
	Status      string          `json:"status"`
	TotalAmount int64           `json:"totalAmount"`
	Method      string          `json:"method"`
	ApprovedAt  string          `json:"approvedAt"`
	Card        json.RawMessage `json:"card"`
}

type gatewayError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ChargeBillingKey charges a saved payment instrument.
func (c *Client) ChargeBillingKey(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	if req == nil || req.BillingKey == "" {
		return nil, fmt.Errorf("%w: billing key required", apperr.ErrValidation)
	}
	endpoint := fmt.Sprintf("%s/v1/billing/%s", c.baseURL, url.PathEscape(req.BillingKey))

	var result ChargeResult
	if err := c.post(ctx, endpoint, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelPayment cancels a payment at the gateway. Used as a best-effort
// side operation by the admin delete path; callers swallow the error.
func (c *Client) CancelPayment(ctx context.Context, paymentKey, reason string) error {
	endpoint := fmt.Sprintf("%s/v1/payments/%s/cancel", c.baseURL, url.PathEscape(paymentKey))
	body := map[string]string{"cancelReason": reason}
	return c.post(ctx, endpoint, body, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", apperr.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge gatewayError
		if json.Unmarshal(raw, &ge) == nil && ge.Code != "" {
			return fmt.Errorf("%w: %s (%s)", apperr.ErrUpstream, ge.Message, ge.Code)
		}
		return fmt.Errorf("%w: status %d", apperr.ErrUpstream, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", apperr.ErrUpstream, err)
		}
	}
	return nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)

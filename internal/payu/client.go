// Package payu is the outbound client and webhook verifier for the PayU
// payment gateway. It is deliberately thin: order creation, status polling,
// and signature verification. All reconciliation logic lives in the service
// layer, which consumes the Gateway interface so tests never touch the network.
package payu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zobaczyc-morze/crewreg/internal/config"
	"github.com/zobaczyc-morze/crewreg/internal/domain"
)

// environment base URLs. Sandbox and production differ only in host.
var baseURLs = map[string]string{
	"sandbox":    "https://secure.snd.payu.com",
	"production": "https://secure.payu.com",
}

// Gateway is the surface the payment service depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	GetOrderStatus(ctx context.Context, externalOrderID string) (string, error)
}

// OrderRequest describes one order to be created with the gateway.
// AmountCents is integer minor units; decimal amounts never cross this boundary.
type OrderRequest struct {
	AmountCents domain.Cents
	Description string
	PayerEmail  string
	NotifyURL   string
	ContinueURL string
}

// OrderResult is the gateway's answer to order creation.
type OrderResult struct {
	OrderID     string
	RedirectURI string
}

// GatewayError is returned for any non-2xx gateway response. It is propagated
// to the initiating request, never retried inside this package.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payu: gateway returned %d: %s", e.StatusCode, e.Body)
}

// Client implements Gateway against the real PayU REST API.
// Construct it with NewClient and inject it where needed; it holds no global
// state beyond a cached bearer token.
type Client struct {
	baseURL      string
	posID        string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient builds a Client from gateway config. httpClient may be nil, in
// which case a client with a 15s timeout is used so no call blocks indefinitely.
func NewClient(cfg config.PayU, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:      baseURLs[cfg.Environment],
		posID:        cfg.PosID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
	}
}

var _ Gateway = (*Client)(nil)

// getToken returns a bearer token from the client-credentials grant, reusing
// the cached one until shortly before expiry.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pl/standard/user/oauth/authorize",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("payu: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.do(req, &body); err != nil {
		return "", err
	}

	c.token = body.AccessToken
	// Refresh a minute early so in-flight requests never carry a stale token.
	c.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// CreateOrder obtains a token and posts the order. The redirect URI in the
// result is where the payer must be sent to complete the payment.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (OrderResult, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return OrderResult{}, err
	}

	payload := map[string]any{
		"notifyUrl":     order.NotifyURL,
		"continueUrl":   order.ContinueURL,
		"customerIp":    "127.0.0.1",
		"merchantPosId": c.posID,
		"description":   order.Description,
		"currencyCode":  "PLN",
		"totalAmount":   int64(order.AmountCents),
		"buyer":         map[string]any{"email": order.PayerEmail},
		"products": []map[string]any{{
			"name":      order.Description,
			"unitPrice": int64(order.AmountCents),
			"quantity":  1,
		}},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return OrderResult{}, fmt.Errorf("payu: marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2_1/orders", bytes.NewReader(raw))
	if err != nil {
		return OrderResult{}, fmt.Errorf("payu: build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	var body struct {
		OrderID     string `json:"orderId"`
		RedirectURI string `json:"redirectUri"`
	}
	if err := c.do(req, &body); err != nil {
		return OrderResult{}, err
	}
	if body.OrderID == "" {
		return OrderResult{}, &GatewayError{StatusCode: http.StatusOK, Body: "response missing orderId"}
	}

	return OrderResult{OrderID: body.OrderID, RedirectURI: body.RedirectURI}, nil
}

// GetOrderStatus polls the current state of an order. Used as the fallback
// reconciliation path when the participant returns before the webhook arrives.
func (c *Client) GetOrderStatus(ctx context.Context, externalOrderID string) (string, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v2_1/orders/"+url.PathEscape(externalOrderID), nil)
	if err != nil {
		return "", fmt.Errorf("payu: build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var body struct {
		Orders []struct {
			Status string `json:"status"`
		} `json:"orders"`
	}
	if err := c.do(req, &body); err != nil {
		return "", err
	}
	if len(body.Orders) == 0 {
		return "", &GatewayError{StatusCode: http.StatusOK, Body: "response contains no orders"}
	}

	return body.Orders[0].Status, nil
}

// do executes the request, maps non-2xx responses to GatewayError, and
// decodes the JSON body into out.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("payu: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	// Cap the error body read; gateway errors should not balloon logs.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("payu: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("payu: decode response: %w", err)
	}
	return nil
}

// Package payment talks to the hosted-checkout payment gateway: it opens
// checkout sessions and decodes the gateway's transaction callbacks.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("payment gateway is not configured")

type Config struct {
	APIURL     string
	StoreID    int
	AuthKey    string
	Currency   string
	Test       bool
	SuccessURL string
	FailureURL string
	CancelURL  string
	Timeout    time.Duration
}

type Customer struct {
	Name     string
	Email    string
	Phone    string
	Line1    string
	Line2    string
	City     string
	Region   string
	Country  string
	Postcode string
}

type CheckoutRequest struct {
	// CartID is echoed back by the gateway as tran_cartid; the order ref is
	// used so callbacks can be mapped to the order.
	CartID      string
	Amount      float64
	Description string
	Customer    Customer
}

type CheckoutSession struct {
	Ref string
	URL string
}

type createResponse struct {
	Order struct {
		Ref string `json:"ref"`
		URL string `json:"url"`
	} `json:"order"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Note    string `json:"note"`
	} `json:"error,omitempty"`
}

// HostedGateway creates hosted checkout sessions over the gateway's JSON API.
type HostedGateway struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

func NewHostedGateway(cfg Config, log *zap.Logger) *HostedGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HostedGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

func (g *HostedGateway) payload(req CheckoutRequest) map[string]interface{} {
	test := 0
	if g.cfg.Test {
		test = 1
	}
	return map[string]interface{}{
		"method":  "create",
		"store":   g.cfg.StoreID,
		"authkey": g.cfg.AuthKey,
		"order": map[string]interface{}{
			"cartid":      req.CartID,
			"test":        test,
			"amount":      decimal.NewFromFloat(req.Amount).StringFixed(2),
			"currency":    g.cfg.Currency,
			"description": req.Description,
		},
		"customer": map[string]interface{}{
			"name":  req.Customer.Name,
			"email": req.Customer.Email,
			"phone": req.Customer.Phone,
			"address": map[string]string{
				"line1":    req.Customer.Line1,
				"line2":    req.Customer.Line2,
				"city":     req.Customer.City,
				"region":   req.Customer.Region,
				"country":  req.Customer.Country,
				"postcode": req.Customer.Postcode,
			},
		},
		"return": map[string]string{
			"authorised": g.cfg.SuccessURL,
			"declined":   g.cfg.FailureURL,
			"cancelled":  g.cfg.CancelURL,
		},
	}
}

// CreateHostedCheckout opens a checkout session and returns the page the
// customer must be redirected to.
func (g *HostedGateway) CreateHostedCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if g.cfg.APIURL == "" || g.cfg.StoreID == 0 || g.cfg.AuthKey == "" {
		return CheckoutSession{}, ErrNotConfigured
	}

	body, err := json.Marshal(g.payload(req))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.log.Warn("gateway rejected checkout", zap.Int("status", resp.StatusCode), zap.String("cartId", req.CartID))
		return CheckoutSession{}, fmt.Errorf("gateway status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var decoded createResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return CheckoutSession{}, fmt.Errorf("decode gateway response: %w", err)
	}
	if decoded.Error != nil {
		return CheckoutSession{}, fmt.Errorf("gateway error %s: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if decoded.Order.URL == "" {
		return CheckoutSession{}, errors.New("gateway returned an empty payment URL")
	}

	g.log.Info("checkout session created", zap.String("cartId", req.CartID), zap.String("ref", decoded.Order.Ref))
	return CheckoutSession{Ref: decoded.Order.Ref, URL: decoded.Order.URL}, nil
}

// Package payment holds the hosted-checkout gateway client. The provider
// exposes a create-invoice endpoint returning a redirect URL and later calls
// back with the outcome; request signing and retries live on the provider
// side of this boundary.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"telegram-merchant-pay/internal/domain"
	"telegram-merchant-pay/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*CheckoutGateway)(nil)

type CheckoutGateway struct {
	apiKey      string
	baseURL     string
	callbackURL string
	client      *http.Client
}

func NewCheckoutGateway(apiKey, baseURL, callbackURL string) *CheckoutGateway {
	return &CheckoutGateway{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *CheckoutGateway) Name() string { return "hosted-checkout" }

type createInvoiceRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	OrderID     string `json:"order_id"`
	CallbackURL string `json:"callback_url"`
	Customer    struct {
		Name  string `json:"name,omitempty"`
		Phone string `json:"phone,omitempty"`
	} `json:"customer"`
}

type createInvoiceResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// CreatePayment registers a checkout for orderID and returns the hosted
// payment page URL. Transport and 5xx failures surface as
// domain.ErrGatewayUnavailable so callers can degrade.
func (g *CheckoutGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, description, orderID string, customer adapter.CustomerInfo) (string, error) {
	reqBody := createInvoiceRequest{
		Amount:      amount.StringFixed(2),
		Currency:    "SAR",
		Description: description,
		OrderID:     orderID,
		CallbackURL: g.callbackURL,
	}
	reqBody.Customer.Name = customer.Name
	reqBody.Customer.Phone = customer.Phone

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/invoices", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("create invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.apiKey, "")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("gateway rejected invoice: status %d, body: %s", resp.StatusCode, string(body))
	}

	var out createInvoiceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("unmarshal invoice response: %w, body: %s", err, string(body))
	}
	if out.URL == "" {
		return "", fmt.Errorf("gateway returned no checkout url (message: %s)", out.Message)
	}
	return out.URL, nil
}

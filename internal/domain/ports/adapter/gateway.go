package adapter

import (
	"context"

	"github.com/shopspring/decimal"
)

// CustomerInfo is forwarded to the gateway's hosted checkout page.
type CustomerInfo struct {
	Name  string
	Phone string
}

// PaymentGateway is the hex port for the payment provider. CreatePayment
// registers a checkout for orderID and returns the URL the payer should be
// redirected to. Providers signal transient unavailability with
// domain.ErrGatewayUnavailable.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, amount decimal.Decimal, description, orderID string, customer CustomerInfo) (redirectURL string, err error)
}

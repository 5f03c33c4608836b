package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBusinessRequired   = errors.New("no business registered for merchant")
	ErrPaymentNotPending  = errors.New("payment is no longer pending")
	ErrGatewayUnavailable = errors.New("payment gateway temporarily unavailable")
	ErrEncoderUnavailable = errors.New("link encoder unavailable")
	ErrOperationFailed    = errors.New("operation failed")
)

package qr

import (
	qrcode "github.com/skip2/go-qrcode"

	"telegram-merchant-pay/internal/domain/ports/adapter"
)

var _ adapter.LinkEncoder = (*Encoder)(nil)

// Encoder renders payment links as QR PNGs.
type Encoder struct {
	size int
}

func NewEncoder() *Encoder { return &Encoder{size: 512} }

func (e *Encoder) Encode(text string) ([]byte, error) {
	return qrcode.Encode(text, qrcode.Medium, e.size)
}

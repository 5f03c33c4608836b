package main

import (
	"context"
	"errors"
	"sync/atomic"

	"telegram-merchant-pay/internal/domain/ports/adapter"
)

// lateBoundTransport breaks the engine↔bot construction cycle: use cases are
// built against it, then the real bot is bound once it exists.
type lateBoundTransport struct {
	target atomic.Pointer[adapter.ChatTransport]
}

var _ adapter.ChatTransport = (*lateBoundTransport)(nil)

func (t *lateBoundTransport) bind(real adapter.ChatTransport) {
	t.target.Store(&real)
}

func (t *lateBoundTransport) Send(ctx context.Context, msg adapter.OutboundMessage) error {
	target := t.target.Load()
	if target == nil {
		return errors.New("chat transport not bound yet")
	}
	return (*target).Send(ctx, msg)
}

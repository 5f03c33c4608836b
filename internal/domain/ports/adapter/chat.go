package adapter

import "context"

// OutboundMessage is one message for delivery over the chat channel.
// Photo is optional; ReplyButtons, when present, replace the user's reply
// keyboard with the given labels (one row per inner slice).
type OutboundMessage struct {
	ChatID       int64
	Text         string
	Photo        []byte
	PhotoCaption string
	ReplyButtons [][]string
}

// ChatTransport is the hex port for the messaging channel. Delivery failures
// are the transport's concern; callers treat Send as fire-and-forget.
type ChatTransport interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

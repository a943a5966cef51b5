package domain

import "context"

// Deliverer sends outbound payloads to the chat platform.
type Deliverer interface {
	Deliver(ctx context.Context, recipientID string, out Outbound) error
}

// PlatformEventHandler receives the events that never produce a reply.
type PlatformEventHandler interface {
	HandleEcho(ctx context.Context, ev Echo)
	HandleDelivery(ctx context.Context, ev DeliveryReceipt)
	HandleRead(ctx context.Context, ev ReadReceipt)
	HandleAccountLink(ctx context.Context, ev AccountLink)
	HandleAuthentication(ctx context.Context, ev Authentication)
}

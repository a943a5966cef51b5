package application

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
	"github.com/AzielCF/az-relay/pkg/msgworker"
)

// DispatcherStats counts inbound events by outcome.
type DispatcherStats struct {
	Received int64 `json:"received"`
	Queued   int64 `json:"queued"`
	Dropped  int64 `json:"dropped"`
	Failed   int64 `json:"failed"`
}

// Dispatcher is the entry point for inbound platform events.
type Dispatcher struct {
	registry *SessionRegistry
	router   *Router
	platform domain.PlatformEventHandler
	pool     *msgworker.MessageWorkerPool

	received int64
	queued   int64
	dropped  int64
	failed   int64
}

// NewDispatcher wires the dispatcher. With a nil pool events are handled
// on the caller's goroutine.
func NewDispatcher(registry *SessionRegistry, router *Router, platform domain.PlatformEventHandler, pool *msgworker.MessageWorkerPool) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		router:   router,
		platform: platform,
		pool:     pool,
	}
}

// Dispatch queues every event of a webhook batch and returns once all of
// them are handed off. Events of one participant keep their order.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.InboundEvent) {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		atomic.AddInt64(&d.received, 1)

		if d.pool == nil {
			_ = d.HandleEvent(ctx, ev)
			continue
		}

		event := ev
		ok := d.pool.TryDispatch(msgworker.MessageJob{
			PageID:        event.Meta().PageID,
			ParticipantID: event.ParticipantID(),
			Handler: func(jobCtx context.Context) error {
				return d.HandleEvent(jobCtx, event)
			},
		})
		if ok {
			atomic.AddInt64(&d.queued, 1)
		} else {
			atomic.AddInt64(&d.dropped, 1)
		}
	}
}

// HandleEvent processes a single event synchronously.
func (d *Dispatcher) HandleEvent(ctx context.Context, ev domain.InboundEvent) error {
	participant := ev.ParticipantID()
	fields := logrus.Fields{
		"kind":        ev.Kind(),
		"participant": participant,
		"page":        ev.Meta().PageID,
	}

	sessionID, err := d.registry.EnsureSession(ctx, participant)
	if err != nil {
		atomic.AddInt64(&d.failed, 1)
		logrus.WithFields(fields).WithError(err).Error("[DISPATCHER] Failed to ensure session")
		return err
	}
	d.registry.EnsureUser(ctx, participant)

	logrus.WithFields(fields).Debug("[DISPATCHER] Handling event")

	switch e := ev.(type) {
	case domain.Echo:
		d.platform.HandleEcho(ctx, e)
	case domain.QuickReply:
		d.router.HandleQuickReply(ctx, participant, sessionID, e.Payload)
	case domain.Postback:
		d.router.HandlePostback(ctx, participant, sessionID, e.Payload)
	case domain.TextMessage:
		if strings.TrimSpace(e.Text) == "" {
			logrus.WithFields(fields).Debug("[DISPATCHER] Ignoring empty text message")
			return nil
		}
		d.router.Query(ctx, participant, sessionID, e.Text)
	case domain.AttachmentMessage:
		d.router.HandleAttachments(participant, e.Attachments)
	case domain.DeliveryReceipt:
		d.platform.HandleDelivery(ctx, e)
	case domain.ReadReceipt:
		d.platform.HandleRead(ctx, e)
	case domain.AccountLink:
		d.platform.HandleAccountLink(ctx, e)
	case domain.Authentication:
		d.platform.HandleAuthentication(ctx, e)
	default:
		err := pkgError.MalformedEventError(fmt.Sprintf("unsupported event %T", ev))
		logrus.WithFields(fields).Warn("[DISPATCHER] " + err.Error())
	}
	return nil
}

func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Received: atomic.LoadInt64(&d.received),
		Queued:   atomic.LoadInt64(&d.queued),
		Dropped:  atomic.LoadInt64(&d.dropped),
		Failed:   atomic.LoadInt64(&d.failed),
	}
}

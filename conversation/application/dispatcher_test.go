package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/pkg/msgworker"
)

type unknownEvent struct{ domain.EventMeta }

func (unknownEvent) Kind() domain.EventKind { return "mystery" }

func TestDispatcher_TextGoesThroughNLU(t *testing.T) {
	h := newHarness()
	h.nlu.result = &domain.NluResult{FulfillmentText: "Hello!"}
	ctx := context.Background()

	err := h.dispatcher.HandleEvent(ctx, domain.TextMessage{EventMeta: meta("u1"), Text: "hi"})
	require.NoError(t, err)
	h.drain()

	assert.Equal(t, []string{"hi"}, h.nlu.texts)
	session, err := h.store.GetSession(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, []string{session.SessionID}, h.nlu.sessions)
	assert.Equal(t, []string{"Hello!"}, h.deliverer.texts())
}

func TestDispatcher_EmptyTextIsIgnored(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.dispatcher.HandleEvent(context.Background(), domain.TextMessage{EventMeta: meta("u1"), Text: "  "}))
	h.drain()

	assert.Empty(t, h.nlu.texts)
	assert.Empty(t, h.deliverer.deliveries())
}

func TestDispatcher_SessionIsCreatedForEveryEventKind(t *testing.T) {
	events := []domain.InboundEvent{
		domain.QuickReply{EventMeta: meta("u1"), Payload: string(ActionTwoAnswers)},
		domain.Postback{EventMeta: meta("u2"), Payload: "UNKNOWN"},
		domain.AttachmentMessage{EventMeta: meta("u3"), Attachments: []domain.Attachment{{Type: "image"}}},
		domain.DeliveryReceipt{EventMeta: meta("u4")},
		domain.ReadReceipt{EventMeta: meta("u5")},
		domain.AccountLink{EventMeta: meta("u6"), Status: "linked"},
		domain.Authentication{EventMeta: meta("u7"), Ref: "ref"},
	}

	h := newHarness()
	ctx := context.Background()
	for _, ev := range events {
		require.NoError(t, h.dispatcher.HandleEvent(ctx, ev))
	}

	for _, ev := range events {
		s, err := h.store.GetSession(ctx, ev.ParticipantID())
		require.NoError(t, err)
		assert.NotNil(t, s, "no session for %s", ev.Kind())
	}
}

func TestDispatcher_EchoUsesRecipientAsParticipant(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	echo := domain.Echo{EventMeta: domain.EventMeta{PageID: "page-1", SenderID: "page-1", RecipientID: "u1"}, MessageID: "m1"}
	require.NoError(t, h.dispatcher.HandleEvent(ctx, echo))
	h.drain()

	s, err := h.store.GetSession(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, s)
	page, err := h.store.GetSession(ctx, "page-1")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Empty(t, h.deliverer.deliveries())
}

func TestDispatcher_PlatformEventsProduceNoReply(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for _, ev := range []domain.InboundEvent{
		domain.Echo{EventMeta: meta("u1")},
		domain.DeliveryReceipt{EventMeta: meta("u1"), MessageIDs: []string{"m1"}},
		domain.ReadReceipt{EventMeta: meta("u1")},
		domain.AccountLink{EventMeta: meta("u1"), Status: "unlinked"},
		domain.Authentication{EventMeta: meta("u1"), Ref: "PASS_THROUGH"},
	} {
		require.NoError(t, h.dispatcher.HandleEvent(ctx, ev))
	}
	h.drain()

	assert.Empty(t, h.deliverer.deliveries())
	assert.Equal(t, []domain.EventKind{
		domain.EventEcho, domain.EventDelivery, domain.EventRead, domain.EventAccountLink, domain.EventAuthentication,
	}, h.platform.kinds)
}

func TestDispatcher_UnknownEventIsSkipped(t *testing.T) {
	h := newHarness()

	assert.NotPanics(t, func() {
		err := h.dispatcher.HandleEvent(context.Background(), unknownEvent{meta("u1")})
		assert.NoError(t, err)
	})
	h.drain()
	assert.Empty(t, h.deliverer.deliveries())
}

func TestDispatcher_DispatchBatchInline(t *testing.T) {
	h := newHarness()
	h.nlu.result = &domain.NluResult{FulfillmentText: "ok"}

	h.dispatcher.Dispatch(context.Background(), []domain.InboundEvent{
		domain.TextMessage{EventMeta: meta("a"), Text: "one"},
		nil,
		unknownEvent{meta("b")},
		domain.Postback{EventMeta: meta("c"), Payload: "NOPE"},
	})
	h.drain()

	assert.EqualValues(t, 3, h.dispatcher.Stats().Received)
	assert.ElementsMatch(t, []string{"ok", "What can I help you with?"}, h.deliverer.texts())
}

func TestDispatcher_ParticipantsDoNotShareState(t *testing.T) {
	h := newHarness()
	h.fetcher.profiles["a"] = domain.UserProfile{FirstName: "Ann"}
	h.fetcher.profiles["b"] = domain.UserProfile{FirstName: "Bob"}
	h.nlu.result = &domain.NluResult{FulfillmentText: "ok"}

	pool := msgworker.NewMessageWorkerPool("test", 4, 50)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	defer func() {
		cancel()
		pool.Stop()
	}()
	d := NewDispatcher(h.registry, h.router, h.platform, pool)

	var batch []domain.InboundEvent
	for i := 0; i < 10; i++ {
		batch = append(batch,
			domain.TextMessage{EventMeta: meta("a"), Text: "from a"},
			domain.TextMessage{EventMeta: meta("b"), Text: "from b"},
		)
	}
	d.Dispatch(ctx, batch)

	require.Eventually(t, func() bool {
		return pool.GetStats().TotalProcessed == int64(len(batch))
	}, 2*time.Second, 5*time.Millisecond)
	assert.EqualValues(t, len(batch), d.Stats().Queued)

	bg := context.Background()
	require.Eventually(t, func() bool {
		return h.registry.GetUser(bg, "a") != nil && h.registry.GetUser(bg, "b") != nil
	}, time.Second, 5*time.Millisecond)

	sa, _ := h.store.GetSession(bg, "a")
	sb, _ := h.store.GetSession(bg, "b")
	assert.NotEqual(t, sa.SessionID, sb.SessionID)
	assert.Equal(t, "Ann", h.registry.GetUser(bg, "a").FirstName)
	assert.Equal(t, "Bob", h.registry.GetUser(bg, "b").FirstName)

	h.nlu.mu.Lock()
	defer h.nlu.mu.Unlock()
	assert.Len(t, h.nlu.texts, len(batch))
}

func TestDispatcher_DropsWhenPoolIsNotRunning(t *testing.T) {
	h := newHarness()
	pool := msgworker.NewMessageWorkerPool("idle", 1, 1)
	d := NewDispatcher(h.registry, h.router, h.platform, pool)

	d.Dispatch(context.Background(), []domain.InboundEvent{domain.TextMessage{EventMeta: meta("a"), Text: "hi"}})

	stats := d.Stats()
	assert.EqualValues(t, 1, stats.Received)
	assert.EqualValues(t, 1, stats.Dropped)
	assert.Empty(t, h.nlu.texts)
}

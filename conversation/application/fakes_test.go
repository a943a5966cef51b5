package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/conversation/repository"
	"github.com/AzielCF/az-relay/core/config"
	"github.com/AzielCF/az-relay/pkg/scheduler"
)

const testSpacing = 1100 * time.Millisecond

type delivery struct {
	Recipient string
	Out       domain.Outbound
	At        time.Duration
}

type recordingDeliverer struct {
	mu     sync.Mutex
	clock  scheduler.Clock
	start  time.Time
	sent   []delivery
	failOn domain.ReplyKind
}

func (d *recordingDeliverer) Deliver(ctx context.Context, recipientID string, out domain.Outbound) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, delivery{Recipient: recipientID, Out: out, At: d.clock.Now().Sub(d.start)})
	if d.failOn != "" && out.Item != nil && out.Item.Kind() == d.failOn {
		return errors.New("platform rejected message")
	}
	return nil
}

func (d *recordingDeliverer) deliveries() []delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]delivery(nil), d.sent...)
}

// messages drops sender actions.
func (d *recordingDeliverer) messages() []delivery {
	var out []delivery
	for _, del := range d.deliveries() {
		if !del.Out.IsAction() {
			out = append(out, del)
		}
	}
	return out
}

func (d *recordingDeliverer) texts() []string {
	var out []string
	for _, del := range d.messages() {
		if t, ok := del.Out.Item.(domain.TextReply); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

type fakeNLU struct {
	mu       sync.Mutex
	result   *domain.NluResult
	err      error
	texts    []string
	events   []string
	sessions []string
}

func (f *fakeNLU) SendText(ctx context.Context, sessionID, text string) (*domain.NluResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.sessions = append(f.sessions, sessionID)
	return f.result, f.err
}

func (f *fakeNLU) SendEvent(ctx context.Context, sessionID, eventName string) (*domain.NluResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventName)
	f.sessions = append(f.sessions, sessionID)
	return f.result, f.err
}

type fakeFetcher struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
	err      error
	calls    map[string]int
	block    chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{profiles: map[string]domain.UserProfile{}, calls: map[string]int{}}
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, participantID string) (*domain.UserProfile, error) {
	f.mu.Lock()
	f.calls[participantID]++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[participantID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	return &p, nil
}

func (f *fakeFetcher) callCount(participantID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[participantID]
}

type recordingPlatform struct {
	mu    sync.Mutex
	kinds []domain.EventKind
}

func (p *recordingPlatform) record(k domain.EventKind) {
	p.mu.Lock()
	p.kinds = append(p.kinds, k)
	p.mu.Unlock()
}

func (p *recordingPlatform) HandleEcho(ctx context.Context, ev domain.Echo) { p.record(ev.Kind()) }
func (p *recordingPlatform) HandleDelivery(ctx context.Context, ev domain.DeliveryReceipt) {
	p.record(ev.Kind())
}
func (p *recordingPlatform) HandleRead(ctx context.Context, ev domain.ReadReceipt) { p.record(ev.Kind()) }
func (p *recordingPlatform) HandleAccountLink(ctx context.Context, ev domain.AccountLink) {
	p.record(ev.Kind())
}
func (p *recordingPlatform) HandleAuthentication(ctx context.Context, ev domain.Authentication) {
	p.record(ev.Kind())
}

func testConversationConfig() config.ConversationConfig {
	return config.ConversationConfig{
		MessageSpacing:       testSpacing,
		FollowUpDelay:        3000 * time.Millisecond,
		GreetingWait:         2000 * time.Millisecond,
		FallbackText:         "Hi. I'm not sure I understand. Please try again.",
		PostbackFallbackText: "What can I help you with?",
		ErrorText:            "Sorry, something went wrong.",
		AttachmentText:       "Attachment received. Thank you.",
		GreetingTemplate:     "Hi %s! I can answer most things - what can I help you with?",
		GenericGreeting:      "Hi there! I can answer most things - what can I help you with?",
	}
}

// harness wires the conversation components on virtual time with an
// inline executor.
type harness struct {
	clock      *scheduler.ManualClock
	sched      *scheduler.Scheduler
	deliverer  *recordingDeliverer
	nlu        *fakeNLU
	fetcher    *fakeFetcher
	store      *repository.MemorySessionStore
	registry   *SessionRegistry
	sequencer  *Sequencer
	router     *Router
	platform   *recordingPlatform
	dispatcher *Dispatcher
}

func newHarness() *harness {
	start := time.Unix(1_700_000_000, 0)
	h := &harness{
		clock:    scheduler.NewManualClock(start),
		nlu:      &fakeNLU{},
		fetcher:  newFakeFetcher(),
		store:    repository.NewMemorySessionStore(),
		platform: &recordingPlatform{},
	}
	h.sched = scheduler.New(h.clock, nil)
	h.deliverer = &recordingDeliverer{clock: h.clock, start: start}
	h.registry = NewSessionRegistry(h.store, h.fetcher, h.clock)
	h.sequencer = NewSequencer(h.sched, h.deliverer, testSpacing)
	h.router = NewRouter(h.sequencer, h.nlu, h.registry, testConversationConfig())
	h.dispatcher = NewDispatcher(h.registry, h.router, h.platform, nil)
	return h
}

// drain advances virtual time task by task until nothing is pending.
func (h *harness) drain() {
	for {
		next, ok := h.sched.NextDue()
		if !ok {
			return
		}
		if d := next.Sub(h.clock.Now()); d > 0 {
			h.clock.Advance(d)
		}
		h.sched.RunDue()
	}
}

func meta(sender string) domain.EventMeta {
	return domain.EventMeta{PageID: "page-1", SenderID: sender, RecipientID: "page-1", Timestamp: time.Unix(1_700_000_000, 0)}
}

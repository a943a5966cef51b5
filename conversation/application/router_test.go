package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-relay/conversation/domain"
)

func TestRouter_RoutePriority(t *testing.T) {
	cfg := testConversationConfig()

	tests := []struct {
		name   string
		result *domain.NluResult
		want   []string
	}{
		{
			name:   "reply items win over fulfillment text",
			result: &domain.NluResult{FulfillmentText: "ignored", Items: []domain.ReplyItem{text("one"), text("two")}},
			want:   []string{"one", "two"},
		},
		{
			name:   "fulfillment text when there are no items",
			result: &domain.NluResult{FulfillmentText: "from fulfillment"},
			want:   []string{"from fulfillment"},
		},
		{
			name:   "fallback when nothing came back",
			result: &domain.NluResult{},
			want:   []string{cfg.FallbackText},
		},
		{
			name:   "nil result falls back",
			result: nil,
			want:   []string{cfg.FallbackText},
		},
		{
			name:   "unknown action passes items through",
			result: &domain.NluResult{Action: "smalltalk.greetings", Items: []domain.ReplyItem{text("hey")}},
			want:   []string{"hey"},
		},
		{
			name:   "unknown action without items uses fulfillment text",
			result: &domain.NluResult{Action: "input.unknown", FulfillmentText: "say again?"},
			want:   []string{"say again?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.router.Route(context.Background(), "u1", tt.result)
			h.drain()

			assert.Equal(t, tt.want, h.deliverer.texts())
			first := h.deliverer.deliveries()[0]
			assert.Equal(t, domain.ActionTypingOff, first.Out.Action)
		})
	}
}

func TestRouter_TwoAnswersAsksFollowUpAfterDelay(t *testing.T) {
	h := newHarness()

	h.router.Route(context.Background(), "u1", &domain.NluResult{
		Action: string(ActionTwoAnswers),
		Items:  []domain.ReplyItem{text("A dog can be two things.")},
	})
	h.drain()

	got := h.deliverer.deliveries()
	require.Len(t, got, 4)
	assert.Equal(t, domain.ActionTypingOff, got[0].Out.Action)
	assert.Equal(t, "A dog can be two things.", got[1].Out.Item.(domain.TextReply).Text)
	assert.Equal(t, domain.ActionTypingOn, got[2].Out.Action)

	menu, ok := got[3].Out.Item.(domain.ButtonMenuReply)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, got[3].At)
	assert.Equal(t, "Which kind of dog do you mean?", menu.Text)
	require.Len(t, menu.Buttons, 2)
	assert.Equal(t, PayloadAnswerOne, menu.Buttons[0].Payload)
	assert.Equal(t, PayloadAnswerTwo, menu.Buttons[1].Payload)
}

func TestRouter_FAQDeliveryOffersTrackingAndCall(t *testing.T) {
	h := newHarness()

	h.router.RouteAction("u1", string(ActionFAQDelivery), []domain.ReplyItem{text("Delivery takes 3 days.")})
	h.drain()

	msgs := h.deliverer.messages()
	require.Len(t, msgs, 2)
	menu := msgs[1].Out.Item.(domain.ButtonMenuReply)
	assert.Equal(t, domain.ButtonWebURL, menu.Buttons[0].Type)
	assert.NotEmpty(t, menu.Buttons[0].URL)
	assert.Equal(t, domain.ButtonPhoneNumber, menu.Buttons[1].Type)
}

func TestRouter_FollowUpDelayIsIndependentOfSpacing(t *testing.T) {
	h := newHarness()

	items := []domain.ReplyItem{text("1"), text("2"), text("3"), text("4")}
	h.router.RouteAction("u1", string(ActionTwoAnswers), items)
	h.drain()

	msgs := h.deliverer.messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, 3000*time.Millisecond, msgs[3].At)
	assert.Equal(t, domain.ReplyButtonMenu, msgs[3].Out.Item.Kind())
	assert.Equal(t, 3300*time.Millisecond, msgs[4].At)
	assert.Equal(t, "4", msgs[4].Out.Item.(domain.TextReply).Text)
}

func TestRouter_UnknownPostbackSendsSingleFallback(t *testing.T) {
	h := newHarness()

	assert.NotPanics(t, func() {
		h.router.HandlePostback(context.Background(), "u1", "session-1", "SOMETHING_ELSE")
	})
	h.drain()

	assert.Equal(t, []string{"What can I help you with?"}, h.deliverer.texts())
	assert.Empty(t, h.nlu.events)
}

func TestRouter_AnswerPostbacksSendReadMoreMenu(t *testing.T) {
	for _, payload := range []string{PayloadAnswerOne, PayloadAnswerTwo} {
		t.Run(payload, func(t *testing.T) {
			h := newHarness()
			h.router.HandlePostback(context.Background(), "u1", "session-1", payload)
			h.drain()

			msgs := h.deliverer.messages()
			require.Len(t, msgs, 1)
			assert.Equal(t, 3*time.Second, msgs[0].At)
			menu := msgs[0].Out.Item.(domain.ButtonMenuReply)
			require.Len(t, menu.Buttons, 1)
			assert.Equal(t, domain.ButtonWebURL, menu.Buttons[0].Type)
		})
	}
}

func TestRouter_JobApplyRequeriesNLUWithEvent(t *testing.T) {
	h := newHarness()
	h.nlu.result = &domain.NluResult{Items: []domain.ReplyItem{text("We are hiring!")}}

	h.router.HandlePostback(context.Background(), "u1", "session-1", PayloadJobApply)
	h.drain()

	assert.Equal(t, []string{EventJobOpenings}, h.nlu.events)
	assert.Equal(t, []string{"session-1"}, h.nlu.sessions)
	assert.Equal(t, []string{"We are hiring!"}, h.deliverer.texts())
}

func TestRouter_NLUFailureSendsErrorText(t *testing.T) {
	h := newHarness()
	h.nlu.err = errors.New("dialogflow unavailable")

	h.router.Query(context.Background(), "u1", "session-1", "hello")
	h.drain()

	assert.Equal(t, []string{testConversationConfig().ErrorText}, h.deliverer.texts())
	got := h.deliverer.deliveries()
	assert.Equal(t, domain.ActionTypingOn, got[0].Out.Action)
	assert.Equal(t, domain.ActionTypingOff, got[1].Out.Action)
}

func TestRouter_QuickReplyWithActionPayloadSkipsNLU(t *testing.T) {
	h := newHarness()

	h.router.HandleQuickReply(context.Background(), "u1", "session-1", string(ActionTwoAnswers))
	h.drain()

	assert.Empty(t, h.nlu.texts)
	msgs := h.deliverer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.ReplyButtonMenu, msgs[0].Out.Item.Kind())
}

func TestRouter_QuickReplyWithOtherPayloadGoesToNLU(t *testing.T) {
	h := newHarness()
	h.nlu.result = &domain.NluResult{FulfillmentText: "Sure."}

	h.router.HandleQuickReply(context.Background(), "u1", "session-1", "Opening hours")
	h.drain()

	assert.Equal(t, []string{"Opening hours"}, h.nlu.texts)
	assert.Equal(t, []string{"Sure."}, h.deliverer.texts())
}

func TestRouter_GreetUsesFirstName(t *testing.T) {
	h := newHarness()
	h.fetcher.profiles["u1"] = domain.UserProfile{FirstName: "Maja"}

	h.router.HandlePostback(context.Background(), "u1", "session-1", PayloadGetStarted)
	h.drain()

	assert.Equal(t, []string{"Hi Maja! I can answer most things - what can I help you with?"}, h.deliverer.texts())
}

func TestRouter_GreetFallsBackWhenLookupFails(t *testing.T) {
	h := newHarness()
	h.fetcher.err = errors.New("graph api down")

	h.router.Greet(context.Background(), "u1")
	h.drain()

	assert.Equal(t, []string{testConversationConfig().GenericGreeting}, h.deliverer.texts())
}

func TestRouter_GreetFallsBackAfterTimeout(t *testing.T) {
	h := newHarness()
	h.fetcher.profiles["u1"] = domain.UserProfile{FirstName: "Maja"}
	h.fetcher.block = make(chan struct{})
	defer close(h.fetcher.block)

	done := make(chan struct{})
	go func() {
		h.router.Greet(context.Background(), "u1")
		close(done)
	}()

	require.Eventually(t, func() bool {
		h.clock.Advance(time.Second)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	h.drain()
	assert.Equal(t, []string{testConversationConfig().GenericGreeting}, h.deliverer.texts())
}

func TestRouter_AttachmentsAreAcknowledged(t *testing.T) {
	h := newHarness()

	h.router.HandleAttachments("u1", []domain.Attachment{{Type: "image", URL: "https://example.com/cat.png"}})
	h.drain()

	assert.Equal(t, []string{"Attachment received. Thank you."}, h.deliverer.texts())
}

func TestGreetingFor(t *testing.T) {
	cfg := testConversationConfig()

	assert.Equal(t, "Hi Ann! I can answer most things - what can I help you with?",
		greetingFor(cfg.GreetingTemplate, cfg.GenericGreeting, &domain.UserProfile{FirstName: " Ann "}))
	assert.Equal(t, cfg.GenericGreeting,
		greetingFor(cfg.GreetingTemplate, cfg.GenericGreeting, &domain.UserProfile{}))
	assert.Equal(t, cfg.GenericGreeting,
		greetingFor("Welcome!", cfg.GenericGreeting, &domain.UserProfile{FirstName: "Ann"}))
}

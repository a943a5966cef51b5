package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/core/config"
)

// Action is an NLU action the router has a multi-step branch for. Quick
// reply payloads equal to one of these enter the same branch.
type Action string

const (
	ActionTwoAnswers  Action = "two-answers"
	ActionFAQDelivery Action = "faq-delivery"
)

// KnownActions lists the actions with a dedicated branch.
func KnownActions() []string {
	return []string{string(ActionTwoAnswers), string(ActionFAQDelivery)}
}

// Postback payloads carried by buttons the bot sends.
const (
	PayloadAnswerOne  = "ANSWER_ONE"
	PayloadAnswerTwo  = "ANSWER_TWO"
	PayloadJobApply   = "JOB_APPLY"
	PayloadGetStarted = "GET_STARTED"
)

// EventJobOpenings is the NLU event triggered by the JOB_APPLY postback.
const EventJobOpenings = "JOB_OPENINGS"

// followUpMenu returns the question a multi-step branch asks once its
// items have been sent.
func followUpMenu(action Action) (domain.ButtonMenuReply, bool) {
	switch action {
	case ActionTwoAnswers:
		return domain.ButtonMenuReply{
			Text: "Which kind of dog do you mean?",
			Buttons: []domain.Button{
				{Type: domain.ButtonPostback, Title: "The animal", Payload: PayloadAnswerOne},
				{Type: domain.ButtonPostback, Title: "The banknote", Payload: PayloadAnswerTwo},
			},
		}, true
	case ActionFAQDelivery:
		return domain.ButtonMenuReply{
			Text: "What would you like to do next?",
			Buttons: []domain.Button{
				{Type: domain.ButtonWebURL, Title: "Track my order", URL: "https://www.myapple.com/track_order"},
				{Type: domain.ButtonPhoneNumber, Title: "Call us", Payload: "+16505551234"},
			},
		}, true
	default:
		return domain.ButtonMenuReply{}, false
	}
}

func readMoreMenu(payload string) (domain.ButtonMenuReply, bool) {
	switch payload {
	case PayloadAnswerOne:
		return domain.ButtonMenuReply{
			Text: "Read more about the dog.",
			Buttons: []domain.Button{
				{Type: domain.ButtonWebURL, Title: "Read more about dogs on Google...", URL: "https://www.google.com/search?q=dogs"},
			},
		}, true
	case PayloadAnswerTwo:
		return domain.ButtonMenuReply{
			Text: "Read more about money.",
			Buttons: []domain.Button{
				{Type: domain.ButtonWebURL, Title: "Read more about banknotes on Google...", URL: "https://www.google.com/search?q=banknotes"},
			},
		}, true
	default:
		return domain.ButtonMenuReply{}, false
	}
}

// Router picks the conversational branch for an NLU result, a quick reply
// or a postback and hands the resulting items to the sequencer.
type Router struct {
	seq      *Sequencer
	nlu      domain.NLUClient
	registry *SessionRegistry
	cfg      config.ConversationConfig
}

func NewRouter(seq *Sequencer, nlu domain.NLUClient, registry *SessionRegistry, cfg config.ConversationConfig) *Router {
	return &Router{seq: seq, nlu: nlu, registry: registry, cfg: cfg}
}

// Route delivers an NLU result. Branches are evaluated in a fixed order:
// action, reply items, fulfillment text, fallback text.
func (r *Router) Route(ctx context.Context, recipientID string, result *domain.NluResult) {
	r.seq.Signal(recipientID, domain.ActionTypingOff)

	if result == nil {
		result = &domain.NluResult{}
	}

	switch {
	case result.HasAction():
		items := result.Items
		if _, known := followUpMenu(Action(result.Action)); !known && len(items) == 0 {
			items = r.textOrFallback(result)
		}
		r.RouteAction(recipientID, result.Action, items)
	case len(result.Items) > 0:
		r.seq.Sequence(recipientID, result.Items)
	default:
		r.seq.Sequence(recipientID, r.textOrFallback(result))
	}
}

func (r *Router) textOrFallback(result *domain.NluResult) []domain.ReplyItem {
	if strings.TrimSpace(result.FulfillmentText) != "" {
		return []domain.ReplyItem{domain.TextReply{Text: result.FulfillmentText}}
	}
	return []domain.ReplyItem{domain.TextReply{Text: r.cfg.FallbackText}}
}

// RouteAction runs the branch for action. Unknown actions pass items
// through unchanged.
func (r *Router) RouteAction(recipientID, action string, items []domain.ReplyItem) {
	menu, known := followUpMenu(Action(action))
	logrus.WithFields(logrus.Fields{
		"recipient": recipientID,
		"action":    action,
		"known":     known,
	}).Debug("[ROUTER] Routing action")

	if len(items) > 0 {
		r.seq.Sequence(recipientID, items)
	}
	if !known {
		return
	}
	r.seq.Signal(recipientID, domain.ActionTypingOn)
	r.seq.SendAfter(recipientID, menu, r.cfg.FollowUpDelay)
}

// Query sends free text to NLU and routes the result. An NLU failure is
// answered with the error text.
func (r *Router) Query(ctx context.Context, recipientID, sessionID, text string) {
	r.seq.Signal(recipientID, domain.ActionTypingOn)

	result, err := r.nlu.SendText(ctx, sessionID, text)
	if err != nil {
		r.upstreamFailed(recipientID, err)
		return
	}
	r.Route(ctx, recipientID, result)
}

// HandleQuickReply enters the branch named by payload, or treats the
// payload as free text when no branch matches.
func (r *Router) HandleQuickReply(ctx context.Context, recipientID, sessionID, payload string) {
	if _, known := followUpMenu(Action(payload)); known {
		r.RouteAction(recipientID, payload, nil)
		return
	}
	r.Query(ctx, recipientID, sessionID, payload)
}

// HandlePostback answers a tapped postback button.
func (r *Router) HandlePostback(ctx context.Context, recipientID, sessionID, payload string) {
	logrus.WithFields(logrus.Fields{
		"recipient": recipientID,
		"payload":   payload,
	}).Info("[ROUTER] Postback received")

	if menu, ok := readMoreMenu(payload); ok {
		r.seq.SendAfter(recipientID, menu, r.cfg.FollowUpDelay)
		return
	}

	switch payload {
	case PayloadJobApply:
		result, err := r.nlu.SendEvent(ctx, sessionID, EventJobOpenings)
		if err != nil {
			r.upstreamFailed(recipientID, err)
			return
		}
		r.Route(ctx, recipientID, result)
	case PayloadGetStarted:
		r.Greet(ctx, recipientID)
	default:
		r.seq.Sequence(recipientID, []domain.ReplyItem{domain.TextReply{Text: r.cfg.PostbackFallbackText}})
	}
}

func (r *Router) upstreamFailed(recipientID string, err error) {
	logrus.WithError(err).Errorf("[ROUTER] NLU request failed for %s", recipientID)
	r.seq.Signal(recipientID, domain.ActionTypingOff)
	r.seq.Sequence(recipientID, []domain.ReplyItem{domain.TextReply{Text: r.cfg.ErrorText}})
}

// HandleAttachments acknowledges media sent by the participant.
func (r *Router) HandleAttachments(recipientID string, attachments []domain.Attachment) {
	logrus.WithFields(logrus.Fields{
		"recipient":   recipientID,
		"attachments": len(attachments),
	}).Info("[ROUTER] Attachments received")
	r.seq.Sequence(recipientID, []domain.ReplyItem{domain.TextReply{Text: r.cfg.AttachmentText}})
}

package dialogflow

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/domain"
)

const platformFacebook = "FACEBOOK"

type detectIntentResponse struct {
	ResponseID  string      `json:"responseId"`
	QueryResult queryResult `json:"queryResult"`
}

type queryResult struct {
	QueryText           string               `json:"queryText"`
	Action              string               `json:"action"`
	Parameters          map[string]any       `json:"parameters"`
	FulfillmentText     string               `json:"fulfillmentText"`
	FulfillmentMessages []fulfillmentMessage `json:"fulfillmentMessages"`
	OutputContexts      []outputContext      `json:"outputContexts"`
}

type outputContext struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespanCount"`
	Parameters    map[string]any `json:"parameters"`
}

type fulfillmentMessage struct {
	Platform     string         `json:"platform"`
	Text         *textMessage   `json:"text,omitempty"`
	Card         *cardMessage   `json:"card,omitempty"`
	QuickReplies *quickReplies  `json:"quickReplies,omitempty"`
	Image        *imageMessage  `json:"image,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
}

type textMessage struct {
	Text []string `json:"text"`
}

type cardMessage struct {
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	ImageURI string       `json:"imageUri"`
	Buttons  []cardButton `json:"buttons"`
}

type cardButton struct {
	Text     string `json:"text"`
	Postback string `json:"postback"`
}

type quickReplies struct {
	Title        string   `json:"title"`
	QuickReplies []string `json:"quickReplies"`
}

type imageMessage struct {
	ImageURI string `json:"imageUri"`
}

func (q queryResult) toDomain() *domain.NluResult {
	result := &domain.NluResult{
		QueryText:       q.QueryText,
		FulfillmentText: q.FulfillmentText,
		Action:          q.Action,
		Parameters:      q.Parameters,
		Items:           replyItems(q.FulfillmentMessages),
	}
	for _, c := range q.OutputContexts {
		result.OutputContexts = append(result.OutputContexts, domain.OutputContext{
			Name:          c.Name,
			LifespanCount: c.LifespanCount,
			Parameters:    c.Parameters,
		})
	}
	return result
}

// replyItems keeps the Facebook messages when the agent defines any and
// the platform-independent ones otherwise.
func replyItems(messages []fulfillmentMessage) []domain.ReplyItem {
	var facebook, unspecified []fulfillmentMessage
	for _, m := range messages {
		switch m.Platform {
		case platformFacebook:
			facebook = append(facebook, m)
		case "", "PLATFORM_UNSPECIFIED":
			unspecified = append(unspecified, m)
		}
	}
	selected := unspecified
	if len(facebook) > 0 {
		selected = facebook
	}

	var items []domain.ReplyItem
	for _, m := range selected {
		items = append(items, m.toItems()...)
	}
	return items
}

func (m fulfillmentMessage) toItems() []domain.ReplyItem {
	switch {
	case m.Text != nil:
		var items []domain.ReplyItem
		for _, t := range m.Text.Text {
			for _, line := range strings.Split(t, "\n") {
				if strings.TrimSpace(line) != "" {
					items = append(items, domain.TextReply{Text: line})
				}
			}
		}
		return items
	case m.Card != nil:
		card := domain.CardReply{
			Title:    m.Card.Title,
			Subtitle: m.Card.Subtitle,
			ImageURL: m.Card.ImageURI,
		}
		for _, b := range m.Card.Buttons {
			card.Buttons = append(card.Buttons, domain.CardButton(b.Text, b.Postback))
		}
		return []domain.ReplyItem{card}
	case m.QuickReplies != nil:
		return []domain.ReplyItem{domain.QuickRepliesReply{
			Title:   m.QuickReplies.Title,
			Replies: m.QuickReplies.QuickReplies,
		}}
	case m.Image != nil:
		return []domain.ReplyItem{domain.ImageReply{URL: m.Image.ImageURI}}
	case m.Payload != nil:
		logrus.Debug("[DIALOGFLOW] Skipping custom payload message")
		return nil
	default:
		return nil
	}
}

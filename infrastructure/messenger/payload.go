package messenger

import (
	"fmt"

	"github.com/AzielCF/az-relay/conversation/domain"
)

// MaxCarouselElements is the generic template element limit.
const MaxCarouselElements = 10

// Send API request bodies.

type sendRequest struct {
	MessagingType string    `json:"messaging_type,omitempty"`
	Recipient     recipient `json:"recipient"`
	Message       *message  `json:"message,omitempty"`
	SenderAction  string    `json:"sender_action,omitempty"`
}

type recipient struct {
	ID string `json:"id"`
}

type message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *attachment  `json:"attachment,omitempty"`
	QuickReplies []quickReply `json:"quick_replies,omitempty"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

type attachmentPayload struct {
	TemplateType string          `json:"template_type,omitempty"`
	Text         string          `json:"text,omitempty"`
	Buttons      []domain.Button `json:"buttons,omitempty"`
	Elements     []element       `json:"elements,omitempty"`
	URL          string          `json:"url,omitempty"`
	IsReusable   bool            `json:"is_reusable,omitempty"`
}

type element struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	ImageURL string          `json:"image_url,omitempty"`
	Buttons  []domain.Button `json:"buttons,omitempty"`
}

type quickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type sendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// render turns an outbound payload into one or more Send API requests, in
// the order they have to be sent.
func render(recipientID string, out domain.Outbound) ([]sendRequest, error) {
	to := recipient{ID: recipientID}

	switch {
	case out.IsAction():
		return []sendRequest{{Recipient: to, SenderAction: string(out.Action)}}, nil
	case out.IsCarousel():
		var reqs []sendRequest
		for start := 0; start < len(out.Cards); start += MaxCarouselElements {
			end := min(start+MaxCarouselElements, len(out.Cards))
			reqs = append(reqs, response(to, carousel(out.Cards[start:end])))
		}
		return reqs, nil
	case out.Item != nil:
		msg, err := renderItem(out.Item)
		if err != nil {
			return nil, err
		}
		return []sendRequest{response(to, msg)}, nil
	default:
		return nil, fmt.Errorf("empty outbound payload")
	}
}

func response(to recipient, msg *message) sendRequest {
	return sendRequest{MessagingType: "RESPONSE", Recipient: to, Message: msg}
}

func renderItem(item domain.ReplyItem) (*message, error) {
	switch it := item.(type) {
	case domain.TextReply:
		return &message{Text: it.Text}, nil
	case domain.CardReply:
		return carousel([]domain.CardReply{it}), nil
	case domain.ButtonMenuReply:
		return &message{Attachment: &attachment{
			Type: "template",
			Payload: attachmentPayload{
				TemplateType: "button",
				Text:         it.Text,
				Buttons:      it.Buttons,
			},
		}}, nil
	case domain.QuickRepliesReply:
		replies := make([]quickReply, 0, len(it.Replies))
		for _, r := range it.Replies {
			replies = append(replies, quickReply{ContentType: "text", Title: r, Payload: r})
		}
		return &message{Text: it.Title, QuickReplies: replies}, nil
	case domain.ImageReply:
		return &message{Attachment: &attachment{
			Type:    "image",
			Payload: attachmentPayload{URL: it.URL},
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported reply item %T", item)
	}
}

func carousel(cards []domain.CardReply) *message {
	elements := make([]element, 0, len(cards))
	for _, c := range cards {
		elements = append(elements, element{
			Title:    c.Title,
			Subtitle: c.Subtitle,
			ImageURL: c.ImageURL,
			Buttons:  c.Buttons,
		})
	}
	return &message{Attachment: &attachment{
		Type: "template",
		Payload: attachmentPayload{
			TemplateType: "generic",
			Elements:     elements,
		},
	}}
}

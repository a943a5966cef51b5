package messenger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

// WebhookPayload is the body of a Messenger webhook POST.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type participant struct {
	ID string `json:"id"`
}

// MessagingEvent is a single entry of messaging[]. Exactly one of the
// pointer fields is expected to be set.
type MessagingEvent struct {
	Sender         participant    `json:"sender"`
	Recipient      participant    `json:"recipient"`
	Timestamp      int64          `json:"timestamp"`
	Message        *inMessage     `json:"message,omitempty"`
	Postback       *inPostback    `json:"postback,omitempty"`
	Delivery       *inDelivery    `json:"delivery,omitempty"`
	Read           *inRead        `json:"read,omitempty"`
	AccountLinking *inAccountLink `json:"account_linking,omitempty"`
	Optin          *inOptin       `json:"optin,omitempty"`
}

type inMessage struct {
	MID         string         `json:"mid"`
	Text        string         `json:"text"`
	IsEcho      bool           `json:"is_echo"`
	AppID       json.Number    `json:"app_id"`
	Metadata    string         `json:"metadata"`
	QuickReply  *inQuickReply  `json:"quick_reply,omitempty"`
	Attachments []inAttachment `json:"attachments,omitempty"`
}

type inQuickReply struct {
	Payload string `json:"payload"`
}

type inAttachment struct {
	Type    string `json:"type"`
	Payload struct {
		URL string `json:"url"`
	} `json:"payload"`
}

type inPostback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

type inDelivery struct {
	MIDs      []string `json:"mids"`
	Watermark int64    `json:"watermark"`
}

type inRead struct {
	Watermark int64 `json:"watermark"`
}

type inAccountLink struct {
	Status            string `json:"status"`
	AuthorizationCode string `json:"authorization_code"`
}

type inOptin struct {
	Ref string `json:"ref"`
}

// DecodeWebhook parses a webhook body.
func DecodeWebhook(body []byte) (*WebhookPayload, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, pkgError.MalformedEventError(fmt.Sprintf("invalid webhook body: %v", err))
	}
	return &payload, nil
}

// Events flattens every entry into domain events in arrival order.
// Events of an unknown shape are logged and skipped.
func (p *WebhookPayload) Events() []domain.InboundEvent {
	var events []domain.InboundEvent
	for _, entry := range p.Entry {
		for _, raw := range entry.Messaging {
			ev, err := raw.toDomain(entry.ID)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"page":   entry.ID,
					"sender": raw.Sender.ID,
				}).WithError(err).Warn("[WEBHOOK] Skipping messaging event")
				continue
			}
			events = append(events, ev)
		}
	}
	return events
}

func millis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func (e MessagingEvent) toDomain(pageID string) (domain.InboundEvent, error) {
	meta := domain.EventMeta{
		PageID:      pageID,
		SenderID:    e.Sender.ID,
		RecipientID: e.Recipient.ID,
		Timestamp:   millis(e.Timestamp),
	}

	switch {
	case e.Optin != nil:
		return domain.Authentication{EventMeta: meta, Ref: e.Optin.Ref}, nil
	case e.Message != nil:
		return e.Message.toDomain(meta), nil
	case e.Delivery != nil:
		return domain.DeliveryReceipt{EventMeta: meta, MessageIDs: e.Delivery.MIDs, Watermark: millis(e.Delivery.Watermark)}, nil
	case e.Postback != nil:
		return domain.Postback{EventMeta: meta, Title: e.Postback.Title, Payload: e.Postback.Payload}, nil
	case e.Read != nil:
		return domain.ReadReceipt{EventMeta: meta, Watermark: millis(e.Read.Watermark)}, nil
	case e.AccountLinking != nil:
		return domain.AccountLink{
			EventMeta:         meta,
			Status:            e.AccountLinking.Status,
			AuthorizationCode: e.AccountLinking.AuthorizationCode,
		}, nil
	default:
		return nil, pkgError.MalformedEventError("unknown messaging event")
	}
}

func (m *inMessage) toDomain(meta domain.EventMeta) domain.InboundEvent {
	switch {
	case m.IsEcho:
		return domain.Echo{EventMeta: meta, MessageID: m.MID, AppID: m.AppID.String(), Metadata: m.Metadata}
	case m.QuickReply != nil:
		return domain.QuickReply{EventMeta: meta, MessageID: m.MID, Text: m.Text, Payload: m.QuickReply.Payload}
	case m.Text == "" && len(m.Attachments) > 0:
		attachments := make([]domain.Attachment, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			attachments = append(attachments, domain.Attachment{Type: a.Type, URL: a.Payload.URL})
		}
		return domain.AttachmentMessage{EventMeta: meta, MessageID: m.MID, Attachments: attachments}
	default:
		return domain.TextMessage{EventMeta: meta, MessageID: m.MID, Text: m.Text}
	}
}

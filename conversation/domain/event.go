package domain

import "time"

// EventKind identifies the variant of an InboundEvent.
type EventKind string

const (
	EventText           EventKind = "text"
	EventQuickReply     EventKind = "quick_reply"
	EventPostback       EventKind = "postback"
	EventAttachment     EventKind = "attachment"
	EventEcho           EventKind = "echo"
	EventDelivery       EventKind = "delivery"
	EventRead           EventKind = "read"
	EventAccountLink    EventKind = "account_link"
	EventAuthentication EventKind = "authentication"
)

// EventMeta is carried by every inbound event variant.
type EventMeta struct {
	PageID      string
	SenderID    string
	RecipientID string
	Timestamp   time.Time
}

// InboundEvent is a closed set of platform events. Only the types declared in
// this file implement it.
type InboundEvent interface {
	Kind() EventKind
	Meta() EventMeta
	// ParticipantID is the human on the other side of the conversation. For
	// echoes this is the recipient, since the page itself is the sender.
	ParticipantID() string
}

type TextMessage struct {
	EventMeta
	MessageID string
	Text      string
}

type QuickReply struct {
	EventMeta
	MessageID string
	Text      string
	Payload   string
}

type Postback struct {
	EventMeta
	Title   string
	Payload string
}

// Attachment is a descriptor of a file/media sent by the user.
type Attachment struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

type AttachmentMessage struct {
	EventMeta
	MessageID   string
	Attachments []Attachment
}

type Echo struct {
	EventMeta
	MessageID string
	AppID     string
	Metadata  string
}

type DeliveryReceipt struct {
	EventMeta
	MessageIDs []string
	Watermark  time.Time
}

type ReadReceipt struct {
	EventMeta
	Watermark time.Time
}

type AccountLink struct {
	EventMeta
	Status            string
	AuthorizationCode string
}

// Authentication is the "send to messenger" opt-in event.
type Authentication struct {
	EventMeta
	Ref string
}

func (m EventMeta) Meta() EventMeta { return m }
func (m EventMeta) ParticipantID() string { return m.SenderID }

func (TextMessage) Kind() EventKind { return EventText }
func (QuickReply) Kind() EventKind { return EventQuickReply }
func (Postback) Kind() EventKind { return EventPostback }
func (AttachmentMessage) Kind() EventKind { return EventAttachment }
func (Echo) Kind() EventKind { return EventEcho }
func (DeliveryReceipt) Kind() EventKind { return EventDelivery }
func (ReadReceipt) Kind() EventKind { return EventRead }
func (AccountLink) Kind() EventKind { return EventAccountLink }
func (Authentication) Kind() EventKind { return EventAuthentication }

func (e Echo) ParticipantID() string { return e.RecipientID }

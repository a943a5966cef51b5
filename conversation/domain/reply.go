package domain

import (
	"strings"
	"time"
)

// ReplyKind identifies the variant of a ReplyItem.
type ReplyKind string

const (
	ReplyText         ReplyKind = "text"
	ReplyCard         ReplyKind = "card"
	ReplyButtonMenu   ReplyKind = "button_menu"
	ReplyQuickReplies ReplyKind = "quick_replies"
	ReplyImage        ReplyKind = "image"
)

// ReplyItem is one unit of bot output. Order inside a []ReplyItem is the
// delivery order.
type ReplyItem interface {
	Kind() ReplyKind
}

// ButtonType mirrors the Messenger button types the relay renders.
type ButtonType string

const (
	ButtonPostback    ButtonType = "postback"
	ButtonWebURL      ButtonType = "web_url"
	ButtonPhoneNumber ButtonType = "phone_number"
)

type Button struct {
	Type    ButtonType `json:"type"`
	Title   string     `json:"title"`
	Payload string     `json:"payload,omitempty"`
	URL     string     `json:"url,omitempty"`
}

type TextReply struct {
	Text string
}

// CardReply is grouped with adjacent cards into a single carousel send.
type CardReply struct {
	Title    string
	Subtitle string
	ImageURL string
	Buttons  []Button
}

type ButtonMenuReply struct {
	Text    string
	Buttons []Button
}

type QuickRepliesReply struct {
	Title   string
	Replies []string
}

type ImageReply struct {
	URL string
}

func (TextReply) Kind() ReplyKind { return ReplyText }
func (CardReply) Kind() ReplyKind { return ReplyCard }
func (ButtonMenuReply) Kind() ReplyKind { return ReplyButtonMenu }
func (QuickRepliesReply) Kind() ReplyKind { return ReplyQuickReplies }
func (ImageReply) Kind() ReplyKind { return ReplyImage }

// IsCard reports whether item takes part in carousel grouping.
func IsCard(item ReplyItem) bool {
	_, ok := item.(CardReply)
	return ok
}

// CardButton builds a card button from an NLU "postback" value: http(s)
// links open in the browser, anything else is posted back to the bot.
func CardButton(title, postback string) Button {
	if strings.HasPrefix(postback, "http://") || strings.HasPrefix(postback, "https://") {
		return Button{Type: ButtonWebURL, Title: title, URL: postback}
	}
	return Button{Type: ButtonPostback, Title: title, Payload: postback}
}

// SenderAction is a non-message signal sent to the platform.
type SenderAction string

const (
	ActionTypingOn  SenderAction = "typing_on"
	ActionTypingOff SenderAction = "typing_off"
	ActionMarkSeen  SenderAction = "mark_seen"
)

// Outbound is what a single scheduled send delivers: either one reply item,
// a carousel of cards, or a sender action.
type Outbound struct {
	Item   ReplyItem
	Cards  []CardReply
	Action SenderAction
}

func (o Outbound) IsCarousel() bool { return len(o.Cards) > 0 }
func (o Outbound) IsAction() bool { return o.Action != "" }

// Describe is a short label used in logs.
func (o Outbound) Describe() string {
	switch {
	case o.IsAction():
		return "action:" + string(o.Action)
	case o.IsCarousel():
		return "carousel"
	case o.Item != nil:
		return string(o.Item.Kind())
	default:
		return "empty"
	}
}

// ScheduledSend is one delivery produced by the reply sequencer.
type ScheduledSend struct {
	RecipientID string
	Payload     Outbound
	Delay       time.Duration
	// Positions are the indexes of the source items carried by this send.
	Positions []int
}

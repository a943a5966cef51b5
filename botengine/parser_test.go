package botengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	convDomain "github.com/AzielCF/az-relay/conversation/domain"
)

func TestParseCompletion_QuickReplies(t *testing.T) {
	result := ParseCompletion(`{"action":"","fulfillment_text":"Which size?","quick_replies_title":"Pick one","quick_replies":["S"," ","M"]}`)

	assert.Equal(t, []convDomain.ReplyItem{
		convDomain.TextReply{Text: "Which size?"},
		convDomain.QuickRepliesReply{Title: "Pick one", Replies: []string{"S", "M"}},
	}, result.Items)
	assert.False(t, result.HasAction())
}

func TestParseCompletion_DefaultQuickRepliesTitle(t *testing.T) {
	result := ParseCompletion(`{"action":"","fulfillment_text":"","quick_replies":["yes","no"]}`)

	assert.Equal(t, []convDomain.ReplyItem{
		convDomain.QuickRepliesReply{Title: "Choose an option", Replies: []string{"yes", "no"}},
	}, result.Items)
}

func TestParseCompletion_CodeFence(t *testing.T) {
	result := ParseCompletion("```json\n{\"action\":\"faq-delivery\",\"fulfillment_text\":\"Shipping takes 3 days.\"}\n```")

	assert.Equal(t, "faq-delivery", result.Action)
	assert.Equal(t, "Shipping takes 3 days.", result.FulfillmentText)
}

func TestParseCompletion_PlainText(t *testing.T) {
	result := ParseCompletion("Hello there\n\nHow can I help?")

	assert.Equal(t, "", result.Action)
	assert.Equal(t, "Hello there\n\nHow can I help?", result.FulfillmentText)
	assert.Equal(t, []convDomain.ReplyItem{
		convDomain.TextReply{Text: "Hello there"},
		convDomain.TextReply{Text: "How can I help?"},
	}, result.Items)
}

func TestParseCompletion_Empty(t *testing.T) {
	result := ParseCompletion("")

	assert.Empty(t, result.Items)
	assert.Empty(t, result.FulfillmentText)
}

package botengine

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/botengine/domain"
	convDomain "github.com/AzielCF/az-relay/conversation/domain"
)

// ParseCompletion turns model output into an NLU result. Output that is not
// the expected JSON object is used verbatim as fulfillment text.
func ParseCompletion(raw string) *convDomain.NluResult {
	text := stripCodeFence(raw)

	var c domain.Completion
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		logrus.WithError(err).Debug("[BOTENGINE] Completion is not JSON, using raw text")
		c = domain.Completion{FulfillmentText: text}
	}

	result := &convDomain.NluResult{
		Action:          strings.TrimSpace(c.Action),
		FulfillmentText: strings.TrimSpace(c.FulfillmentText),
	}
	for _, line := range strings.Split(c.FulfillmentText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result.Items = append(result.Items, convDomain.TextReply{Text: line})
		}
	}

	var replies []string
	for _, r := range c.QuickReplies {
		if r = strings.TrimSpace(r); r != "" {
			replies = append(replies, r)
		}
	}
	if len(replies) > 0 {
		title := strings.TrimSpace(c.QuickRepliesTitle)
		if title == "" {
			title = "Choose an option"
		}
		result.Items = append(result.Items, convDomain.QuickRepliesReply{Title: title, Replies: replies})
	}
	return result
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

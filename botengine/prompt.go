package botengine

import (
	"fmt"
	"strings"
)

const eventPrefix = "[EVENT] "

const basePrompt = `You are the assistant of a Facebook page and answer people writing to it on Messenger.
Reply in the language with code %q unless the user clearly writes in another language.
Keep answers short. Put each chat bubble on its own line of fulfillment_text.

Always answer with one JSON object with these fields:
- action: one of the actions below when the message matches it, otherwise an empty string
- fulfillment_text: the reply to show the user
- quick_replies_title: a short question shown above quick replies, may be empty
- quick_replies: up to 5 short suggested answers, may be empty

Known actions:
%s

A user message starting with %q is a platform event, not typed text. Answer it as if the user asked about the topic named after the prefix.`

// BuildSystemPrompt renders the instructions sent with every request.
func BuildSystemPrompt(languageCode string, actions []string) string {
	list := "- (none)"
	if len(actions) > 0 {
		list = "- " + strings.Join(actions, "\n- ")
	}
	return fmt.Sprintf(basePrompt, languageCode, list, eventPrefix)
}

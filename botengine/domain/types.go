package domain

// Roles used in ChatTurn.Role.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn represents a single turn in a conversation
type ChatTurn struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
}

// Completion is the structured answer the model is instructed to return.
type Completion struct {
	Action            string   `json:"action"`
	FulfillmentText   string   `json:"fulfillment_text"`
	QuickRepliesTitle string   `json:"quick_replies_title,omitempty"`
	QuickReplies      []string `json:"quick_replies,omitempty"`
}

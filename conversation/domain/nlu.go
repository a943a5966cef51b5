package domain

import "context"

// OutputContext is a dialogue context returned by the NLU service.
type OutputContext struct {
	Name          string         `json:"name"`
	LifespanCount int            `json:"lifespan_count,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// NluResult is the structured fulfillment returned for a single query.
type NluResult struct {
	QueryText       string
	FulfillmentText string
	Items           []ReplyItem
	Action          string
	OutputContexts  []OutputContext
	Parameters      map[string]any
}

// HasAction reports whether the NLU service classified an action.
func (r *NluResult) HasAction() bool {
	return r != nil && r.Action != ""
}

// NLUClient is the external natural-language-understanding service.
type NLUClient interface {
	// SendText classifies free text for the given session.
	SendText(ctx context.Context, sessionID string, text string) (*NluResult, error)
	// SendEvent triggers a named event instead of free text.
	SendEvent(ctx context.Context, sessionID string, eventName string) (*NluResult, error)
}

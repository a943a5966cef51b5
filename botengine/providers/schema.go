package providers

// completionSchema is the JSON schema both providers ask the model to
// follow. It mirrors domain.Completion.
var completionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"action":              map[string]any{"type": "string"},
		"fulfillment_text":    map[string]any{"type": "string"},
		"quick_replies_title": map[string]any{"type": "string"},
		"quick_replies":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required":             []string{"action", "fulfillment_text", "quick_replies_title", "quick_replies"},
	"additionalProperties": false,
}

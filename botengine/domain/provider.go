package domain

import "context"

// ChatRequest es una petición agnóstica de chat
type ChatRequest struct {
	SystemPrompt string
	History      []ChatTurn
	UserText     string
	Model        string
	ChatKey      string // session the request belongs to, for logs
}

// ChatResponse es la respuesta agnóstica de un proveedor de IA
type ChatResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// AIProvider is a chat model that answers with a JSON Completion.
type AIProvider interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

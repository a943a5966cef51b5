package botengine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/botengine/domain"
	convDomain "github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

// Engine answers NLU queries with a chat model. It implements
// conversation/domain.NLUClient so the router cannot tell it apart from
// Dialogflow.
type Engine struct {
	provider     domain.AIProvider
	memory       *MemoryStore
	systemPrompt string
}

func NewEngine(provider domain.AIProvider, memory *MemoryStore, systemPrompt string) *Engine {
	return &Engine{provider: provider, memory: memory, systemPrompt: systemPrompt}
}

func (e *Engine) SendText(ctx context.Context, sessionID, text string) (*convDomain.NluResult, error) {
	return e.query(ctx, sessionID, text)
}

// SendEvent sends the event as a tagged user message.
func (e *Engine) SendEvent(ctx context.Context, sessionID, eventName string) (*convDomain.NluResult, error) {
	return e.query(ctx, sessionID, eventPrefix+eventName)
}

func (e *Engine) query(ctx context.Context, sessionID, text string) (*convDomain.NluResult, error) {
	resp, err := e.provider.Chat(ctx, domain.ChatRequest{
		SystemPrompt: e.systemPrompt,
		History:      e.memory.Get(sessionID),
		UserText:     text,
		ChatKey:      sessionID,
	})
	if err != nil {
		return nil, pkgError.UpstreamError(fmt.Sprintf("chat model request failed: %v", err))
	}

	e.memory.Save(sessionID,
		domain.ChatTurn{Role: domain.RoleUser, Text: text},
		domain.ChatTurn{Role: domain.RoleAssistant, Text: resp.Text},
	)

	result := ParseCompletion(resp.Text)
	result.QueryText = text

	logrus.WithFields(logrus.Fields{
		"session": sessionID,
		"model":   resp.Model,
		"action":  result.Action,
		"items":   len(result.Items),
	}).Debug("[BOTENGINE] Completion parsed")
	return result, nil
}

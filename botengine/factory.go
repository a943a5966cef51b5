package botengine

import (
	"context"
	"fmt"

	"github.com/AzielCF/az-relay/botengine/domain"
	"github.com/AzielCF/az-relay/botengine/providers"
	convDomain "github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/core/config"
	"github.com/AzielCF/az-relay/integrations/dialogflow"
)

// NewNLUClient builds the NLU client selected by cfg.Provider. actions are
// listed in the chat model prompt; Dialogflow ignores them.
func NewNLUClient(ctx context.Context, cfg config.NLUConfig, actions []string) (convDomain.NLUClient, error) {
	var provider domain.AIProvider
	switch cfg.Provider {
	case "", config.ProviderDialogflow:
		client, err := dialogflow.NewClient(cfg, dialogflow.Options{})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		p, err := providers.NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		provider = p
	case config.ProviderGemini:
		p, err := providers.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unknown nlu provider %q", cfg.Provider)
	}

	return NewEngine(provider, NewMemoryStore(cfg.HistoryTurns), BuildSystemPrompt(cfg.LanguageCode, actions)), nil
}

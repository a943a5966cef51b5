package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/botengine/domain"
	domainBot "github.com/AzielCF/az-relay/botengine/domain/bot"
)

// OpenAIProvider is the adapter for the OpenAI API
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider. baseURL is optional and
// points the client at any OpenAI compatible endpoint.
func NewOpenAIProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = domainBot.DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Chat implements the AIProvider interface for OpenAI
func (p *OpenAIProvider) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, t := range req.History {
		if t.Role == domain.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Text))
		} else {
			messages = append(messages, openai.UserMessage(t.Text))
		}
	}
	messages = append(messages, openai.UserMessage(req.UserText))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "relay_completion",
					Schema: any(completionSchema),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.ChatResponse{}, err
	}
	if len(completion.Choices) == 0 {
		return domain.ChatResponse{}, fmt.Errorf("no response from openai")
	}

	resp := domain.ChatResponse{
		Text:         completion.Choices[0].Message.Content,
		Model:        model,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
	}

	logrus.WithFields(logrus.Fields{
		"chat_key":      req.ChatKey,
		"model":         model,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
	}).Debug("[OPENAI] Chat completed")

	return resp, nil
}

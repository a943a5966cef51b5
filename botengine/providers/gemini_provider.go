package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/AzielCF/az-relay/botengine/domain"
	domainBot "github.com/AzielCF/az-relay/botengine/domain/bot"
)

const geminiMaxAttempts = 3

// GeminiProvider is the adapter for the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider. baseURL is optional.
func NewGeminiProvider(ctx context.Context, apiKey, model, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider requires an API key")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = domainBot.DefaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Chat implements the AIProvider interface for Gemini
func (p *GeminiProvider) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseJsonSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"action":              {Type: "string"},
				"fulfillment_text":    {Type: "string"},
				"quick_replies_title": {Type: "string"},
				"quick_replies":       {Type: "array", Items: &genai.Schema{Type: "string"}},
			},
			Required: []string{"action", "fulfillment_text"},
		},
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, "")
	}

	var contents []*genai.Content
	for _, t := range req.History {
		role := genai.RoleUser
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.UserText}},
	})

	result, err := p.generateContentWithRetry(ctx, model, contents, cfg)
	if err != nil {
		return domain.ChatResponse{}, err
	}
	if result == nil || len(result.Candidates) == 0 {
		return domain.ChatResponse{}, fmt.Errorf("no response from gemini")
	}

	resp := domain.ChatResponse{Text: result.Text(), Model: model}
	if result.UsageMetadata != nil {
		resp.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}

	logrus.WithFields(logrus.Fields{
		"chat_key":      req.ChatKey,
		"model":         model,
		"input_tokens":  resp.InputTokens,
		"output_tokens": resp.OutputTokens,
	}).Debug("[GEMINI] Chat completed")

	return resp, nil
}

func (p *GeminiProvider) generateContentWithRetry(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for i := 0; i < geminiMaxAttempts; i++ {
		result, err := p.client.Models.GenerateContent(ctx, model, contents, cfg)
		if err == nil {
			return result, nil
		}
		if !strings.Contains(err.Error(), "503") {
			return nil, err
		}
		logrus.WithError(err).Warnf("[GEMINI] Model overloaded, retry %d", i+1)
		select {
		case <-time.After(time.Duration(1<<uint(i)) * time.Second):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("max retries exceeded")
}

package dialogflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"

	"github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/core/config"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
)

const (
	DefaultEndpoint = "https://dialogflow.googleapis.com"
	GoogleTokenURL  = "https://oauth2.googleapis.com/token"
	scopeDialogflow = "https://www.googleapis.com/auth/dialogflow"
	requestTimeout  = 30 * time.Second
)

// Client calls the Dialogflow ES detectIntent REST endpoint with a
// service account. It implements domain.NLUClient.
type Client struct {
	http         *http.Client
	endpoint     string
	projectID    string
	languageCode string
}

// Options overrides endpoints, mostly for tests.
type Options struct {
	TokenURL string
}

func NewClient(cfg config.NLUConfig, opts Options) (*Client, error) {
	if cfg.ProjectID == "" || cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("dialogflow requires project id, client email and private key")
	}

	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = GoogleTokenURL
	}
	jwtCfg := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{scopeDialogflow},
		TokenURL:   tokenURL,
	}

	httpClient := oauth2.NewClient(context.Background(), jwtCfg.TokenSource(context.Background()))
	httpClient.Timeout = requestTimeout

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	lang := cfg.LanguageCode
	if lang == "" {
		lang = "en"
	}

	return &Client{
		http:         httpClient,
		endpoint:     strings.TrimRight(endpoint, "/"),
		projectID:    cfg.ProjectID,
		languageCode: lang,
	}, nil
}

type textInput struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

type eventInput struct {
	Name         string `json:"name"`
	LanguageCode string `json:"languageCode"`
}

type queryInput struct {
	Text  *textInput  `json:"text,omitempty"`
	Event *eventInput `json:"event,omitempty"`
}

type detectIntentRequest struct {
	QueryInput queryInput `json:"queryInput"`
}

func (c *Client) SendText(ctx context.Context, sessionID, text string) (*domain.NluResult, error) {
	return c.detectIntent(ctx, sessionID, queryInput{
		Text: &textInput{Text: text, LanguageCode: c.languageCode},
	})
}

func (c *Client) SendEvent(ctx context.Context, sessionID, eventName string) (*domain.NluResult, error) {
	return c.detectIntent(ctx, sessionID, queryInput{
		Event: &eventInput{Name: eventName, LanguageCode: c.languageCode},
	})
}

func (c *Client) sessionURL(sessionID string) string {
	return fmt.Sprintf("%s/v2/projects/%s/agent/sessions/%s:detectIntent",
		c.endpoint, url.PathEscape(c.projectID), url.PathEscape(sessionID))
}

func (c *Client) detectIntent(ctx context.Context, sessionID string, input queryInput) (*domain.NluResult, error) {
	body, err := json.Marshal(detectIntentRequest{QueryInput: input})
	if err != nil {
		return nil, fmt.Errorf("failed to encode detectIntent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sessionURL(sessionID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build detectIntent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgError.UpstreamError(fmt.Sprintf("dialogflow request failed: %v", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgError.UpstreamError(fmt.Sprintf("failed to read dialogflow response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, pkgError.UpstreamError(fmt.Sprintf("dialogflow returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var out detectIntentResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, pkgError.UpstreamError(fmt.Sprintf("invalid dialogflow response: %v", err))
	}

	result := out.QueryResult.toDomain()
	logrus.WithFields(logrus.Fields{
		"session": sessionID,
		"action":  result.Action,
		"items":   len(result.Items),
	}).Debug("[DIALOGFLOW] Intent detected")
	return result, nil
}

package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the settings the relay cannot run without. Dialogflow needs
// the service-account credentials, the LLM providers only need an API key.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Messenger,
		validation.Field(&c.Messenger.PageToken, validation.Required.Error("FB_PAGE_TOKEN is required")),
		validation.Field(&c.Messenger.VerifyToken, validation.Required.Error("FB_VERIFY_TOKEN is required")),
		validation.Field(&c.Messenger.AppSecret, validation.Required.Error("FB_APP_SECRET is required")),
		validation.Field(&c.Messenger.GraphAPIBaseURL, validation.Required),
	); err != nil {
		return fmt.Errorf("messenger config: %w", err)
	}

	if err := validation.ValidateStruct(&c.NLU,
		validation.Field(&c.NLU.Provider, validation.In(ProviderDialogflow, ProviderOpenAI, ProviderGemini)),
		validation.Field(&c.NLU.LanguageCode, validation.Required.Error("DF_LANGUAGE_CODE is required")),
		validation.Field(&c.NLU.ProjectID, validation.When(c.NLU.IsDialogflow(), validation.Required.Error("GOOGLE_PROJECT_ID is required"))),
		validation.Field(&c.NLU.ClientEmail, validation.When(c.NLU.IsDialogflow(), validation.Required.Error("GOOGLE_CLIENT_EMAIL is required"))),
		validation.Field(&c.NLU.PrivateKey, validation.When(c.NLU.IsDialogflow(), validation.Required.Error("GOOGLE_PRIVATE_KEY is required"))),
		validation.Field(&c.NLU.APIKey, validation.When(!c.NLU.IsDialogflow(), validation.Required.Error("NLU_API_KEY is required"))),
	); err != nil {
		return fmt.Errorf("nlu config: %w", err)
	}

	if err := validation.ValidateStruct(&c.Conversation,
		validation.Field(&c.Conversation.MessageSpacing, validation.Min(0)),
		validation.Field(&c.Conversation.FollowUpDelay, validation.Min(0)),
		validation.Field(&c.Conversation.FallbackText, validation.Required),
		validation.Field(&c.Conversation.PostbackFallbackText, validation.Required),
	); err != nil {
		return fmt.Errorf("conversation config: %w", err)
	}

	return nil
}

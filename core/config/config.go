package config

import (
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App          AppConfig
	Messenger    MessengerConfig
	NLU          NLUConfig
	Conversation ConversationConfig
	Database     DatabaseConfig
	WorkerPool   WorkerPoolConfig
}

type AppConfig struct {
	Version     string
	Port        string
	Debug       bool
	Environment string
	BasicAuth   []string
	BasePath    string
	ServerID    string
}

type MessengerConfig struct {
	PageToken       string
	VerifyToken     string
	AppSecret       string
	AppID           string
	GraphAPIBaseURL string
	GraphAPIVersion string
	RequestTimeout  time.Duration
}

// NLU providers understood by botengine.NewNLUClient.
const (
	ProviderDialogflow = "dialogflow"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
)

type NLUConfig struct {
	Provider     string
	LanguageCode string

	// Dialogflow
	ProjectID   string
	ClientEmail string
	PrivateKey  string
	Endpoint    string

	// LLM providers
	APIKey  string
	Model   string
	BaseURL string
	// HistoryTurns bounds the conversation memory kept per session.
	HistoryTurns int
}

type ConversationConfig struct {
	MessageSpacing time.Duration
	FollowUpDelay  time.Duration
	GreetingWait   time.Duration

	FallbackText         string
	PostbackFallbackText string
	ErrorText            string
	AttachmentText       string
	GreetingTemplate     string
	GenericGreeting      string
}

type DatabaseConfig struct {
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type WorkerPoolConfig struct {
	Size              int
	QueueSize         int
	DeliverySize      int
	DeliveryQueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	debug := getEnvBool("APP_DEBUG", false)

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:     "v1.0.0",
		Port:        getEnv("APP_PORT", getEnv("PORT", "5000")),
		Debug:       debug,
		Environment: getEnv("APP_ENV", "development"),
		BasicAuth:   basicAuth,
		BasePath:    getEnv("APP_BASE_PATH", ""),
		ServerID:    getEnv("SERVER_ID", ""),
	}

	msgCfg := MessengerConfig{
		PageToken:       getEnv("FB_PAGE_TOKEN", ""),
		VerifyToken:     getEnv("FB_VERIFY_TOKEN", ""),
		AppSecret:       getEnv("FB_APP_SECRET", ""),
		AppID:           getEnv("FB_APP_ID", ""),
		GraphAPIBaseURL: getEnv("FB_GRAPH_API_URL", "https://graph.facebook.com"),
		GraphAPIVersion: getEnv("FB_GRAPH_API_VERSION", "v3.1"),
		RequestTimeout:  getEnvDuration("FB_REQUEST_TIMEOUT_MS", 10*time.Second),
	}

	nluCfg := NLUConfig{
		Provider:     strings.ToLower(getEnv("NLU_PROVIDER", ProviderDialogflow)),
		LanguageCode: getEnv("DF_LANGUAGE_CODE", "en"),
		ProjectID:    getEnv("GOOGLE_PROJECT_ID", ""),
		ClientEmail:  getEnv("GOOGLE_CLIENT_EMAIL", ""),
		PrivateKey:   normalizePrivateKey(getEnv("GOOGLE_PRIVATE_KEY", "")),
		Endpoint:     getEnv("DF_ENDPOINT", "https://dialogflow.googleapis.com"),
		APIKey:       getEnv("NLU_API_KEY", ""),
		Model:        getEnv("NLU_MODEL", ""),
		BaseURL:      getEnv("NLU_BASE_URL", ""),
		HistoryTurns: getEnvInt("NLU_HISTORY_TURNS", 20),
	}

	convCfg := ConversationConfig{
		MessageSpacing:       getEnvDuration("CONVERSATION_MESSAGE_SPACING_MS", 1100*time.Millisecond),
		FollowUpDelay:        getEnvDuration("CONVERSATION_FOLLOWUP_DELAY_MS", 3000*time.Millisecond),
		GreetingWait:         getEnvDuration("CONVERSATION_GREETING_WAIT_MS", 2000*time.Millisecond),
		FallbackText:         getEnv("CONVERSATION_FALLBACK_TEXT", "Hi. I'm not sure I understand. Please try again."),
		PostbackFallbackText: getEnv("CONVERSATION_POSTBACK_FALLBACK_TEXT", "What can I help you with?"),
		ErrorText:            getEnv("CONVERSATION_ERROR_TEXT", "Sorry, something went wrong on my side. Please try again in a moment."),
		AttachmentText:       getEnv("CONVERSATION_ATTACHMENT_TEXT", "Attachment received. Thank you."),
		GreetingTemplate:     getEnv("CONVERSATION_GREETING_TEMPLATE", "Hi %s! I can answer most things - what can I help you with?"),
		GenericGreeting:      getEnv("CONVERSATION_GENERIC_GREETING", "Hi there! I can answer most things - what can I help you with?"),
	}

	dbCfg := DatabaseConfig{
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "azrelay:"),
	}

	cfg := &Config{
		App:          appCfg,
		Messenger:    msgCfg,
		NLU:          nluCfg,
		Conversation: convCfg,
		Database:     dbCfg,
		WorkerPool: WorkerPoolConfig{
			Size:              getEnvInt("MESSAGE_WORKER_POOL_SIZE", 20),
			QueueSize:         getEnvInt("MESSAGE_WORKER_QUEUE_SIZE", 1000),
			DeliverySize:      getEnvInt("DELIVERY_WORKER_POOL_SIZE", 10),
			DeliveryQueueSize: getEnvInt("DELIVERY_WORKER_QUEUE_SIZE", 1000),
		},
	}

	Global = cfg
	return cfg, nil
}

// IsDialogflow reports whether the Dialogflow detectIntent client is selected.
func (c NLUConfig) IsDialogflow() bool {
	return c.Provider == "" || c.Provider == ProviderDialogflow
}

// normalizePrivateKey turns the escaped "\n" sequences most env files carry
// back into real newlines so the PEM block parses.
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetAllSettings returns a map of the non-secret settings currently loaded in memory.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":                Global.App.Version,
		"app_debug":                  Global.App.Debug,
		"nlu_provider":               Global.NLU.Provider,
		"nlu_language_code":          Global.NLU.LanguageCode,
		"graph_api_version":          Global.Messenger.GraphAPIVersion,
		"conversation_spacing_ms":    Global.Conversation.MessageSpacing.Milliseconds(),
		"conversation_followup_ms":   Global.Conversation.FollowUpDelay.Milliseconds(),
		"conversation_greeting_ms":   Global.Conversation.GreetingWait.Milliseconds(),
		"valkey_enabled":             Global.Database.ValkeyEnabled,
		"message_worker_pool_size":   Global.WorkerPool.Size,
		"delivery_worker_pool_size":  Global.WorkerPool.DeliverySize,
		"message_worker_queue_size":  Global.WorkerPool.QueueSize,
		"delivery_worker_queue_size": Global.WorkerPool.DeliveryQueueSize,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvDuration reads an integer number of milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

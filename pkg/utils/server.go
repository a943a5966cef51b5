package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
)

// ServerID returns a name for the running relay instance, used in health
// reports and logs. Logic:
// 1. Return provided override if not empty.
// 2. Try OS Hostname.
// 3. Generate a random one.
func ServerID(override string) string {
	if override != "" {
		return override
	}

	hostname, err := os.Hostname()
	if err == nil && hostname != "" && hostname != "localhost" {
		// Cleanup hostname to be safe for keys
		cleanHost := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			return -1
		}, hostname)
		if cleanHost != "" {
			return "azrelay-" + cleanHost
		}
	}

	randomPart := make([]byte, 4)
	_, _ = rand.Read(randomPart)
	return "azrelay-" + hex.EncodeToString(randomPart)
}

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file if it exists.
// Variables already present in the environment are not overwritten.
func LoadEnv(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		// .env file is optional
		return nil
	}
	return godotenv.Load(filename)
}

// GetRPCEndpoints returns RPC endpoints from environment or nil.
func GetRPCEndpoints() []string {
	envEndpoints := os.Getenv("RPC_ENDPOINTS")
	if envEndpoints == "" {
		return nil
	}

	endpoints := strings.Split(envEndpoints, ",")
	result := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		trimmed := strings.TrimSpace(endpoint)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// GetWSEndpoint returns the WebSocket endpoint for account subscriptions.
func GetWSEndpoint() string {
	return os.Getenv("WS_ENDPOINT")
}

// GetAPIBaseURL returns the pool catalog base URL or its public default.
func GetAPIBaseURL() string {
	if url := os.Getenv("API_BASE_URL"); url != "" {
		return url
	}
	return "https://api-v3.raydium.io"
}

// GetJitoEndpoint returns the block-engine URL for bundle submission,
// empty when bundles are disabled.
func GetJitoEndpoint() string {
	return os.Getenv("JITO_ENDPOINT")
}

// GetKeypairPath returns the path to the signing keypair file.
func GetKeypairPath() string {
	return os.Getenv("KEYPAIR_PATH")
}

// GetRPCRateLimit returns the per-endpoint request rate limit in
// requests per second, defaulting to 10.
func GetRPCRateLimit() int {
	if v := os.Getenv("RPC_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 10
}

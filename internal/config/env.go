package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome       = "WALLETBRIDGE_HOME"
	EnvAllowList  = "WALLETBRIDGE_ALLOW_LIST"
	EnvMainnetRPC = "WALLETBRIDGE_MAINNET_RPC"
	EnvDevnetRPC  = "WALLETBRIDGE_DEVNET_RPC"
	EnvLogLevel   = "WALLETBRIDGE_LOG_LEVEL"
	EnvAnalytics  = "WALLETBRIDGE_ANALYTICS"
)

// ApplyEnvironment applies environment variable overrides to the
// configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvAllowList); v != "" {
		parts := strings.Split(v, ",")
		names := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				names = append(names, trimmed)
			}
		}
		cfg.AllowList = names
	}

	if v := os.Getenv(EnvMainnetRPC); v != "" {
		cfg.Networks.Mainnet.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvDevnetRPC); v != "" {
		cfg.Networks.Devnet.RPC = SanitizeURL(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvAnalytics); v != "" {
		cfg.Analytics.Enabled = parseBool(v)
	}
}

// SanitizeURL strips whitespace and anything a URL cannot carry from an
// endpoint override.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}

// parseBool parses common truthy spellings, defaulting to false.
func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return b
}

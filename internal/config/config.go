// Package config provides configuration management for walletbridge.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the bridge configuration.
type Config struct {
	Version     int               `yaml:"version"`
	Home        string            `yaml:"home"`
	AllowList   []string          `yaml:"allow_list,omitempty"`
	Networks    NetworksConfig    `yaml:"networks"`
	Detection   DetectionConfig   `yaml:"detection"`
	NameService NameServiceConfig `yaml:"name_service"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// NetworksConfig defines per-network endpoints.
type NetworksConfig struct {
	Mainnet NetworkConfig `yaml:"mainnet"`
	Testnet NetworkConfig `yaml:"testnet"`
	Devnet  NetworkConfig `yaml:"devnet"`
	Local   NetworkConfig `yaml:"local"`
}

// NetworkConfig defines one network's endpoints.
type NetworkConfig struct {
	RPC string `yaml:"rpc"`
}

// DetectionConfig defines the legacy-wallet readiness poll schedule.
type DetectionConfig struct {
	Attempts   int `yaml:"attempts"`
	IntervalMS int `yaml:"interval_ms"`
}

// Interval returns the poll interval as a duration.
func (d DetectionConfig) Interval() time.Duration {
	return time.Duration(d.IntervalMS) * time.Millisecond
}

// NameServiceConfig defines name-service API endpoints per network that
// supports alias resolution.
type NameServiceConfig struct {
	MainnetAPI string `yaml:"mainnet_api"`
	TestnetAPI string `yaml:"testnet_api"`
}

// AnalyticsConfig defines analytics settings.
type AnalyticsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// StorePath returns the default persisted-store file path.
func StorePath(home string) string {
	return filepath.Join(home, "state.json")
}

// DefaultHome returns the default walletbridge home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletbridge"
	}
	return filepath.Join(home, ".walletbridge")
}

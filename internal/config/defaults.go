package config

// Default public fullnode endpoints; none require an API key.
const (
	DefaultMainnetRPC = "https://fullnode.mainnet.example.com/v1"
	DefaultTestnetRPC = "https://fullnode.testnet.example.com/v1"
	DefaultDevnetRPC  = "https://fullnode.devnet.example.com/v1"
	DefaultLocalRPC   = "http://127.0.0.1:8080/v1"
)

// Default name-service API endpoints.
const (
	DefaultMainnetNameAPI = "https://api.names.example.com"
	DefaultTestnetNameAPI = "https://api.testnet.names.example.com"
)

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.walletbridge",
		Networks: NetworksConfig{
			Mainnet: NetworkConfig{RPC: DefaultMainnetRPC},
			Testnet: NetworkConfig{RPC: DefaultTestnetRPC},
			Devnet:  NetworkConfig{RPC: DefaultDevnetRPC},
			Local:   NetworkConfig{RPC: DefaultLocalRPC},
		},
		Detection: DetectionConfig{
			Attempts:   5,
			IntervalMS: 500,
		},
		NameService: NameServiceConfig{
			MainnetAPI: DefaultMainnetNameAPI,
			TestnetAPI: DefaultTestnetNameAPI,
		},
		Analytics: AnalyticsConfig{Enabled: true},
		Logging:   LoggingConfig{Level: "error"},
	}
}

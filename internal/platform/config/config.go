package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Primary (official) provider
	OXRAPIKey  string
	OXRBaseURL string

	// Secondary (alternative-market) provider
	AmbitoBaseURL string

	// Shared provider HTTP timeout; no provider call blocks longer than this.
	ProviderTimeout time.Duration

	// Refresh trigger
	RefreshCron    string
	RefreshOnStart bool

	// HTTP surface
	RateLimit        string
	CORSAllowOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("OXR_API_KEY", "")
	viper.SetDefault("OXR_BASE_URL", "https://openexchangerates.org/api")
	viper.SetDefault("AMBITO_BASE_URL", "https://mercados.ambito.com/dolar/informal/historico-general")
	viper.SetDefault("PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("REFRESH_CRON", "0 0 * * *")
	viper.SetDefault("REFRESH_ON_START", true)
	viper.SetDefault("RATE_LIMIT", "60-M")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Falling back to the in-memory store.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.OXRAPIKey = viper.GetString("OXR_API_KEY")
	if cfg.OXRAPIKey == "" {
		log.Println("Warning: OXR_API_KEY environment variable not set. Official rate backfill will be unavailable.")
	}
	cfg.OXRBaseURL = viper.GetString("OXR_BASE_URL")
	cfg.AmbitoBaseURL = viper.GetString("AMBITO_BASE_URL")

	providerTimeoutStr := viper.GetString("PROVIDER_TIMEOUT")
	providerTimeout, err := time.ParseDuration(providerTimeoutStr)
	if err != nil {
		providerTimeout = 10 * time.Second
		log.Printf("Warning: Invalid value for PROVIDER_TIMEOUT ('%s'). Defaulting to %s.\n", providerTimeoutStr, providerTimeout)
	}
	cfg.ProviderTimeout = providerTimeout

	cfg.RefreshCron = viper.GetString("REFRESH_CRON")
	cfg.RefreshOnStart = viper.GetBool("REFRESH_ON_START")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowOrigins = viper.GetStringSlice("CORS_ALLOW_ORIGINS")

	return cfg, nil
}

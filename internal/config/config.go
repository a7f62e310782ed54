/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables, with an
 * optional .env file for local development.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the sync-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	JWKSURL              string `mapstructure:"JWKS_URL"`
	PlaidBaseURL         string `mapstructure:"PLAID_BASE_URL"`
	PlaidClientID        string `mapstructure:"PLAID_CLIENT_ID"`
	PlaidSecret          string `mapstructure:"PLAID_SECRET"`
	TellerBaseURL        string `mapstructure:"TELLER_BASE_URL"`
	AIBaseURL            string `mapstructure:"AI_BASE_URL"`
	AIAPIKey             string `mapstructure:"AI_API_KEY"`
	AIModel              string `mapstructure:"AI_MODEL"`
	SyncRateLimitPerHour int    `mapstructure:"SYNC_RATE_LIMIT_PER_HOUR"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8084")
	viper.SetDefault("PLAID_BASE_URL", "https://sandbox.plaid.com")
	viper.SetDefault("TELLER_BASE_URL", "https://api.teller.io")
	viper.SetDefault("AI_BASE_URL", "")
	viper.SetDefault("AI_MODEL", "")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "syncsvc:rate_limit")
	viper.SetDefault("SYNC_RATE_LIMIT_PER_HOUR", 12)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("PLAID_BASE_URL")
	_ = viper.BindEnv("PLAID_CLIENT_ID")
	_ = viper.BindEnv("PLAID_SECRET")
	_ = viper.BindEnv("TELLER_BASE_URL")
	_ = viper.BindEnv("AI_BASE_URL", "AI_BASE_URL", "OPENAI_BASE_URL")
	_ = viper.BindEnv("AI_API_KEY", "AI_API_KEY", "OPENAI_API_KEY")
	_ = viper.BindEnv("AI_MODEL", "AI_MODEL", "OPENAI_MODEL")
	_ = viper.BindEnv("SYNC_RATE_LIMIT_PER_HOUR")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "syncsvc:rate_limit"
	}
	config.AIAPIKey = strings.TrimSpace(config.AIAPIKey)
	config.AIBaseURL = strings.TrimSpace(config.AIBaseURL)

	if config.SyncRateLimitPerHour < 0 {
		log.Printf("level=warn component=config msg=\"negative sync rate limit configured; disabling limiter\" limit=%d", config.SyncRateLimitPerHour)
		config.SyncRateLimitPerHour = 0
	}

	return
}

package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "SERVER_PORT")
	unsetEnvWithCleanup(t, "PORT")
	unsetEnvWithCleanup(t, "PLAID_BASE_URL")
	unsetEnvWithCleanup(t, "TELLER_BASE_URL")
	unsetEnvWithCleanup(t, "SYNC_RATE_LIMIT_PER_HOUR")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8084" {
		t.Fatalf("expected default ServerPort 8084, got %q", cfg.ServerPort)
	}
	if cfg.PlaidBaseURL != "https://sandbox.plaid.com" {
		t.Fatalf("expected default PlaidBaseURL, got %q", cfg.PlaidBaseURL)
	}
	if cfg.TellerBaseURL != "https://api.teller.io" {
		t.Fatalf("expected default TellerBaseURL, got %q", cfg.TellerBaseURL)
	}
	if cfg.SyncRateLimitPerHour != 12 {
		t.Fatalf("expected default SyncRateLimitPerHour 12, got %d", cfg.SyncRateLimitPerHour)
	}
	if cfg.RedisRateLimitPrefix != "syncsvc:rate_limit" {
		t.Fatalf("expected default redis prefix, got %q", cfg.RedisRateLimitPrefix)
	}
}

func TestLoadConfig_UsesOpenAIAliases(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	unsetEnvWithCleanup(t, "AI_API_KEY")
	unsetEnvWithCleanup(t, "AI_BASE_URL")
	setEnvWithCleanup(t, "OPENAI_API_KEY", "alias-key")
	setEnvWithCleanup(t, "OPENAI_BASE_URL", "https://ai.example.com/v1")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.AIAPIKey != "alias-key" {
		t.Fatalf("expected AIAPIKey from alias env var, got %q", cfg.AIAPIKey)
	}
	if cfg.AIBaseURL != "https://ai.example.com/v1" {
		t.Fatalf("expected AIBaseURL from alias env var, got %q", cfg.AIBaseURL)
	}
}

func TestLoadConfig_PortOverridesServerPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8084")
	setEnvWithCleanup(t, "PORT", "9000")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9000" {
		t.Fatalf("expected PORT to override ServerPort, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_NegativeRateLimitDisablesLimiter(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SYNC_RATE_LIMIT_PER_HOUR", "-5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SyncRateLimitPerHour != 0 {
		t.Fatalf("expected negative rate limit coerced to 0, got %d", cfg.SyncRateLimitPerHour)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

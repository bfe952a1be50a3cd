package config

import (
	"context"
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Save original environment
	originalEnv := make(map[string]string)
	envVars := []string{
		"PORT",
		"ENVIRONMENT",
		"GIN_MODE",
		"LOG_LEVEL",
		"MAX_REQUEST_BYTES",
		"JOURNAL_ENABLED",
		"DB_PATH",
		"MIGRATIONS_PATH",
		"WEBHOOK_TIMEOUT_SECONDS",
		"WEBHOOK_MAX_RESPONSE_BYTES",
		"RATE_LIMIT_RPS",
		"RATE_LIMIT_BURST",
	}

	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		os.Unsetenv(key)
	}

	// Restore environment after test
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	tests := []struct {
		name    string
		envVars map[string]string
		check   func(*Config)
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			check: func(config *Config) {
				if config.Port != "8081" {
					t.Errorf("Expected default port 8081, got %s", config.Port)
				}
				if config.GinMode != "debug" {
					t.Errorf("Expected default gin mode debug, got %s", config.GinMode)
				}
				if config.LogLevel != "info" {
					t.Errorf("Expected default log level info, got %s", config.LogLevel)
				}
				if !config.Journal.Enabled {
					t.Error("Expected journal enabled by default")
				}
				if config.Journal.DatabasePath != "./data/relay.db" {
					t.Errorf("Expected default database path, got %s", config.Journal.DatabasePath)
				}
				if config.Webhook.TimeoutSeconds != 10 {
					t.Errorf("Expected default webhook timeout 10, got %d", config.Webhook.TimeoutSeconds)
				}
				if config.Webhook.MaxResponseBytes != 65536 {
					t.Errorf("Expected default response cap 65536, got %d", config.Webhook.MaxResponseBytes)
				}
				if config.RateLimit.RequestsPerSecond != 10.0 {
					t.Errorf("Expected default rate limit 10, got %f", config.RateLimit.RequestsPerSecond)
				}
				if config.RateLimit.Burst != 20 {
					t.Errorf("Expected default burst 20, got %d", config.RateLimit.Burst)
				}
				if config.MaxRequestBytes != 1048576 {
					t.Errorf("Expected default request cap 1048576, got %d", config.MaxRequestBytes)
				}
			},
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"PORT":                       "9090",
				"GIN_MODE":                   "release",
				"LOG_LEVEL":                  "warn",
				"JOURNAL_ENABLED":            "false",
				"DB_PATH":                    "/tmp/relay-test.db",
				"WEBHOOK_TIMEOUT_SECONDS":    "5",
				"WEBHOOK_MAX_RESPONSE_BYTES": "1024",
				"RATE_LIMIT_RPS":             "2.5",
				"RATE_LIMIT_BURST":           "5",
				"MAX_REQUEST_BYTES":          "4096",
			},
			check: func(config *Config) {
				if config.Port != "9090" {
					t.Errorf("Expected port 9090, got %s", config.Port)
				}
				if config.GinMode != "release" {
					t.Errorf("Expected gin mode release, got %s", config.GinMode)
				}
				if config.LogLevel != "warn" {
					t.Errorf("Expected log level warn, got %s", config.LogLevel)
				}
				if config.Journal.Enabled {
					t.Error("Expected journal disabled")
				}
				if config.Journal.DatabasePath != "/tmp/relay-test.db" {
					t.Errorf("Expected custom database path, got %s", config.Journal.DatabasePath)
				}
				if config.Webhook.TimeoutSeconds != 5 {
					t.Errorf("Expected webhook timeout 5, got %d", config.Webhook.TimeoutSeconds)
				}
				if config.Webhook.MaxResponseBytes != 1024 {
					t.Errorf("Expected response cap 1024, got %d", config.Webhook.MaxResponseBytes)
				}
				if config.RateLimit.RequestsPerSecond != 2.5 {
					t.Errorf("Expected rate limit 2.5, got %f", config.RateLimit.RequestsPerSecond)
				}
				if config.RateLimit.Burst != 5 {
					t.Errorf("Expected burst 5, got %d", config.RateLimit.Burst)
				}
				if config.MaxRequestBytes != 4096 {
					t.Errorf("Expected request cap 4096, got %d", config.MaxRequestBytes)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				os.Unsetenv(key)
			}
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}

			config, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}

			tt.check(config)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	os.Setenv("RELAY_TEST_STRING", "value")
	os.Setenv("RELAY_TEST_INT", "42")
	os.Setenv("RELAY_TEST_BOOL", "true")
	os.Setenv("RELAY_TEST_BAD_INT", "not-a-number")
	defer func() {
		os.Unsetenv("RELAY_TEST_STRING")
		os.Unsetenv("RELAY_TEST_INT")
		os.Unsetenv("RELAY_TEST_BOOL")
		os.Unsetenv("RELAY_TEST_BAD_INT")
	}()

	if got := GetEnv("RELAY_TEST_STRING", "fallback"); got != "value" {
		t.Errorf("GetEnv() = %s, want value", got)
	}
	if got := GetEnv("RELAY_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetEnv() = %s, want fallback", got)
	}

	if got := GetEnvAsInt("RELAY_TEST_INT", 7); got != 42 {
		t.Errorf("GetEnvAsInt() = %d, want 42", got)
	}
	if got := GetEnvAsInt("RELAY_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("GetEnvAsInt() = %d, want fallback 7", got)
	}

	if got := GetEnvAsBool("RELAY_TEST_BOOL", false); got != true {
		t.Errorf("GetEnvAsBool() = %v, want true", got)
	}
	if got := GetEnvAsBool("RELAY_TEST_MISSING", true); got != true {
		t.Errorf("GetEnvAsBool() = %v, want fallback true", got)
	}
}

func TestAdaptConfigForServerlessOutsideLambda(t *testing.T) {
	if IsServerlessMode() {
		t.Skip("running inside Lambda")
	}

	config := &Config{
		GinMode: "debug",
		Journal: JournalConfig{Enabled: true, DatabasePath: "./data/relay.db"},
	}

	adapted := AdaptConfigForServerless(context.Background(), config)

	if !adapted.Journal.Enabled {
		t.Error("Journal should stay enabled outside Lambda")
	}
	if adapted.GinMode != "debug" {
		t.Errorf("GinMode = %s, want debug outside Lambda", adapted.GinMode)
	}
	if GetDeploymentMode() != "server" {
		t.Errorf("GetDeploymentMode() = %s, want server", GetDeploymentMode())
	}
}

package config

import (
	"errors"
	"testing"
	"time"
)

// validBaseConfig returns a Config with all required fields set.
func validBaseConfig() *Config {
	return &Config{
		Provider:              ProviderGemini,
		ModelName:             "gemini-2.5-flash",
		Temperature:           0.2,
		MaxTokens:             4096,
		EmbedderModel:         DefaultGeminiEmbedderModel,
		RAGTopK:               4,
		PostgresHost:          "localhost",
		PostgresPort:          5432,
		PostgresUser:          "fdassist",
		PostgresPassword:      "test_password",
		PostgresDBName:        "fdassist",
		PostgresSSLMode:       "disable",
		CybersecurityKeywords: defaultCybersecurityKeywords,
		RegulatoryKeywords:    defaultRegulatoryKeywords,
		MaxSteps:              DefaultMaxSteps,
		WordDelay:             DefaultWordDelay,
		ChunkSize:             DefaultChunkSize,
		ChunkOverlap:          DefaultChunkOverlap,
		MaxUploadBytes:        DefaultMaxUploadBytes,
		ServerAddr:            "localhost:8080",
	}
}

func TestValidateSuccess(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-api-key")

	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error with valid config: %v", err)
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg := validBaseConfig()
	err := cfg.Validate()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Validate() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestValidateNilConfig(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() error = %v, want ErrConfigNil", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"empty model name", func(c *Config) { c.ModelName = "" }, ErrInvalidModelName},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"temperature negative", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"zero max tokens", func(c *Config) { c.MaxTokens = 0 }, ErrInvalidMaxTokens},
		{"empty embedder", func(c *Config) { c.EmbedderModel = "" }, ErrInvalidEmbedderModel},
		{"zero top-k", func(c *Config) { c.RAGTopK = 0 }, ErrInvalidRAGTopK},
		{"top-k too large", func(c *Config) { c.RAGTopK = 21 }, ErrInvalidRAGTopK},
		{"empty host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"port too large", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"port zero", func(c *Config) { c.PostgresPort = 0 }, ErrInvalidPostgresPort},
		{"empty db name", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
		{"empty password", func(c *Config) { c.PostgresPassword = "" }, ErrInvalidPostgresPassword},
		{"short password", func(c *Config) { c.PostgresPassword = "short" }, ErrInvalidPostgresPassword},
		{"deprecated ssl mode", func(c *Config) { c.PostgresSSLMode = "prefer" }, ErrInvalidPostgresSSLMode},
		{"empty ssl mode", func(c *Config) { c.PostgresSSLMode = "" }, ErrInvalidPostgresSSLMode},
		{"zero max steps", func(c *Config) { c.MaxSteps = 0 }, ErrInvalidMaxSteps},
		{"max steps too large", func(c *Config) { c.MaxSteps = 101 }, ErrInvalidMaxSteps},
		{"negative word delay", func(c *Config) { c.WordDelay = -time.Millisecond }, ErrInvalidWordDelay},
		{"word delay too long", func(c *Config) { c.WordDelay = 2 * time.Second }, ErrInvalidWordDelay},
		{"negative whitespace delay", func(c *Config) { c.WhitespaceDelay = -time.Millisecond }, ErrInvalidWhitespaceDelay},
		{"whitespace delay too long", func(c *Config) { c.WhitespaceDelay = 2 * time.Second }, ErrInvalidWhitespaceDelay},
		{"chunk size too small", func(c *Config) { c.ChunkSize = 50 }, ErrInvalidChunking},
		{"overlap not below chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }, ErrInvalidChunking},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }, ErrInvalidChunking},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, ErrInvalidUploadLimit},
		{"no cybersecurity keywords", func(c *Config) { c.CybersecurityKeywords = nil }, ErrEmptyKeywordSet},
		{"no regulatory keywords", func(c *Config) { c.RegulatoryKeywords = nil }, ErrEmptyKeywordSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "test-api-key")

			cfg := validBaseConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateZeroWordDelayAllowed(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-api-key")

	cfg := validBaseConfig()
	cfg.WordDelay = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with zero word delay: %v", err)
	}
}

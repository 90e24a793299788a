// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.fdassist/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - AI: provider, model selection, temperature, max tokens, embedder
//   - Storage: PostgreSQL connection (see storage.go)
//   - Routing: keyword lists for the specialist classifier, step ceiling
//   - Streaming: word delay for the token pacer
//   - Documents: chunking parameters and upload size ceiling
//
// Security: sensitive data (passwords) is never logged; the config directory
// uses 0750 permissions.
//
// Error Handling:
//   - Sentinel errors for checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidRAGTopK indicates the retrieval top-k is out of range.
	ErrInvalidRAGTopK = errors.New("invalid RAG top-k")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresPassword indicates the PostgreSQL password is invalid.
	ErrInvalidPostgresPassword = errors.New("invalid PostgreSQL password")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidMaxSteps indicates the orchestration step ceiling is out of range.
	ErrInvalidMaxSteps = errors.New("invalid max steps")

	// ErrInvalidWordDelay indicates the streaming word delay is out of range.
	ErrInvalidWordDelay = errors.New("invalid word delay")

	// ErrInvalidWhitespaceDelay indicates the streaming whitespace delay is out of range.
	ErrInvalidWhitespaceDelay = errors.New("invalid whitespace delay")

	// ErrInvalidChunking indicates the chunk size/overlap pair is inconsistent.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidUploadLimit indicates the upload size ceiling is out of range.
	ErrInvalidUploadLimit = errors.New("invalid upload limit")

	// ErrEmptyKeywordSet indicates a routing keyword list is empty.
	ErrEmptyKeywordSet = errors.New("empty keyword set")
)

const (
	// DefaultGeminiEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 supports truncation to 768 dimensions via
	// OutputDimensionality; the pgvector schema uses 768 (knowledge.VectorDimension).
	DefaultGeminiEmbedderModel = "gemini-embedding-001"

	// DefaultMaxSteps bounds a single orchestration run. A run that reaches
	// the ceiling is compiled from whatever specialist output exists.
	DefaultMaxSteps = 15

	// DefaultWordDelay is the pause between streamed words.
	DefaultWordDelay = 50 * time.Millisecond

	// DefaultWhitespaceDelay is the pause after streamed whitespace runs.
	// Zero emits whitespace immediately.
	DefaultWhitespaceDelay = 0 * time.Millisecond

	// DefaultChunkSize is the target chunk length in characters for indexing.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the character overlap between adjacent chunks.
	DefaultChunkOverlap = 80

	// DefaultMaxUploadBytes caps a single uploaded document (25 MiB).
	DefaultMaxUploadBytes = 25 << 20
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini   = "gemini"
	ProviderGoogleAI = "googleai"
)

// defaultCybersecurityKeywords matches questions for the cybersecurity specialist.
var defaultCybersecurityKeywords = []string{
	"cybersecurity", "soup", "vulnerability", "cve", "cwe", "security",
	"threat", "malware", "encryption", "penetration testing",
	"authentication", "authorization",
}

// defaultRegulatoryKeywords matches questions for the regulatory specialist.
var defaultRegulatoryKeywords = []string{
	"510k", "510(k)", "predicate device", "pma", "premarket approval",
	"regulatory", "submission", "fda approval", "compliance", "guidance", "qsr",
}

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (passwords, API keys), update MarshalJSON.
type Config struct {
	// AI provider and model configuration
	Provider    string  `mapstructure:"provider" json:"provider"`
	ModelName   string  `mapstructure:"model_name" json:"model_name"`
	Temperature float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// RAG configuration
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	RAGTopK       int    `mapstructure:"rag_top_k" json:"rag_top_k"`

	// Routing configuration. The keyword lists are matched case-insensitively
	// against the question text; ties go to cybersecurity.
	CybersecurityKeywords []string `mapstructure:"cybersecurity_keywords" json:"cybersecurity_keywords"`
	RegulatoryKeywords    []string `mapstructure:"regulatory_keywords" json:"regulatory_keywords"`
	MaxSteps              int      `mapstructure:"max_steps" json:"max_steps"`

	// Streaming configuration
	WordDelay       time.Duration `mapstructure:"word_delay" json:"word_delay"`
	WhitespaceDelay time.Duration `mapstructure:"whitespace_delay" json:"whitespace_delay"`

	// Document configuration
	ChunkSize      int   `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap   int   `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`

	// Server configuration (serve mode only)
	ServerAddr  string   `mapstructure:"server_addr" json:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".fdassist")

	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".") // Also support current directory

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use default values
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides the individual postgres_* settings
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults
	viper.SetDefault("provider", ProviderGemini)
	viper.SetDefault("model_name", "gemini-2.5-flash")
	viper.SetDefault("temperature", 0.2)
	viper.SetDefault("max_tokens", 4096)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "fdassist")
	viper.SetDefault("postgres_password", "fdassist_dev_password")
	viper.SetDefault("postgres_db_name", "fdassist")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// RAG defaults
	viper.SetDefault("embedder_model", DefaultGeminiEmbedderModel)
	viper.SetDefault("rag_top_k", 4)

	// Routing defaults
	viper.SetDefault("cybersecurity_keywords", defaultCybersecurityKeywords)
	viper.SetDefault("regulatory_keywords", defaultRegulatoryKeywords)
	viper.SetDefault("max_steps", DefaultMaxSteps)

	// Streaming defaults
	viper.SetDefault("word_delay", DefaultWordDelay)
	viper.SetDefault("whitespace_delay", DefaultWhitespaceDelay)

	// Document defaults
	viper.SetDefault("chunk_size", DefaultChunkSize)
	viper.SetDefault("chunk_overlap", DefaultChunkOverlap)
	viper.SetDefault("max_upload_bytes", DefaultMaxUploadBytes)

	// Server defaults
	viper.SetDefault("server_addr", "localhost:8080")
	viper.SetDefault("cors_origins", []string{"http://localhost:4200"})
}

// bindEnvVariables binds environment variable overrides explicitly.
// GEMINI_API_KEY is read directly by Genkit, not via Viper; Validate only
// checks its presence.
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a runtime error
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("provider", "FDASSIST_PROVIDER")
	mustBind("model_name", "FDASSIST_MODEL_NAME")
	mustBind("embedder_model", "FDASSIST_EMBEDDER_MODEL")
	mustBind("server_addr", "FDASSIST_SERVER_ADDR")
	mustBind("cors_origins", "FDASSIST_CORS_ORIGINS")
	mustBind("max_steps", "FDASSIST_MAX_STEPS")
	mustBind("word_delay", "FDASSIST_WORD_DELAY")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) avoid substring matching against real secrets.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 characters or fewer are fully masked to prevent substring
// matching; longer secrets keep the first and last 2 characters for debug
// utility. This defends against accidental logging, nothing more.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// FullModelName returns the provider-qualified model name for Genkit.
// Example: "googleai/gemini-2.5-flash". If ModelName already contains a "/",
// it is returned as-is.
func (c *Config) FullModelName() string {
	if strings.Contains(c.ModelName, "/") {
		return c.ModelName
	}
	return ProviderGoogleAI + "/" + c.ModelName
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

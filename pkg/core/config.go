package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mindhaven/recall-go/pkg/retrieval"
)

// Config contains the complete configuration for a Recall client.
//
// It includes settings for:
//   - Memory store (SQLite, PostgreSQL, or MySQL)
//   - Retrieval tuning (scorer weights, selection threshold, result cap)
//   - Generative AI collaborator (consumed by the serving layer, not by the
//     client itself)
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./recall.db",
//	        },
//	    },
//	}
type Config struct {
	// Store contains memory store configuration.
	Store StoreConfig `json:"store"`

	// Retrieval contains retrieval tuning (optional; zero values fall back
	// to the reference defaults).
	Retrieval RetrievalConfig `json:"retrieval,omitempty"`

	// GenAI contains generative AI provider configuration (optional). The
	// core client never calls the generative service; this section is
	// consumed by the serving layer that assembles prompts.
	GenAI GenAIConfig `json:"genai,omitempty"`
}

// StoreConfig contains configuration for the memory store.
//
// Supported providers: sqlite, postgres, mysql
//
// Example:
//
//	storeConfig := core.StoreConfig{
//	    Provider: "sqlite",
//	    Config: map[string]interface{}{
//	        "db_path":    "./recall.db",
//	        "table_name": "memories",
//	    },
//	}
type StoreConfig struct {
	// Provider is the memory store provider name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	Config map[string]interface{} `json:"config"`
}

// RetrievalConfig contains tuning for the retrieval core.
//
// Every knob was a magic constant in the original product; they are exposed
// here so deployments can tune them. Zero values mean "use the reference
// default" (see the retrieval package constants).
type RetrievalConfig struct {
	// ExactMatchWeight is the bonus per query token found verbatim in a
	// memory. Default: 10.
	ExactMatchWeight float64 `json:"exact_match_weight,omitempty"`

	// PartialMatchWeight is the bonus per query token found only as a
	// substring. Default: 4.
	PartialMatchWeight float64 `json:"partial_match_weight,omitempty"`

	// ContextMatchWeight is the bonus per conversation-window token found in
	// a memory. Default: 3.
	ContextMatchWeight float64 `json:"context_match_weight,omitempty"`

	// RecencyHorizonDays is the age at which the recency contribution decays
	// to zero. Default: 5.
	RecencyHorizonDays float64 `json:"recency_horizon_days,omitempty"`

	// CoreBoost is the flat bonus for core memories. Default: 6.
	CoreBoost float64 `json:"core_boost,omitempty"`

	// Threshold is the minimum score for selection. Default: 5.
	Threshold float64 `json:"threshold,omitempty"`

	// MaxResults bounds the context block. Default: 6.
	MaxResults int `json:"max_results,omitempty"`

	// WindowTurns is the number of trailing conversation turns joined into
	// the conversation window. Default: 5.
	WindowTurns int `json:"window_turns,omitempty"`

	// MinSignificantLength is the minimum content length (in runes) for the
	// Significant ingestion gate. Default: 20.
	MinSignificantLength int `json:"min_significant_length,omitempty"`
}

// GenAIConfig contains configuration for the generative AI collaborator.
//
// Any OpenAI-compatible endpoint works through BaseURL.
type GenAIConfig struct {
	// Provider is the generative AI provider name (openai).
	Provider string `json:"provider"`

	// APIKey is the API key for the provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (e.g., "gpt-4o-mini").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses the provider
	// default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// DefaultMinSignificantLength is the default content length (in runes) above
// which a chat statement is considered worth remembering.
const DefaultMinSignificantLength = 20

// selectorConfig converts the retrieval section into a retrieval.SelectorConfig.
func (rc RetrievalConfig) selectorConfig() retrieval.SelectorConfig {
	weights := retrieval.DefaultWeights()
	if rc.ExactMatchWeight != 0 {
		weights.ExactMatch = rc.ExactMatchWeight
	}
	if rc.PartialMatchWeight != 0 {
		weights.PartialMatch = rc.PartialMatchWeight
	}
	if rc.ContextMatchWeight != 0 {
		weights.ContextMatch = rc.ContextMatchWeight
	}
	if rc.RecencyHorizonDays != 0 {
		weights.RecencyHorizonDays = rc.RecencyHorizonDays
	}
	if rc.CoreBoost != 0 {
		weights.CoreBoost = rc.CoreBoost
	}
	return retrieval.SelectorConfig{
		Weights:    &weights,
		Threshold:  rc.Threshold,
		MaxResults: rc.MaxResults,
	}
}

// minSignificantLength returns the configured ingestion gate length.
func (rc RetrievalConfig) minSignificantLength() int {
	if rc.MinSignificantLength > 0 {
		return rc.MinSignificantLength
	}
	return DefaultMinSignificantLength
}

// windowTurns returns the configured conversation window size.
func (rc RetrievalConfig) windowTurns() int {
	if rc.WindowTurns > 0 {
		return rc.WindowTurns
	}
	return retrieval.DefaultWindowTurns
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, mysql; default sqlite)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//     POSTGRES_DATABASE, POSTGRES_TABLE, POSTGRES_SSLMODE
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE,
//     MYSQL_TABLE
//   - GENAI_PROVIDER, GENAI_API_KEY, GENAI_MODEL, GENAI_BASE_URL
//   - RECALL_THRESHOLD, RECALL_MAX_RESULTS, RECALL_WINDOW_TURNS,
//     RECALL_MIN_SIGNIFICANT_LENGTH
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storeConfig := make(map[string]interface{})

	switch provider {
	case "sqlite":
		storeConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./recall.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "memories"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       port,
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "recall"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "memories"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "recall"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "memories"),
		}
	}

	config := &Config{
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
		GenAI: GenAIConfig{
			Provider: getEnvOrDefault("GENAI_PROVIDER", "openai"),
			APIKey:   os.Getenv("GENAI_API_KEY"),
			Model:    getEnvOrDefault("GENAI_MODEL", "gpt-4o-mini"),
			BaseURL:  os.Getenv("GENAI_BASE_URL"),
		},
	}

	if v := os.Getenv("RECALL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Retrieval.Threshold = f
		}
	}
	if v := os.Getenv("RECALL_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Retrieval.MaxResults = n
		}
	}
	if v := os.Getenv("RECALL_WINDOW_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Retrieval.WindowTurns = n
		}
	}
	if v := os.Getenv("RECALL_MIN_SIGNIFICANT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Retrieval.MinSignificantLength = n
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRecallError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewRecallError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that the memory store provider is set. The retrieval and GenAI
// sections are optional; zero values fall back to defaults.
//
// Returns an error if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Store.Provider == "" {
		return NewRecallError("Validate", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}

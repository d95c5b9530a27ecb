// ai_config.go holds the AI provider configuration.
//
// AI settings are stored in ~/.paichat/config.json. API keys can also
// be set via environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY,
// GEMINI_API_KEY), which take precedence over the file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// AIConfig holds the AI provider selection and credentials.
type AIConfig struct {
	Provider  string          `json:"provider"` // "openai", "anthropic", "gemini", "ollama", "placeholder"
	OpenAI    OpenAIConfig    `json:"openai"`
	Anthropic AnthropicConfig `json:"anthropic"`
	Gemini    GeminiConfig    `json:"gemini"`
	Ollama    OllamaConfig    `json:"ollama"`
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// AnthropicConfig holds Anthropic-specific settings.
type AnthropicConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// GeminiConfig holds Google Gemini-specific settings.
type GeminiConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

// SchemaConfig controls how the schema description is built for prompts.
type SchemaConfig struct {
	// Schema is the PostgreSQL schema to introspect (default "public").
	Schema string `json:"schema"`

	// Tables restricts introspection to the listed tables. Empty means
	// every base table in the schema.
	Tables []string `json:"tables,omitempty"`

	// ColumnDescriptions maps "table.column" to a human description
	// merged into the schema text handed to SQL generation. Columns with
	// cryptic warehouse names (VAR2, VAR8...) are unusable without this.
	ColumnDescriptions map[string]string `json:"column_descriptions,omitempty"`
}

// AppConfig is the top-level config file structure (~/.paichat/config.json).
type AppConfig struct {
	AI     AIConfig     `json:"ai"`
	Schema SchemaConfig `json:"schema"`
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider: "placeholder",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
	}
}

// LoadAppConfig reads ~/.paichat/config.json; returns defaults if not found.
func LoadAppConfig() (*AppConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return defaultAppConfig(), nil
	}

	path := filepath.Join(homeDir, ".paichat", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultAppConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	cfg := defaultAppConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets env vars win over the config file.
func applyEnvOverrides(cfg *AppConfig) {
	if envProvider := os.Getenv("PAICHAT_AI_PROVIDER"); envProvider != "" {
		cfg.AI.Provider = envProvider
	}
	if envKey := os.Getenv("OPENAI_API_KEY"); envKey != "" {
		cfg.AI.OpenAI.APIKey = envKey
	}
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		cfg.AI.Anthropic.APIKey = envKey
	}
	if envKey := os.Getenv("GEMINI_API_KEY"); envKey != "" {
		cfg.AI.Gemini.APIKey = envKey
	}
	if envHost := os.Getenv("OLLAMA_HOST"); envHost != "" {
		cfg.AI.Ollama.Host = envHost
	}
}

// SaveAppConfig writes the config to ~/.paichat/config.json.
func SaveAppConfig(cfg *AppConfig) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	dir := filepath.Join(homeDir, ".paichat")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0600)
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		AI: DefaultAIConfig(),
		Schema: SchemaConfig{
			Schema: "public",
		},
	}
}

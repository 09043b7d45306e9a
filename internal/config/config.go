// Package config loads the services' TOML configuration, creating the file
// with defaults on first run. API credentials come from the environment, not
// the file; their absence is a handled state rather than a startup failure.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// GeminiKeyEnv names the environment variable carrying the chat model
// credential.
const GeminiKeyEnv = "GEMINI_API_KEY"

// SentimentTokenEnv names the (optional) inference API token for the
// sentiment classifier.
const SentimentTokenEnv = "HF_API_TOKEN"

type ChatConfig struct {
	Bind           string  `toml:"bind"`
	Endpoint       string  `toml:"endpoint"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	SystemPrompt   string  `toml:"system_prompt"`
}

type SentimentConfig struct {
	Bind           string `toml:"bind"`
	Endpoint       string `toml:"endpoint"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Config struct {
	LogLevel       string          `toml:"log_level"`
	LogPretty      bool            `toml:"log_pretty"`
	AllowedOrigins []string        `toml:"allowed_origins"`
	Chat           ChatConfig      `toml:"chat"`
	Sentiment      SentimentConfig `toml:"sentiment"`
}

const defaultSystemPrompt = `You are a helpful, friendly, and knowledgeable AI assistant.
You provide accurate, helpful responses while maintaining a conversational tone.
You can discuss a wide range of topics and help users with various tasks.

Key guidelines:
- Be helpful and informative
- Maintain context from previous messages in the conversation
- Ask clarifying questions when needed
- Provide step-by-step explanations for complex topics
- Be concise but thorough in your responses`

func Default() Config {
	return Config{
		LogLevel:  "info",
		LogPretty: false,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		Chat: ChatConfig{
			Bind:           ":8001",
			Endpoint:       "https://generativelanguage.googleapis.com",
			Model:          "gemini-1.5-flash",
			Temperature:    0.7,
			MaxTokens:      1000,
			TimeoutSeconds: 30,
			SystemPrompt:   defaultSystemPrompt,
		},
		Sentiment: SentimentConfig{
			Bind:           ":8000",
			Endpoint:       "https://api-inference.huggingface.co",
			Model:          "distilbert-base-uncased-finetuned-sst-2-english",
			TimeoutSeconds: 30,
		},
	}
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	config.Chat.Bind = strings.TrimSpace(config.Chat.Bind)
	config.Sentiment.Bind = strings.TrimSpace(config.Sentiment.Bind)

	if config.Chat.Bind == "" {
		config.Chat.Bind = ":8001"
	}

	if config.Sentiment.Bind == "" {
		config.Sentiment.Bind = ":8000"
	}

	return config, nil
}

// DefaultPath returns the per-user config location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return filepath.Join(".parley", "config.toml")
	}

	return filepath.Join(homeDir, ".parley", "config.toml")
}

// GeminiAPIKey reads the chat model credential from the environment.
func GeminiAPIKey() string {
	return strings.TrimSpace(os.Getenv(GeminiKeyEnv))
}

// SentimentAPIToken reads the classifier credential from the environment.
func SentimentAPIToken() string {
	return strings.TrimSpace(os.Getenv(SentimentTokenEnv))
}

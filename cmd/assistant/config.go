package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultSystemPrompt keeps answers short; the tools do the real work.
const defaultSystemPrompt = "You are a weather and time assistant. Answer with one short sentence, using the available tools for weather and local-time questions."

// FileConfig is the optional config.yaml: model selection, prompt and
// provider endpoint overrides. Everything has a working default.
type FileConfig struct {
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
	MaxToolCalls int    `yaml:"max_tool_calls"`
	Providers    struct {
		WeatherEndpoint string `yaml:"weather_endpoint"`
		TimeEndpoint    string `yaml:"time_endpoint"`
	} `yaml:"providers"`
}

// AppConfig holds all configuration for the assistant, loaded once at
// startup from the environment and the optional config file.
type AppConfig struct {
	GeminiAPIKey      string
	WeatherAPIKey     string
	GeolocationAPIKey string
	LogLevel          string
	File              FileConfig
}

// LoadConfig loads configuration from a .env file (local development),
// environment variables, and an optional config.yaml. A missing required
// API key is a startup-fatal error.
func LoadConfig(path string) (*AppConfig, error) {
	// In a deployed environment configuration arrives as real environment
	// variables; only local development relies on a .env file.
	if os.Getenv("APP_ENV") != "release" {
		_ = godotenv.Load()
	}

	cfg := &AppConfig{
		LogLevel: os.Getenv("LOG_LEVEL"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	required := []struct {
		name string
		dst  *string
	}{
		{"GEMINI_API_KEY", &cfg.GeminiAPIKey},
		{"WEATHER_API_KEY", &cfg.WeatherAPIKey},
		{"IP_GEOLOCATION_API_KEY", &cfg.GeolocationAPIKey},
	}
	for _, env := range required {
		value := os.Getenv(env.name)
		if value == "" {
			return nil, fmt.Errorf("environment variable not set: %s", env.name)
		}
		*env.dst = value
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg.File); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Optional file; defaults apply.
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if cfg.File.SystemPrompt == "" {
		cfg.File.SystemPrompt = defaultSystemPrompt
	}

	return cfg, nil
}

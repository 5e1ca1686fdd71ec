package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultSystemPrompt = "You are a weather and time assistant. Answer with one short sentence, using the available tools for weather and local-time questions."

// FileConfig mirrors the assistant's optional config.yaml.
type FileConfig struct {
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
	MaxToolCalls int    `yaml:"max_tool_calls"`
	Providers    struct {
		WeatherEndpoint string `yaml:"weather_endpoint"`
		TimeEndpoint    string `yaml:"time_endpoint"`
	} `yaml:"providers"`
}

// ServerConfig holds everything the HTTP serve mode needs: the assistant's
// configuration plus the transport and session-store settings.
type ServerConfig struct {
	GeminiAPIKey      string
	WeatherAPIKey     string
	GeolocationAPIKey string
	LogLevel          string
	RedisAddr         string
	Port              string
	File              FileConfig
}

// LoadConfig loads server configuration from the environment and the
// optional config.yaml. Missing API keys or the Redis address are
// startup-fatal.
func LoadConfig(path string) (*ServerConfig, error) {
	// In Docker (GIN_MODE=release) configuration is provided directly as
	// environment variables; only local development uses a .env file.
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	cfg := &ServerConfig{
		LogLevel:  os.Getenv("LOG_LEVEL"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		Port:      os.Getenv("PORT"),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable not set: REDIS_ADDR")
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

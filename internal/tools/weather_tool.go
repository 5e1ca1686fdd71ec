package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// defaultWeatherEndpoint is the WeatherAPI current-conditions endpoint.
const defaultWeatherEndpoint = "https://api.weatherapi.com/v1/current.json"

// ProviderError reports a non-success HTTP status from an external data
// provider. Callers treat it the same as any other tool failure, but keeping
// the status makes the terminal diagnostic useful.
type ProviderError struct {
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Provider, e.StatusCode)
}

// WeatherTool fetches current weather conditions from WeatherAPI. It holds
// its own configured HTTP client for calls to the external service.
type WeatherTool struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ ToolExecutor = (*WeatherTool)(nil)

// NewWeatherTool creates a WeatherTool. It requires a WeatherAPI key and
// initializes a dedicated HTTP client with a timeout so a hung provider
// cannot hang the whole session.
func NewWeatherTool(apiKey string, logger zerolog.Logger) (*WeatherTool, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("weather API key cannot be empty")
	}
	return &WeatherTool{
		apiKey:   apiKey,
		endpoint: defaultWeatherEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("tool", "get_weather").Logger(),
	}, nil
}

// SetEndpoint overrides the provider endpoint. Used for configuration
// overrides and for pointing the tool at a test server.
func (wt *WeatherTool) SetEndpoint(endpoint string) {
	if endpoint != "" {
		wt.endpoint = endpoint
	}
}

// Definition describes the tool to the model.
func (wt *WeatherTool) Definition() Tool {
	return NewFunctionTool(
		"get_weather",
		"Get the current weather for a location",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"location": {
					Type:        "string",
					Description: "Human-readable place name, e.g. \"Paris\" or \"London,GB\".",
				},
				"unit": {
					Type:        "string",
					Enum:        []string{"C", "F"},
					Description: "Temperature unit (C for Celsius, F for Fahrenheit). Defaults to C.",
				},
			},
			Required: []string{"location"},
		},
	)
}

// weatherProviderResponse is the subset of the WeatherAPI current.json
// response the tool consumes.
type weatherProviderResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		TempF     float64 `json:"temp_f"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
		Humidity int `json:"humidity"`
	} `json:"current"`
}

// WeatherRecord is the flat result fed back to the model. All fields are
// populated or the lookup fails; there is no partial record.
type WeatherRecord struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    int     `json:"humidity"`
}

// Execute looks up current conditions for the requested location and returns
// a WeatherRecord serialized as JSON.
func (wt *WeatherTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Location string `json:"location"`
		Unit     string `json:"unit"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for weather tool: %w", err)
	}
	if args.Location == "" {
		return "", fmt.Errorf("missing parameter: location")
	}

	wt.logger.Info().Str("location", args.Location).Msg("Fetching weather data")

	reqURL := fmt.Sprintf("%s?key=%s&q=%s", wt.endpoint, url.QueryEscape(wt.apiKey), url.QueryEscape(args.Location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create weather API request: %w", err)
	}

	resp, err := wt.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call weather API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		wt.logger.Error().Int("status", resp.StatusCode).Msg("Failed to fetch weather data")
		return "", &ProviderError{Provider: "weather API", StatusCode: resp.StatusCode}
	}

	var provider weatherProviderResponse
	if err := json.NewDecoder(resp.Body).Decode(&provider); err != nil {
		return "", fmt.Errorf("failed to parse weather API response: %w", err)
	}
	if provider.Current.Condition.Text == "" {
		return "", fmt.Errorf("weather API response is missing expected fields")
	}

	record := WeatherRecord{
		Temperature: provider.Current.TempC,
		Condition:   provider.Current.Condition.Text,
		Humidity:    provider.Current.Humidity,
	}
	if args.Unit == "F" {
		record.Temperature = provider.Current.TempF
	}

	wt.logger.Debug().
		Float64("temperature", record.Temperature).
		Str("condition", record.Condition).
		Int("humidity", record.Humidity).
		Msg("Weather data fetched successfully")

	out, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode weather record: %w", err)
	}
	return string(out), nil
}

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

// defaultTimeEndpoint is the IPGeolocation timezone endpoint.
const defaultTimeEndpoint = "https://api.ipgeolocation.io/timezone"

// TimeTool fetches the current local date and time for a location from the
// IPGeolocation timezone service.
type TimeTool struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ ToolExecutor = (*TimeTool)(nil)

// NewTimeTool creates a TimeTool. It requires an IPGeolocation API key.
func NewTimeTool(apiKey string, logger zerolog.Logger) (*TimeTool, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("geolocation API key cannot be empty")
	}
	return &TimeTool{
		apiKey:   apiKey,
		endpoint: defaultTimeEndpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With().Str("tool", "get_current_time").Logger(),
	}, nil
}

// SetEndpoint overrides the provider endpoint. Used for configuration
// overrides and for pointing the tool at a test server.
func (tt *TimeTool) SetEndpoint(endpoint string) {
	if endpoint != "" {
		tt.endpoint = endpoint
	}
}

// Definition describes the tool to the model.
func (tt *TimeTool) Definition() Tool {
	return NewFunctionTool(
		"get_current_time",
		"Get the current local date and time for a location",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"location": {
					Type:        "string",
					Description: "Human-readable place name, e.g. \"Tokyo\" or \"London,GB\".",
				},
			},
			Required: []string{"location"},
		},
	)
}

// timeProviderResponse is the subset of the IPGeolocation timezone response
// the tool consumes.
type timeProviderResponse struct {
	Date   string `json:"date"`
	Time12 string `json:"time_12"`
}

// TimeRecord is the flat result fed back to the model.
type TimeRecord struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Execute looks up the current local time for the requested location and
// returns a TimeRecord serialized as JSON.
func (tt *TimeTool) Execute(ctx context.Context, arguments string) (string, error) {
	var args struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments for time tool: %w", err)
	}
	if args.Location == "" {
		return "", fmt.Errorf("missing parameter: location")
	}

	tt.logger.Info().Str("location", args.Location).Msg("Fetching time data")

	reqURL := fmt.Sprintf("%s?apiKey=%s&location=%s", tt.endpoint, url.QueryEscape(tt.apiKey), url.QueryEscape(args.Location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create time API request: %w", err)
	}

	resp, err := tt.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call time API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tt.logger.Error().Int("status", resp.StatusCode).Msg("Failed to fetch time data")
		return "", &ProviderError{Provider: "geolocation API", StatusCode: resp.StatusCode}
	}

	var provider timeProviderResponse
	if err := json.NewDecoder(resp.Body).Decode(&provider); err != nil {
		return "", fmt.Errorf("failed to parse time API response: %w", err)
	}
	if provider.Date == "" || provider.Time12 == "" {
		return "", fmt.Errorf("time API response is missing date or time fields")
	}

	record := TimeRecord{
		Date: provider.Date,
		Time: provider.Time12,
	}

	tt.logger.Debug().
		Str("date", record.Date).
		Str("time", record.Time).
		Msg("Time data fetched successfully")

	out, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode time record: %w", err)
	}
	return string(out), nil
}

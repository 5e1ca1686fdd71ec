package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dileep-u-k/weather-assistant/internal/agent"
	"github.com/dileep-u-k/weather-assistant/internal/llm"
	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/rs/zerolog"
)

// exitKeyword ends the session. Matching is exact and case-sensitive.
const exitKeyword = "exit"

// main is the entry point for the interactive assistant. It is the
// composition root: load configuration, initialize the model client and
// tools, inject them into the agent, and run the read/answer loop.
func main() {
	logger := newLogger("info")

	buildInfo := GetBuildInfo()
	logger.Info().
		Str("version", buildInfo.Version).
		Str("commit", buildInfo.GitCommit).
		Msg("Starting weather assistant")

	cfg, err := LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal().Err(err).Msg("Configuration error")
	}
	logger = newLogger(cfg.LogLevel)

	ctx := context.Background()
	chatAgent, err := buildAgent(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Initialization error")
	}

	if err := runChatLoop(ctx, chatAgent, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("Session aborted")
	}
}

// newLogger builds the console logger at the given level. An unparseable
// level falls back to info rather than failing startup.
func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(parsed).
		With().Timestamp().Logger()
}

// buildAgent wires the Gemini client and the two tools into an Agent.
func buildAgent(ctx context.Context, cfg *AppConfig, logger zerolog.Logger) (*agent.Agent, error) {
	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.File.Model, logger)
	if err != nil {
		return nil, err
	}

	toolManager, err := buildToolManager(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("tools", toolManager.ToolCount()).Msg("Tool manager initialized")

	return agent.New(client, toolManager, agent.Options{
		SystemPrompt: cfg.File.SystemPrompt,
		MaxToolCalls: cfg.File.MaxToolCalls,
		Config:       &llm.GenerationConfig{Model: cfg.File.Model},
	}, logger), nil
}

// buildToolManager creates and registers the two built-in tools.
func buildToolManager(cfg *AppConfig, logger zerolog.Logger) (*tools.ToolManager, error) {
	manager := tools.NewToolManager()

	weatherTool, err := tools.NewWeatherTool(cfg.WeatherAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create weather tool: %w", err)
	}
	weatherTool.SetEndpoint(cfg.File.Providers.WeatherEndpoint)
	manager.Register(weatherTool)

	timeTool, err := tools.NewTimeTool(cfg.GeolocationAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create time tool: %w", err)
	}
	timeTool.SetEndpoint(cfg.File.Providers.TimeEndpoint)
	manager.Register(timeTool)

	return manager, nil
}

// runChatLoop reads user lines until the exit keyword, running one agent
// turn per line. Any turn error is unrecoverable and ends the session.
func runChatLoop(ctx context.Context, chatAgent *agent.Agent, in io.Reader, out io.Writer, logger zerolog.Logger) error {
	fmt.Fprintln(out, "Hi, I'm a weather bot. Ask me about the weather or the local time anywhere.")
	fmt.Fprintf(out, "Send `%s` to stop.\n", exitKeyword)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			// EOF counts as a normal goodbye.
			return scanner.Err()
		}
		line := scanner.Text()
		if line == exitKeyword {
			logger.Debug().Msg("Exit keyword received")
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply, usage, err := chatAgent.RunTurn(ctx, line)
		if err != nil {
			return err
		}
		logger.Debug().
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Msg("Turn complete")
		fmt.Fprintln(out, reply)
	}
}

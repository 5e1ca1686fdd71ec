package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dileep-u-k/weather-assistant/internal/agent"
	"github.com/dileep-u-k/weather-assistant/internal/llm"
	"github.com/dileep-u-k/weather-assistant/internal/session"
	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// main is the entry point for the HTTP serve mode. It loads configuration,
// initializes the model client, tools, and the Redis-backed session store,
// and runs the web server with graceful shutdown.
func main() {
	logger := newLogger("info")

	cfg, err := LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal().Err(err).Msg("Configuration error")
	}
	logger = newLogger(cfg.LogLevel)
	logger.Info().Msg("Configuration loaded")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Could not connect to Redis")
	}
	sessions := session.NewStore(rdb, session.DefaultTTL)

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.File.Model, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not create Gemini client")
	}

	toolManager, err := buildToolManager(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not initialize tools")
	}
	logger.Info().Int("tools", toolManager.ToolCount()).Msg("Tool manager initialized")

	handler := NewChatHandler(client, toolManager, agent.Options{
		SystemPrompt: cfg.File.SystemPrompt,
		MaxToolCalls: cfg.File.MaxToolCalls,
		Config:       &llm.GenerationConfig{Model: cfg.File.Model},
	}, sessions, logger)

	gin.SetMode(os.Getenv("GIN_MODE"))
	engine := gin.Default()
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/chat", handler.HandleChat)
	}
	engine.GET("/healthz", handler.HandleHealth(func() error {
		return rdb.Ping(context.Background()).Err()
	}))

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv, logger)
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
}

// buildToolManager creates and registers the two built-in tools.
func buildToolManager(cfg *ServerConfig, logger zerolog.Logger) (*tools.ToolManager, error) {
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

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server, logger zerolog.Logger) {
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server shutdown failed")
	}
	logger.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dileep-u-k/weather-assistant/internal/agent"
	"github.com/dileep-u-k/weather-assistant/internal/llm"
	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// sessionStore is the transcript persistence the handler needs. Satisfied by
// *session.Store; a test can substitute an in-memory fake.
type sessionStore interface {
	Load(ctx context.Context, conversationID string) ([]llm.Message, error)
	Save(ctx context.Context, conversationID string, messages []llm.Message) error
}

// ChatRequest is one user turn of a conversation.
type ChatRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Message        string `json:"message" binding:"required"`
}

// ChatResponse carries the assistant's reply plus per-turn accounting.
type ChatResponse struct {
	ConversationID string    `json:"conversation_id"`
	Reply          string    `json:"reply"`
	Usage          llm.Usage `json:"usage"`
	LatencyMS      int64     `json:"latency_ms"`
}

// ChatHandler serves the chat endpoint. Each request builds a fresh agent
// seeded with the conversation's stored transcript, runs exactly one turn,
// and stores the grown transcript back.
type ChatHandler struct {
	client      llm.LLMClient
	toolManager *tools.ToolManager
	agentOpts   agent.Options
	sessions    sessionStore
	logger      zerolog.Logger
}

func NewChatHandler(client llm.LLMClient, toolManager *tools.ToolManager, agentOpts agent.Options, sessions sessionStore, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		client:      client,
		toolManager: toolManager,
		agentOpts:   agentOpts,
		sessions:    sessions,
		logger:      logger.With().Str("component", "chat_handler").Logger(),
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	startTime := time.Now()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	chatAgent := agent.New(h.client, h.toolManager, h.agentOpts, h.logger)

	stored, err := h.sessions.Load(ctx, req.ConversationID)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation", req.ConversationID).Msg("Session load failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(stored) > 0 {
		chatAgent.RestoreTranscript(stored)
	}

	reply, usage, err := chatAgent.RunTurn(ctx, req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrUndeclaredTool) {
			status = http.StatusBadGateway
		}
		h.logger.Error().Err(err).Str("conversation", req.ConversationID).Msg("Turn failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessions.Save(ctx, req.ConversationID, chatAgent.Transcript()); err != nil {
		h.logger.Error().Err(err).Str("conversation", req.ConversationID).Msg("Session save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		ConversationID: req.ConversationID,
		Reply:          reply,
		Usage:          usage,
		LatencyMS:      time.Since(startTime).Milliseconds(),
	})
}

// HandleHealth reports liveness, including the session store connection.
func (h *ChatHandler) HandleHealth(pinger func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pinger(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// Package session stores conversation transcripts in Redis for the HTTP
// serve mode, so a conversation survives across requests. The interactive
// CLI keeps its transcript in memory and never touches this.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dileep-u-k/weather-assistant/internal/llm"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an idle conversation is retained. Every load or
// save refreshes it.
const DefaultTTL = 1 * time.Hour

// Store persists transcripts keyed by conversation ID.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Store. A non-positive ttl falls back to DefaultTTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func sessionKey(conversationID string) string {
	return fmt.Sprintf("session:%s", conversationID)
}

// Load returns the stored transcript for a conversation, or nil if none
// exists yet. A hit refreshes the session TTL.
func (s *Store) Load(ctx context.Context, conversationID string) ([]llm.Message, error) {
	key := sessionKey(conversationID)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", conversationID, err)
	}

	var messages []llm.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode session %q: %w", conversationID, err)
	}

	s.rdb.Expire(ctx, key, s.ttl)
	return messages, nil
}

// Save stores the transcript for a conversation and resets its TTL.
func (s *Store) Save(ctx context.Context, conversationID string, messages []llm.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode session %q: %w", conversationID, err)
	}
	if err := s.rdb.Set(ctx, sessionKey(conversationID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %q: %w", conversationID, err)
	}
	return nil
}

package llm

import (
	"context"
	"time"
)

// Example is a past question/SQL pair used as few-shot context for translation
type Example struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// Client interface for AI service integration. Translate returns a candidate
// SQL statement; callers must treat the result as untrusted until sanitized.
type Client interface {
	Translate(ctx context.Context, question string, examples []Example) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds configuration for LLM clients
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

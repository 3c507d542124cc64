package llm

import (
	"context"
	"time"
)

// DefaultBaseURL is the OpenAI chat completions endpoint root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config carries the transport settings of an LLM client.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout is the per-request timeout in seconds.
	Timeout int
	Headers map[string]string
	// MaxResponseBytes caps the response body size. Zero uses the httpclient default.
	MaxResponseBytes int64
	// Recorder receives request counts, latency and token usage. Optional.
	Recorder Recorder
}

// Recorder receives per-request LLM measurements.
type Recorder interface {
	RecordLLMRequest(ctx context.Context, model string, status string, latency time.Duration, inputTokens, outputTokens int)
}

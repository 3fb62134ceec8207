// Package ai wraps the hosted language models used for categorising,
// searching and writing biographies.
package ai

import (
	"circle/config"
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	ModelDeepSeek = "deepseek"
	ModelClaude   = "claude"
)

var ErrNotConfigured = errors.New("AI model is not configured")

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSON        bool // Ask for a JSON object reply where the model supports it
}

// Completer returns the model's text answer to a single prompt
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var (
	DeepSeek Completer
	Claude   Completer
)

// Init creates the clients for which an API key is configured
func Init() {
	if config.DEEPSEEK_API_KEY != "" {
		DeepSeek = NewDeepSeek(config.DEEPSEEK_API_KEY, config.DEEPSEEK_BASE_URL, config.DEEPSEEK_MODEL)
		zap.S().Infof("DeepSeek enabled, model: %s", config.DEEPSEEK_MODEL)
	}
	if config.ANTHROPIC_API_KEY != "" {
		Claude = NewClaude(config.ANTHROPIC_API_KEY, config.CLAUDE_MODEL)
		zap.S().Infof("Claude enabled, model: %s", config.CLAUDE_MODEL)
	}
}

// ByName returns the client for "deepseek" or "claude"
func ByName(name string) (Completer, error) {
	var c Completer
	switch name {
	case ModelDeepSeek:
		c = DeepSeek
	case ModelClaude:
		c = Claude
	default:
		return nil, errors.New("unknown model: " + name)
	}
	if c == nil {
		return nil, ErrNotConfigured
	}
	return c, nil
}

// ExtractJSON returns the outermost {...} of a reply that may be wrapped in prose or code fences
func ExtractJSON(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return ""
	}
	return reply[start : end+1]
}

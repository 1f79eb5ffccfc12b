package llm

import (
	"context"
	"errors"
	"strings"
)

// Client completes a single prompt and returns the raw model text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNotConfigured is returned by a provider client used without credentials.
var ErrNotConfigured = errors.New("llm provider not configured")

// StripCodeFences removes a surrounding markdown code fence, with or without a
// language tag, from a model response.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

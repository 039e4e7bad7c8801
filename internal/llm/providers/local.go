// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// LocalProvider is the offline stand-in used when no API key is configured.
// Summaries echo the request and embeddings are hash-derived, so the rest of
// the system behaves deterministically without network access.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages provided")
	}
	last := strings.TrimSpace(messages[len(messages)-1].Content)
	if len(last) > 200 {
		last = last[:200]
	}
	return fmt.Sprintf("[local] %s", last), nil
}

func (l *LocalProvider) ChatStream(ctx context.Context, messages []Message, fn StreamFunc) (string, error) {
	out, err := l.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	if fn != nil {
		fn(out)
	}
	return out, nil
}

func (l *LocalProvider) Embed(ctx context.Context, input string, dimensions int) ([]float32, error) {
	return DeterministicVector(input, dimensions), nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

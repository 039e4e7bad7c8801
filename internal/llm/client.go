// File path: internal/llm/client.go
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/llm/providers"
)

const (
	// EmbeddingDimensions is the fixed vector length the rest of the system
	// assumes. Vectors of any other length are treated as absent.
	EmbeddingDimensions = 768

	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second

	// Inputs beyond this size are truncated before the embedding request.
	maxEmbedChars = 100_000

	// Empty input still has to produce a full-length vector.
	emptyInputPlaceholder = "empty file"

	// FallbackSummary replaces a summary when the remote call is exhausted.
	FallbackSummary = "Summary unavailable: the file could not be summarized automatically."

	// FallbackDiffSummary stands in when a commit diff cannot be summarized.
	FallbackDiffSummary = "Summary unavailable: the commit diff could not be summarized automatically."

	summarizeSystemPrompt = "You are an expert senior software engineer who onboards junior engineers onto " +
		"unfamiliar codebases. Summarize the purpose of the given source file in no more than 120 words. " +
		"Be concrete about what the code does; do not restate the file name."

	diffSystemPrompt = "You are an expert programmer summarizing a git diff. Describe the intent of the " +
		"change in a few short bullet points, mentioning the files touched. Do not invent changes that are " +
		"not in the diff."

	answerSystemPrompt = "You are RepoBrief, an assistant that answers questions about a code repository. " +
		"Ground every statement in the provided context files. Use Markdown. If the context does not " +
		"contain the answer, say so instead of guessing."
)

// SleepFunc pauses for the given duration unless the context ends first.
// Injected in tests so retry schedules can be asserted without waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client wraps a generative provider with the retry and fallback policy every
// caller shares: bounded attempts with exponential backoff, degrading to a
// generic summary or a deterministic hash-seeded vector on exhaustion.
type Client struct {
	provider    providers.Provider
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
}

type Option func(*Client)

func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

func NewClient(provider providers.Provider, opts ...Option) *Client {
	c := &Client{
		provider:    provider,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       defaultSleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Provider exposes the wrapped provider, mainly for logging its name.
func (c *Client) Provider() providers.Provider {
	return c.provider
}

// Backoff returns the delay before the given retry: 2s, 4s, 8s for the
// default base delay.
func (c *Client) Backoff(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	if retry > 30 {
		retry = 30
	}
	return c.baseDelay << uint(retry-1)
}

// SummarizeFile produces a short natural-language summary of a source file.
// It never fails: on exhaustion the generic fallback summary is returned.
func (c *Client) SummarizeFile(ctx context.Context, fileName, source string) string {
	user := fmt.Sprintf("Summarize the file %s:\n\n%s", fileName, truncate(source, maxEmbedChars))
	out, err := c.chat(ctx, summarizeSystemPrompt, user)
	if err != nil {
		common.Logger().Warn("llm: file summary exhausted retries", "file", fileName, "error", err)
		return FallbackSummary
	}
	return out
}

// SummarizeDiff summarizes a unified commit diff with the same policy.
func (c *Client) SummarizeDiff(ctx context.Context, diff string) string {
	user := fmt.Sprintf("Summarize this diff:\n\n%s", truncate(diff, maxEmbedChars))
	out, err := c.chat(ctx, diffSystemPrompt, user)
	if err != nil {
		common.Logger().Warn("llm: diff summary exhausted retries", "error", err)
		return FallbackDiffSummary
	}
	return out
}

// Embed returns a vector of exactly EmbeddingDimensions components for any
// input, substituting a placeholder phrase for empty input and a
// deterministic hash-seeded vector when the remote call is exhausted or
// returns the wrong length.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	input := strings.TrimSpace(text)
	if input == "" {
		input = emptyInputPlaceholder
	}
	input = truncate(input, maxEmbedChars)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.Backoff(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}
		vec, err := c.provider.Embed(ctx, input, EmbeddingDimensions)
		if err != nil {
			lastErr = err
			continue
		}
		if len(vec) != EmbeddingDimensions {
			lastErr = fmt.Errorf("unexpected embedding length %d", len(vec))
			continue
		}
		return vec
	}
	common.Logger().Warn("llm: embedding exhausted retries, using deterministic fallback", "error", lastErr)
	return FallbackVector(input)
}

// Answer runs a single generation over the assembled prompt. Unlike the
// summary and embedding paths the error propagates: the answering layer
// owns the user-facing fallback.
func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, answerSystemPrompt, prompt)
}

// AnswerStream behaves like Answer but forwards tokens to fn as they arrive.
// Retries apply only to attempts that failed before emitting a token: once
// anything reached fn, a retry would duplicate output on the wire, so a
// mid-stream failure is returned instead.
func (c *Client) AnswerStream(ctx context.Context, prompt string, fn providers.StreamFunc) (string, error) {
	messages := []providers.Message{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: prompt},
	}
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.Backoff(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}
		var forwarded bool
		out, err := c.provider.ChatStream(ctx, messages, func(token string) {
			forwarded = true
			if fn != nil {
				fn(token)
			}
		})
		if err != nil {
			if forwarded {
				return "", fmt.Errorf("generation stream interrupted: %w", err)
			}
			lastErr = err
			continue
		}
		return out, nil
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	messages := []providers.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.Backoff(attempt-1)); err != nil {
				lastErr = err
				break
			}
		}
		out, err := c.provider.Chat(ctx, messages)
		if err != nil {
			lastErr = err
			continue
		}
		return out, nil
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit]
}

// File path: internal/llm/client_test.go
package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/repobrief/repobrief/internal/llm/providers"
)

// stubProvider scripts per-call outcomes so retry behaviour can be asserted
// without a network.
type stubProvider struct {
	chatErrs  []error
	chatOut   string
	embedErrs []error
	embedVec  []float32
	chatCalls int
	embeds    int
	lastInput string
}

func (s *stubProvider) Chat(ctx context.Context, messages []providers.Message) (string, error) {
	s.chatCalls++
	if len(s.chatErrs) > 0 {
		err := s.chatErrs[0]
		s.chatErrs = s.chatErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return s.chatOut, nil
}

func (s *stubProvider) ChatStream(ctx context.Context, messages []providers.Message, fn providers.StreamFunc) (string, error) {
	out, err := s.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	if fn != nil {
		fn(out)
	}
	return out, nil
}

func (s *stubProvider) Embed(ctx context.Context, input string, dimensions int) ([]float32, error) {
	s.embeds++
	s.lastInput = input
	if len(s.embedErrs) > 0 {
		err := s.embedErrs[0]
		s.embedErrs = s.embedErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if s.embedVec != nil {
		return s.embedVec, nil
	}
	return providers.DeterministicVector(input, dimensions), nil
}

func (s *stubProvider) Name() string { return "stub" }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestEmbedAlwaysReturnsFixedLength(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"blank":     "   \n\t",
		"code":      "package main\n\nfunc main() {}\n",
		"oversized": strings.Repeat("x", 150_000),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			provider := &stubProvider{}
			client := NewClient(provider, WithSleep(noSleep))
			vec := client.Embed(context.Background(), input)
			require.Len(t, vec, EmbeddingDimensions)
		})
	}
}

func TestEmbedSubstitutesPlaceholderForEmptyInput(t *testing.T) {
	provider := &stubProvider{}
	client := NewClient(provider, WithSleep(noSleep))
	client.Embed(context.Background(), "")
	require.Equal(t, "empty file", provider.lastInput)
}

func TestEmbedTruncatesOversizedInput(t *testing.T) {
	provider := &stubProvider{}
	client := NewClient(provider, WithSleep(noSleep))
	client.Embed(context.Background(), strings.Repeat("a", 150_000))
	require.Len(t, provider.lastInput, 100_000)
}

func TestEmbedFallsBackDeterministicallyOnExhaustion(t *testing.T) {
	boom := errors.New("rate limited")
	provider := &stubProvider{embedErrs: []error{boom, boom, boom}}
	client := NewClient(provider, WithSleep(noSleep))
	vec := client.Embed(context.Background(), "internal/store/store.go")
	require.Len(t, vec, EmbeddingDimensions)
	require.Equal(t, FallbackVector("internal/store/store.go"), vec)
	require.Equal(t, 3, provider.embeds)
}

func TestEmbedRejectsWrongLengthVector(t *testing.T) {
	provider := &stubProvider{embedVec: make([]float32, 12)}
	client := NewClient(provider, WithSleep(noSleep))
	vec := client.Embed(context.Background(), "short vector")
	require.Len(t, vec, EmbeddingDimensions)
	require.Equal(t, 3, provider.embeds)
}

func TestRetryScheduleDoublesBaseDelay(t *testing.T) {
	boom := errors.New("transient")
	provider := &stubProvider{chatErrs: []error{boom, boom}, chatOut: "done"}
	var delays []time.Duration
	client := NewClient(provider, WithSleep(func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))
	out := client.SummarizeFile(context.Background(), "main.go", "package main")
	require.Equal(t, "done", out)
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
	require.Equal(t, 3, provider.chatCalls)
}

func TestSummarizeFileFallsBackAfterExhaustion(t *testing.T) {
	boom := errors.New("unavailable")
	provider := &stubProvider{chatErrs: []error{boom, boom, boom}}
	client := NewClient(provider, WithSleep(noSleep))
	out := client.SummarizeFile(context.Background(), "main.go", "package main")
	require.Equal(t, FallbackSummary, out)
}

func TestSummarizeDiffFallsBackAfterExhaustion(t *testing.T) {
	boom := errors.New("unavailable")
	provider := &stubProvider{chatErrs: []error{boom, boom, boom}}
	client := NewClient(provider, WithSleep(noSleep))
	out := client.SummarizeDiff(context.Background(), "diff --git a b")
	require.Equal(t, FallbackDiffSummary, out)
}

func TestAnswerPropagatesExhaustion(t *testing.T) {
	boom := errors.New("unavailable")
	provider := &stubProvider{chatErrs: []error{boom, boom, boom}}
	client := NewClient(provider, WithSleep(noSleep))
	_, err := client.Answer(context.Background(), "what does this repo do?")
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

// streamingProvider scripts one ChatStream outcome per call: tokens emitted
// before the attempt's error (if any).
type streamScript struct {
	tokens []string
	err    error
}

type streamingProvider struct {
	scripts []streamScript
	calls   int
}

func (s *streamingProvider) Chat(ctx context.Context, messages []providers.Message) (string, error) {
	return "", errors.New("not used")
}

func (s *streamingProvider) ChatStream(ctx context.Context, messages []providers.Message, fn providers.StreamFunc) (string, error) {
	script := s.scripts[s.calls]
	s.calls++
	var out strings.Builder
	for _, token := range script.tokens {
		out.WriteString(token)
		if fn != nil {
			fn(token)
		}
	}
	if script.err != nil {
		return "", script.err
	}
	return out.String(), nil
}

func (s *streamingProvider) Embed(ctx context.Context, input string, dimensions int) ([]float32, error) {
	return providers.DeterministicVector(input, dimensions), nil
}

func (s *streamingProvider) Name() string { return "streaming-stub" }

func TestAnswerStreamRetriesOnlyBeforeFirstToken(t *testing.T) {
	provider := &streamingProvider{scripts: []streamScript{
		{err: errors.New("connect failed")},
		{tokens: []string{"hello ", "world"}},
	}}
	client := NewClient(provider, WithSleep(noSleep))
	var got []string
	out, err := client.AnswerStream(context.Background(), "question", func(token string) {
		got = append(got, token)
	})
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
	require.Equal(t, []string{"hello ", "world"}, got)
	require.Equal(t, 2, provider.calls)
}

func TestAnswerStreamDoesNotRetryAfterPartialOutput(t *testing.T) {
	provider := &streamingProvider{scripts: []streamScript{
		{tokens: []string{"partial "}, err: errors.New("connection reset")},
		{tokens: []string{"full answer"}},
	}}
	client := NewClient(provider, WithSleep(noSleep))
	var got []string
	_, err := client.AnswerStream(context.Background(), "question", func(token string) {
		got = append(got, token)
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "stream interrupted")
	// No retry once a token went out: each token reaches the caller once.
	require.Equal(t, []string{"partial "}, got)
	require.Equal(t, 1, provider.calls)
}

func TestAnswerStreamForwardsTokens(t *testing.T) {
	provider := &stubProvider{chatOut: "streamed answer"}
	client := NewClient(provider, WithSleep(noSleep))
	var got []string
	out, err := client.AnswerStream(context.Background(), "question", func(token string) {
		got = append(got, token)
	})
	require.NoError(t, err)
	require.Equal(t, "streamed answer", out)
	require.Equal(t, []string{"streamed answer"}, got)
}

func TestBackoffCapsShift(t *testing.T) {
	client := NewClient(&stubProvider{})
	require.Equal(t, time.Duration(0), client.Backoff(0))
	require.Equal(t, 2*time.Second, client.Backoff(1))
	require.Equal(t, 4*time.Second, client.Backoff(2))
	require.Equal(t, 8*time.Second, client.Backoff(3))
}

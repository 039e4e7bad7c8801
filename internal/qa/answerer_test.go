// File path: internal/qa/answerer_test.go
package qa

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/repobrief/repobrief/internal/llm"
	"github.com/repobrief/repobrief/internal/llm/providers"
	"github.com/repobrief/repobrief/internal/retriever"
)

// echoProvider returns the prompt it was given so tests can inspect the
// assembled context.
type echoProvider struct {
	fail bool
}

func (e *echoProvider) Chat(ctx context.Context, messages []providers.Message) (string, error) {
	if e.fail {
		return "", errors.New("provider down")
	}
	return messages[len(messages)-1].Content, nil
}

func (e *echoProvider) ChatStream(ctx context.Context, messages []providers.Message, fn providers.StreamFunc) (string, error) {
	out, err := e.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	if fn != nil {
		fn(out)
	}
	return out, nil
}

func (e *echoProvider) Embed(ctx context.Context, input string, dimensions int) ([]float32, error) {
	return providers.DeterministicVector(input, dimensions), nil
}

func (e *echoProvider) Name() string { return "echo" }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newAnswerer(fail bool) *Answerer {
	client := llm.NewClient(&echoProvider{fail: fail}, llm.WithSleep(noSleep))
	return New(client)
}

func sampleFiles() []retriever.File {
	return []retriever.File{
		{
			ID:      1,
			Name:    "internal/auth/session.go",
			Summary: "Manages login sessions and token refresh.",
			Source:  "package auth\n\nfunc RefreshSession() {}\n",
			Vector:  llm.FallbackVector("auth"),
		},
		{
			ID:      2,
			Name:    "cmd/server/main.go",
			Summary: "Process entrypoint.",
			Source:  "package main\n",
			Vector:  llm.FallbackVector("main"),
		},
	}
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModeKeyword, ParseMode(""))
	require.Equal(t, ModeKeyword, ParseMode("anything"))
	require.Equal(t, ModeSemantic, ParseMode("semantic"))
	require.Equal(t, ModeSemantic, ParseMode(" SEMANTIC "))
}

func TestAnswerBuildsPromptFromKeywordMatches(t *testing.T) {
	a := newAnswerer(false)
	result := a.Answer(context.Background(), "how does session refresh work?", sampleFiles(), ModeKeyword, nil)
	require.Equal(t, ModeKeyword, result.Mode)
	require.Contains(t, result.Answer, "internal/auth/session.go")
	require.Contains(t, result.Answer, "Manages login sessions")
	require.Contains(t, result.Answer, "Question: how does session refresh work?")
	require.Len(t, result.References, 1)
	require.Equal(t, "internal/auth/session.go", result.References[0].FileName)
}

func TestAnswerWithoutContextUsesNoContextSentence(t *testing.T) {
	a := newAnswerer(false)
	result := a.Answer(context.Background(), "what is this?", nil, ModeKeyword, nil)
	require.Contains(t, result.Answer, "No context is available for this project.")
	require.Empty(t, result.References)
}

func TestAnswerSemanticModeRanksAllFiles(t *testing.T) {
	a := newAnswerer(false)
	result := a.Answer(context.Background(), "session", sampleFiles(), ModeSemantic, nil)
	require.Equal(t, ModeSemantic, result.Mode)
	require.Len(t, result.References, 2)
}

func TestAnswerFallsBackToMatchedLinesOnGenerationFailure(t *testing.T) {
	a := newAnswerer(true)
	result := a.Answer(context.Background(), "session refresh", sampleFiles(), ModeKeyword, nil)
	require.Equal(t, ModeKeyword, result.Mode)
	require.Contains(t, result.Answer, "The answer generator is temporarily unavailable.")
	require.Contains(t, result.Answer, "internal/auth/session.go")
	require.Contains(t, result.Answer, "line 3: func RefreshSession() {}")
	require.Len(t, result.References, 1)
	require.NotEmpty(t, result.References[0].Lines)
}

func TestAnswerFallsBackToApologyWhenNothingMatches(t *testing.T) {
	a := newAnswerer(true)
	files := []retriever.File{{ID: 1, Name: "main.go", Summary: "entry", Source: "package main"}}
	result := a.Answer(context.Background(), "zzzz unrelated query", files, ModeKeyword, nil)
	require.Equal(t, FallbackAnswer, result.Answer)
	require.Empty(t, result.References)
}

func TestAnswerStreamsFallbackToo(t *testing.T) {
	a := newAnswerer(true)
	var streamed strings.Builder
	result := a.Answer(context.Background(), "zzzz unrelated query", nil, ModeKeyword, func(token string) {
		streamed.WriteString(token)
	})
	require.Equal(t, FallbackAnswer, result.Answer)
	require.Equal(t, FallbackAnswer, streamed.String())
}

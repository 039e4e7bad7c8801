// File path: internal/llm/llm.go
package llm

import (
	"strings"

	"github.com/repobrief/repobrief/internal/common"
	"github.com/repobrief/repobrief/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

type StreamFunc = providers.StreamFunc

// NewProvider selects the OpenAI provider when an API key is supplied and the
// deterministic local provider otherwise.
func NewProvider(apiKey, chatModel, embedModel string) Provider {
	logger := common.Logger()
	if strings.TrimSpace(apiKey) != "" {
		logger.Info("llm: openai provider selected")
		return providers.NewOpenAIProvider(apiKey, chatModel, embedModel)
	}
	logger.Warn("llm: no API key configured; falling back to local provider")
	return providers.NewLocalProvider()
}

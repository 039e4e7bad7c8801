// File path: internal/llm/providers/openai.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/repobrief/repobrief/internal/common"
)

type OpenAIProvider struct {
	client     *openai.Client
	chatModel  string
	embedModel openai.EmbeddingModel
}

func NewOpenAIProvider(apiKey, chatModel, embedModel string) *OpenAIProvider {
	if strings.TrimSpace(chatModel) == "" {
		chatModel = "gpt-4o-mini"
	}
	if strings.TrimSpace(embedModel) == "" {
		embedModel = string(openai.SmallEmbedding3)
	}
	logger := common.Logger()
	logger.Info("llm: openai provider configured", "chat_model", chatModel, "embed_model", embedModel)
	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		chatModel:  chatModel,
		embedModel: openai.EmbeddingModel(embedModel),
	}
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if o.client == nil {
		return "", errors.New("nil openai client")
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.chatModel,
		Messages: toChatMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) ChatStream(ctx context.Context, messages []Message, fn StreamFunc) (string, error) {
	if o.client == nil {
		return "", errors.New("nil openai client")
	}
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    o.chatModel,
		Messages: toChatMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion stream: %w", err)
	}
	defer stream.Close()
	var builder strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("receive stream chunk: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		token := resp.Choices[0].Delta.Content
		if token == "" {
			continue
		}
		builder.WriteString(token)
		if fn != nil {
			fn(token)
		}
	}
	return builder.String(), nil
}

func (o *OpenAIProvider) Embed(ctx context.Context, input string, dimensions int) ([]float32, error) {
	if o.client == nil {
		return nil, errors.New("nil openai client")
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      []string{input},
		Model:      o.embedModel,
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return resp.Data[0].Embedding, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}
	return out
}

package service

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// OpenAIService generates text through an OpenAI-compatible chat
// completions endpoint.
type OpenAIService struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIService(baseURL, apiKey, model string, temperature float32, maxTokens int) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIService{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (s *OpenAIService) Generate(ctx context.Context, system string, messages []types.Message) (string, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == types.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages:    openaiMessages,
			Model:       s.model,
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

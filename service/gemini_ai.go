package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
	"google.golang.org/api/option"
)

// GeminiService generates text through the Google Generative AI API.
// Multiple API keys can be supplied; on an API error the service rotates
// to the next key and retries once.
//
// One instance is shared by every session, so nothing outside the mutex
// is ever mutated: each Generate call builds its own GenerativeModel, and
// rotation swaps the client pointer under the lock while in-flight calls
// keep using the client they started with.
type GeminiService struct {
	apiKeys     []string
	modelName   string
	temperature float32
	maxTokens   int

	mu         sync.Mutex
	currentKey int
	client     *genai.Client
}

func NewGeminiService(apiKeys []string, modelName string, temperature float32, maxTokens int) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no Google API keys provided")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKeys[0]))
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		apiKeys:     apiKeys,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
		currentKey:  0,
		client:      client,
	}, nil
}

func (s *GeminiService) currentClient() *genai.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// rotate swaps in a client on the next API key. When failed is no longer
// the current client another call rotated already, so its replacement is
// reused instead of burning a further key. The failed client is not
// closed here; concurrent calls may still hold it and it drains on its
// own.
func (s *GeminiService) rotate(failed *genai.Client) (*genai.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != failed {
		return s.client, nil
	}
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// newModel builds a fresh per-call model so system instructions and
// generation settings never leak between concurrent calls.
func (s *GeminiService) newModel(client *genai.Client, system string) *genai.GenerativeModel {
	model := client.GenerativeModel(s.modelName)
	model.SetTemperature(s.temperature)
	if s.maxTokens > 0 {
		model.SetMaxOutputTokens(int32(s.maxTokens))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	return model
}

func (s *GeminiService) Generate(ctx context.Context, system string, messages []types.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages provided")
	}

	// All but the last message become chat history.
	history := make([]*genai.Content, 0, len(messages)-1)
	for _, msg := range messages[:len(messages)-1] {
		role := "user"
		if msg.Role == types.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	prompt := messages[len(messages)-1].Content

	client := s.currentClient()
	chat := s.newModel(client, system).StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		// Try the next API key once before giving up.
		client, rerr := s.rotate(client)
		if rerr != nil {
			return "", rerr
		}
		chat = s.newModel(client, system).StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
	}

	if len(resp.Candidates) == 0 {
		return "", errors.New("no response generated")
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}
	return content, nil
}

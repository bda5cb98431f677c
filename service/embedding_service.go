package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// TextEmbedder is the narrow embedding capability consumed by both the
// ingestion pipeline and the retriever. Queries and documents are encoded
// separately because some model families require asymmetric prefixing.
type TextEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Nomic-family models encode queries and documents with different marker
// prefixes; mixing them up quietly degrades retrieval quality.
const (
	nomicQueryPrefix    = "search_query: "
	nomicDocumentPrefix = "search_document: "
)

// OpenAIEmbeddingService embeds text through an OpenAI-compatible
// embeddings endpoint. The endpoint may serve non-OpenAI model families
// (e.g. nomic via a local server), in which case the family-specific
// prefixes are applied before delegating.
type OpenAIEmbeddingService struct {
	client           *openai.Client
	model            string
	asymmetricPrefix bool
}

// NewOpenAIEmbeddingService fails when no API key is configured: no query
// can proceed without an embedder, so the process must not start serving.
func NewOpenAIEmbeddingService(baseURL, apiKey, model string) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	if model == "" {
		return nil, errors.New("embedding model is not set")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbeddingService{
		client:           openai.NewClientWithConfig(config),
		model:            model,
		asymmetricPrefix: strings.Contains(strings.ToLower(model), "nomic"),
	}, nil
}

func (s *OpenAIEmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.asymmetricPrefix {
		text = nomicQueryPrefix + text
	}
	vectors, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *OpenAIEmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	input := texts
	if s.asymmetricPrefix {
		input = make([]string, len(texts))
		for i, t := range texts {
			input[i] = nomicDocumentPrefix + t
		}
	}
	return s.embed(ctx, input)
}

func (s *OpenAIEmbeddingService) embed(ctx context.Context, input []string) ([][]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: input,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(input), len(resp.Data))
	}
	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// ErrStoreNotLoaded distinguishes "retrieval before Load" from the valid
// zero-results outcome.
var ErrStoreNotLoaded = errors.New("vector store not loaded: call Load first")

// VectorSearcher is the slice of the vector store the engine needs:
// existence check at load time and unfiltered nearest-neighbour search.
type VectorSearcher interface {
	ClassExists(ctx context.Context) (bool, error)
	SearchNearVector(ctx context.Context, vector []float32, limit int) ([]types.ScoredChunk, error)
}

// RAGEngine answers retrieval requests against the pre-built chunk index.
// Topic filtering is fetch-then-filter: fetchK candidates are pulled by
// pure similarity, then the exact-match title filter is applied, because
// the index's approximate search gives no recall guarantee under a
// pre-applied filter.
type RAGEngine struct {
	store    VectorSearcher
	embedder TextEmbedder
	topK     int
	fetchK   int
	loaded   bool
}

func NewRAGEngine(store VectorSearcher, embedder TextEmbedder, topK, fetchK int) *RAGEngine {
	if topK <= 0 {
		topK = 4
	}
	if fetchK <= topK {
		fetchK = topK * 5
	}
	return &RAGEngine{
		store:    store,
		embedder: embedder,
		topK:     topK,
		fetchK:   fetchK,
	}
}

// Load verifies the chunk index exists. The index is built offline, once;
// serving never creates it.
func (e *RAGEngine) Load(ctx context.Context) error {
	exists, err := e.store.ClassExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check vector store: %w", err)
	}
	if !exists {
		return fmt.Errorf("chunk index not found: build it once with 'profile-chatbot-be ingest --file <document>'")
	}
	e.loaded = true
	return nil
}

// Retrieve returns the contents of the top-k most relevant chunks. When
// topic is a recognised canonical topic, only chunks whose stored title
// equals it are returned. An empty result is a valid outcome, not an
// error.
func (e *RAGEngine) Retrieve(ctx context.Context, query, topic string) ([]string, error) {
	if !e.loaded {
		return nil, ErrStoreNotLoaded
	}

	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored, err := e.store.SearchNearVector(ctx, vector, e.fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	applyFilter := types.IsCanonicalTopic(topic)

	var contents []string
	for _, sc := range scored {
		if applyFilter && sc.Chunk.Metadata.Title != topic {
			continue
		}
		contents = append(contents, sc.Chunk.Content)
		if len(contents) == e.topK {
			break
		}
	}
	return contents, nil
}

// RetrieveFormatted renders the retrieved chunks as one context block for
// the responder prompt.
func (e *RAGEngine) RetrieveFormatted(ctx context.Context, query, topic string) (string, error) {
	chunks, err := e.Retrieve(ctx, query, topic)
	if err != nil {
		return "", err
	}
	return strings.Join(chunks, "\n\n---\n\n"), nil
}

package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/vivekcarvalho/profile-chatbot-be/config"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "ProfileChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "title", DataType: []string{"text"}},
			{Name: "header", DataType: []string{"text"}},
			{Name: "subheader", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "tokens", DataType: []string{"int"}},
		},
		// Vectors are computed by our embedding service, not a weaviate module.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore persists enriched chunks with their embedding vectors and
// serves top-k nearest-neighbour search. The topic filter is NOT applied
// here: serving uses over-fetch-then-filter, so search stays unfiltered.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(cfg config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(cfg.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(cfg.Host, scheme+"://")
	wcfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{
			Value: cfg.APIKey,
		}
		wcfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     cfg.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateStore{client: client}, nil
}

// ClassExists reports whether the chunk class has been created, i.e.
// whether ingestion has run at least once.
func (s *WeaviateStore) ClassExists(ctx context.Context) (bool, error) {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			return true, nil
		}
	}
	return false, nil
}

// EnsureClass creates the chunk class if it does not exist yet.
func (s *WeaviateStore) EnsureClass(ctx context.Context) error {
	exists, err := s.ClassExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	return nil
}

// ReInit drops and recreates the chunk class. Re-ingestion replaces the
// whole chunk set.
func (s *WeaviateStore) ReInit(ctx context.Context) error {
	exists, err := s.ClassExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(ctx); err != nil {
			return fmt.Errorf("failed to delete %s class: %w", CHUNK_CLASS, err)
		}
	}
	if err := s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(ctx); err != nil {
		return fmt.Errorf("failed to create %s class: %w", CHUNK_CLASS, err)
	}
	return nil
}

// BatchInsertChunks stores chunks with their precomputed vectors.
// chunks and vectors must be the same length.
func (s *WeaviateStore) BatchInsertChunks(ctx context.Context, chunks []types.EnrichedChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d != %d", len(chunks), len(vectors))
	}
	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			properties := map[string]interface{}{
				"content":   chunks[j].Content,
				"title":     chunks[j].Metadata.Title,
				"header":    chunks[j].Metadata.Header,
				"subheader": chunks[j].Metadata.Subheader,
				"source":    chunks[j].Metadata.Source,
				"tokens":    chunks[j].Metadata.Tokens,
			}
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: properties,
				Vector:     vectors[j],
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		log.Printf("Inserted batch %d-%d of %d chunks", i, end, total)
	}
	return nil
}

// SearchNearVector returns up to limit chunks ordered by ascending vector
// distance. No metadata filter is applied; callers filter afterwards.
func (s *WeaviateStore) SearchNearVector(ctx context.Context, vector []float32, limit int) ([]types.ScoredChunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "title"},
		{Name: "header"},
		{Name: "subheader"},
		{Name: "source"},
		{Name: "tokens"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var scored []types.ScoredChunk
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			doc, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			chunk := types.EnrichedChunk{
				Content: asString(doc["content"]),
				Metadata: types.ChunkMetadata{
					Title:     asString(doc["title"]),
					Header:    asString(doc["header"]),
					Subheader: asString(doc["subheader"]),
					Source:    asString(doc["source"]),
					Tokens:    asInt(doc["tokens"]),
				},
			}
			var distance float32
			if additional, ok := doc["_additional"].(map[string]interface{}); ok {
				if d, ok := additional["distance"].(float64); ok {
					distance = float32(d)
				}
			}
			scored = append(scored, types.ScoredChunk{Chunk: chunk, Distance: distance})
		}
	}
	return scored, nil
}

// Helper functions
func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

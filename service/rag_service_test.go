package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

type stubEmbedder struct {
	queryErr error
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubSearcher struct {
	exists    bool
	existsErr error
	results   []types.ScoredChunk
	searchErr error
	lastLimit int
}

func (s *stubSearcher) ClassExists(ctx context.Context) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubSearcher) SearchNearVector(ctx context.Context, vector []float32, limit int) ([]types.ScoredChunk, error) {
	s.lastLimit = limit
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.results, nil
}

func scoredChunk(content, title string, distance float32) types.ScoredChunk {
	return types.ScoredChunk{
		Chunk: types.EnrichedChunk{
			Content:  content,
			Metadata: types.ChunkMetadata{Title: title},
		},
		Distance: distance,
	}
}

func TestRetrieveBeforeLoadFails(t *testing.T) {
	engine := NewRAGEngine(&stubSearcher{exists: true}, &stubEmbedder{}, 4, 20)

	_, err := engine.Retrieve(context.Background(), "anything", "Skills")
	assert.ErrorIs(t, err, ErrStoreNotLoaded)
}

func TestLoadFailsWhenClassMissing(t *testing.T) {
	engine := NewRAGEngine(&stubSearcher{exists: false}, &stubEmbedder{}, 4, 20)

	err := engine.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest")
}

func TestRetrieveFetchesThenFilters(t *testing.T) {
	store := &stubSearcher{
		exists: true,
		results: []types.ScoredChunk{
			scoredChunk("about hobbies", "Hobbies", 0.1),
			scoredChunk("skills one", "Skills", 0.2),
			scoredChunk("about education", "Education", 0.3),
			scoredChunk("skills two", "Skills", 0.4),
			scoredChunk("skills three", "Skills", 0.5),
		},
	}
	engine := NewRAGEngine(store, &stubEmbedder{}, 2, 20)
	require.NoError(t, engine.Load(context.Background()))

	chunks, err := engine.Retrieve(context.Background(), "what skills?", "Skills")
	require.NoError(t, err)

	// Over-fetch by similarity, then filter, then cap at top-k.
	assert.Equal(t, 20, store.lastLimit)
	assert.Equal(t, []string{"skills one", "skills two"}, chunks)
}

func TestRetrieveUnfilteredForNonCanonicalTopic(t *testing.T) {
	store := &stubSearcher{
		exists: true,
		results: []types.ScoredChunk{
			scoredChunk("a", "Hobbies", 0.1),
			scoredChunk("b", "Skills", 0.2),
		},
	}
	engine := NewRAGEngine(store, &stubEmbedder{}, 4, 20)
	require.NoError(t, engine.Load(context.Background()))

	chunks, err := engine.Retrieve(context.Background(), "anything", types.TopicOffTopic)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, chunks)
}

func TestRetrieveEmptyResultIsNotAnError(t *testing.T) {
	store := &stubSearcher{
		exists: true,
		results: []types.ScoredChunk{
			scoredChunk("about hobbies", "Hobbies", 0.1),
		},
	}
	engine := NewRAGEngine(store, &stubEmbedder{}, 4, 20)
	require.NoError(t, engine.Load(context.Background()))

	chunks, err := engine.Retrieve(context.Background(), "skills?", "Skills")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRetrieveFormattedJoinsWithSeparator(t *testing.T) {
	store := &stubSearcher{
		exists: true,
		results: []types.ScoredChunk{
			scoredChunk("first", "Skills", 0.1),
			scoredChunk("second", "Skills", 0.2),
		},
	}
	engine := NewRAGEngine(store, &stubEmbedder{}, 4, 20)
	require.NoError(t, engine.Load(context.Background()))

	block, err := engine.RetrieveFormatted(context.Background(), "skills?", "Skills")
	require.NoError(t, err)
	assert.Equal(t, "first\n\n---\n\nsecond", block)
}

func TestRetrieveWrapsEmbedderAndSearchErrors(t *testing.T) {
	embedDown := NewRAGEngine(&stubSearcher{exists: true}, &stubEmbedder{queryErr: errors.New("embed down")}, 4, 20)
	require.NoError(t, embedDown.Load(context.Background()))
	_, err := embedDown.Retrieve(context.Background(), "q", "Skills")
	assert.ErrorContains(t, err, "embed")

	searchDown := NewRAGEngine(&stubSearcher{exists: true, searchErr: errors.New("boom")}, &stubEmbedder{}, 4, 20)
	require.NoError(t, searchDown.Load(context.Background()))
	_, err = searchDown.Retrieve(context.Background(), "q", "Skills")
	assert.ErrorContains(t, err, "search")
}

func TestNewRAGEngineDefaults(t *testing.T) {
	engine := NewRAGEngine(&stubSearcher{}, &stubEmbedder{}, 0, 0)
	assert.Equal(t, 4, engine.topK)
	assert.Equal(t, 20, engine.fetchK)
}

func TestRetrieveTruncationKeepsSimilarityOrder(t *testing.T) {
	var results []types.ScoredChunk
	for i := 0; i < 10; i++ {
		results = append(results, scoredChunk(fmt.Sprintf("chunk %d", i), "Skills", float32(i)))
	}
	store := &stubSearcher{exists: true, results: results}
	engine := NewRAGEngine(store, &stubEmbedder{}, 3, 20)
	require.NoError(t, engine.Load(context.Background()))

	chunks, err := engine.Retrieve(context.Background(), "q", "Skills")
	require.NoError(t, err)
	assert.Equal(t, []string{"chunk 0", "chunk 1", "chunk 2"}, chunks)
}

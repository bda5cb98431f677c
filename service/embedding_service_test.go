package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// newEmbeddingsServer serves an OpenAI-compatible /embeddings endpoint and
// records the inputs of the last request. Embeddings are returned out of
// index order to exercise the reordering in the client.
func newEmbeddingsServer(t *testing.T, lastInputs *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)
		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*lastInputs = req.Input

		data := make([]map[string]interface{}, len(req.Input))
		for i := range req.Input {
			// Reverse order on the wire; index fields stay correct.
			pos := len(req.Input) - 1 - i
			data[i] = map[string]interface{}{
				"object":    "embedding",
				"index":     pos,
				"embedding": []float32{float32(pos), 0.5},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
}

func TestNewOpenAIEmbeddingServiceRequiresKeyAndModel(t *testing.T) {
	_, err := NewOpenAIEmbeddingService("", "", "text-embedding-3-small")
	assert.Error(t, err)

	_, err = NewOpenAIEmbeddingService("", "sk-test", "")
	assert.Error(t, err)
}

func TestEmbedDocumentsOrdersByIndex(t *testing.T) {
	var inputs []string
	server := newEmbeddingsServer(t, &inputs)
	defer server.Close()

	svc, err := NewOpenAIEmbeddingService(server.URL, "sk-test", "text-embedding-3-small")
	require.NoError(t, err)

	vectors, err := svc.EmbedDocuments(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// Vector i carries its index as the first component.
	for i, v := range vectors {
		assert.Equal(t, float32(i), v[0])
	}
	assert.Equal(t, []string{"first", "second", "third"}, inputs)
}

func TestEmbedDocumentsEmptyInputIsNoop(t *testing.T) {
	svc, err := NewOpenAIEmbeddingService("http://unused", "sk-test", "text-embedding-3-small")
	require.NoError(t, err)

	vectors, err := svc.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestNomicModelsGetAsymmetricPrefixes(t *testing.T) {
	var inputs []string
	server := newEmbeddingsServer(t, &inputs)
	defer server.Close()

	svc, err := NewOpenAIEmbeddingService(server.URL, "sk-test", "nomic-embed-text-v1.5")
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "what skills?")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "search_query: what skills?", inputs[0])

	_, err = svc.EmbedDocuments(context.Background(), []string{"chunk body"})
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "search_document: chunk body", inputs[0])
}

func TestOpenAIModelsAreNotPrefixed(t *testing.T) {
	var inputs []string
	server := newEmbeddingsServer(t, &inputs)
	defer server.Close()

	svc, err := NewOpenAIEmbeddingService(server.URL, "sk-test", "text-embedding-3-small")
	require.NoError(t, err)

	_, err = svc.EmbedQuery(context.Background(), "plain query")
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, "plain query", inputs[0])
}

package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

func newTestChunker(t *testing.T, size, overlap int) *ChunkerService {
	t.Helper()
	chunker, err := NewChunkerService(types.ChunkerConfig{ChunkSize: size, ChunkOverlap: overlap})
	require.NoError(t, err)
	return chunker
}

func body(text string) types.StructuralElement {
	return types.StructuralElement{Text: text, Category: types.CategoryBody, SourceName: "profile.docx"}
}

func titled(text string) types.StructuralElement {
	return types.StructuralElement{Text: text, Category: types.CategoryTitle, SourceName: "profile.docx"}
}

func header(text string) types.StructuralElement {
	return types.StructuralElement{Text: text, Category: types.CategoryHeader, SourceName: "profile.docx"}
}

func TestChunkShortSectionProducesSingleChunk(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		titled("Skills"),
		body("Go, Python and distributed systems."),
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Skills", chunks[0].Metadata.Title)
	assert.Equal(t, "profile.docx", chunks[0].Metadata.Source)
	assert.Contains(t, chunks[0].Content, "Content: Go, Python and distributed systems.")
}

func TestChunkPrefixLineFormat(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		titled("Education"),
		header("Masters"),
		{Text: "THESIS", Category: types.CategoryBody, VisualHints: types.VisualHints{IsAllCaps: true}, SourceName: "profile.docx"},
		body("Graph neural networks for retrieval."),
	})

	require.Len(t, chunks, 1)
	wantPrefix := "Source: profile.docx > Context: Education > Section: Masters > Sub-Section: THESIS\nContent: "
	assert.True(t, strings.HasPrefix(chunks[0].Content, wantPrefix), chunks[0].Content)
	assert.Equal(t, "THESIS", chunks[0].Metadata.Subheader)
}

func TestChunkHierarchyResets(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		titled("Job Summary"),
		header("Acme Corp"),
		body("Led the platform team."),
		titled("Hobbies"),
		body("Trail running."),
	})

	require.Len(t, chunks, 2)
	assert.Equal(t, "Job Summary", chunks[0].Metadata.Title)
	assert.Equal(t, "Acme Corp", chunks[0].Metadata.Header)
	// A new title clears both header and subheader.
	assert.Equal(t, "Hobbies", chunks[1].Metadata.Title)
	assert.Equal(t, "", chunks[1].Metadata.Header)
	assert.Equal(t, "", chunks[1].Metadata.Subheader)
}

func TestChunkCategoryCorrection(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		titled("Project Details"),
		// Bold body text acts as a header.
		{Text: "Search Platform", Category: types.CategoryBody, VisualHints: types.VisualHints{IsBold: true}, SourceName: "profile.docx"},
		body("Built a vector search service."),
		// All-caps with a leading digit also acts as a header.
		{Text: "2ND GENERATION PIPELINE", Category: types.CategoryBody, VisualHints: types.VisualHints{IsAllCaps: true, StartsWithDigit: true}, SourceName: "profile.docx"},
		body("Rewrote ingestion for streaming."),
	})

	require.Len(t, chunks, 2)
	assert.Equal(t, "Search Platform", chunks[0].Metadata.Header)
	assert.Equal(t, "2ND GENERATION PIPELINE", chunks[1].Metadata.Header)
}

func TestChunkBodyBeforeAnyTitleUsesUnknownTitle(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		body("Orphan paragraph."),
	})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Unknown Title", chunks[0].Metadata.Title)
}

func TestChunkSkipsBlankElementsAndEmptySections(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		titled("Skills"),
		{Text: "   ", Category: types.CategoryBody, SourceName: "profile.docx"},
		titled("Education"),
	})

	assert.Empty(t, chunks)
}

func TestChunkOversizedSectionIsSplitWithMetadataPreserved(t *testing.T) {
	chunker := newTestChunker(t, 40, 10)

	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf("Paragraph %d about a long running project with plenty of detail.", i))
	}

	elements := []types.StructuralElement{titled("Project Details")}
	for _, p := range paragraphs {
		elements = append(elements, body(p))
	}

	chunks := chunker.Chunk(elements)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.Equal(t, "Project Details", chunk.Metadata.Title)
		assert.True(t, strings.HasPrefix(chunk.Content, "Source: profile.docx > Context: Project Details"))
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
		// Stored token count audits the full prefixed content.
		assert.Equal(t, chunker.TokenCount(chunk.Content), chunk.Metadata.Tokens)
	}
}

func TestChunkSectionOrderIsFirstSeen(t *testing.T) {
	chunker := newTestChunker(t, 500, 50)

	chunks := chunker.Chunk([]types.StructuralElement{
		titled("Introduction"),
		body("An overview."),
		titled("Skills"),
		body("Go."),
	})

	require.Len(t, chunks, 2)
	assert.Equal(t, "Introduction", chunks[0].Metadata.Title)
	assert.Equal(t, "Skills", chunks[1].Metadata.Title)
}

func TestSplitWithReconstructsText(t *testing.T) {
	chunker := newTestChunker(t, 20, 0)

	text := "First sentence here. Second sentence follows. Third sentence ends."
	pieces := chunker.splitText(text)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.NotEmpty(t, strings.TrimSpace(p))
		assert.Contains(t, text, strings.TrimSpace(p))
	}
}

func TestMergeSplitsCarriesTrailingPiecesIntoNextChunk(t *testing.T) {
	// Each piece is a handful of tokens, well under the overlap budget,
	// so every flush must carry at least one trailing piece forward.
	chunker := newTestChunker(t, 10, 5)

	splits := []string{
		"one two three ",
		"four five six ",
		"seven eight nine ",
		"ten eleven twelve ",
	}
	chunks := chunker.mergeSplits(splits)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i := 0; i < len(chunks)-1; i++ {
		carried := false
		for _, piece := range splits {
			p := strings.TrimSpace(piece)
			if strings.HasSuffix(chunks[i], p) && strings.HasPrefix(chunks[i+1], p) {
				carried = true
				break
			}
		}
		assert.True(t, carried, "chunk %d tail not carried into chunk %d: %q | %q", i, i+1, chunks[i], chunks[i+1])
	}
}

func TestMergeSplitsNoOverlapWhenConfiguredZero(t *testing.T) {
	chunker := newTestChunker(t, 10, 0)

	splits := []string{
		"one two three ",
		"four five six ",
		"seven eight nine ",
		"ten eleven twelve ",
	}
	chunks := chunker.mergeSplits(splits)
	require.GreaterOrEqual(t, len(chunks), 2)

	// Concatenating the chunks reconstructs the input exactly once.
	joined := strings.Join(chunks, " ")
	for _, piece := range splits {
		assert.Equal(t, 1, strings.Count(joined, strings.TrimSpace(piece)))
	}
}

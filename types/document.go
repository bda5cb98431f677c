package types

// Structural element categories as produced by the document parser.
// Title/Header/Subheader drive the hierarchy tracking pass; anything else
// is treated as body text.
const (
	CategoryTitle     = "Title"
	CategoryHeader    = "Header"
	CategorySubheader = "Subheader"
	CategoryBody      = "NarrativeText"
)

// VisualHints carries the formatting cues the parser observed for an
// element. The chunker uses them to correct unreliable category labels.
type VisualHints struct {
	IsBold          bool `json:"is_bold"`
	IsAllCaps       bool `json:"is_all_caps"`
	StartsWithDigit bool `json:"starts_with_digit"`
}

// StructuralElement is one raw element of the parsed source document, in
// document order. Immutable once read.
type StructuralElement struct {
	Text        string      `json:"text"`
	Category    string      `json:"category"`
	VisualHints VisualHints `json:"visual_hints"`
	SourceName  string      `json:"source_name"`
}

// ChunkMetadata is the metadata persisted with every enriched chunk. Title
// doubles as the retrieval topic (see TopicFilterField).
type ChunkMetadata struct {
	Title     string `json:"title"`
	Header    string `json:"header"`
	Subheader string `json:"subheader"`
	Source    string `json:"source"`
	Tokens    int    `json:"tokens"`
}

// EnrichedChunk is the atomic unit of retrieval: a context-prefixed piece
// of section text plus its inherited hierarchy metadata. Never mutated
// after creation; re-ingestion replaces the whole set.
type EnrichedChunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ScoredChunk is a retrieval candidate with its vector distance
// (smaller is more similar).
type ScoredChunk struct {
	Chunk    EnrichedChunk
	Distance float32
}

// ChunkerConfig contains configuration for the hierarchy chunker. Sizes
// are in tokens, not bytes.
type ChunkerConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`    // split threshold for an assembled section
	ChunkOverlap int `mapstructure:"chunk_overlap"` // tokens shared between consecutive sub-chunks
}

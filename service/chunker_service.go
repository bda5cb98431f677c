package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// 'cl100k_base' is the standard for modern embedding models.
const tokenEncoding = "cl100k_base"

// Separator cascade for oversized sections: paragraph break, line break,
// sentence, space, character. The earliest separator present in the text
// that keeps pieces under the size limit wins.
var splitSeparators = []string{"\n\n", "\n", ". ", " ", ""}

const unknownTitle = "Unknown Title"

var DefaultChunkerConfig = types.ChunkerConfig{
	ChunkSize:    500,
	ChunkOverlap: 50,
}

// ChunkerService turns an ordered stream of structural elements into
// hierarchy-aware, metadata-enriched chunks ready for embedding.
type ChunkerService struct {
	chunkSize    int // split threshold in tokens
	chunkOverlap int // token overlap between consecutive sub-chunks
	encoder      *tiktoken.Tiktoken
}

// NewChunkerService creates a chunker with the given token thresholds.
func NewChunkerService(cfg types.ChunkerConfig) (*ChunkerService, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkerConfig.ChunkSize
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = DefaultChunkerConfig.ChunkOverlap
	}
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", tokenEncoding, err)
	}
	return &ChunkerService{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		encoder:      encoder,
	}, nil
}

// TokenCount returns the number of tokens in text under the cl100k_base
// encoding, the same count stored in chunk metadata.
func (s *ChunkerService) TokenCount(text string) int {
	return len(s.encoder.Encode(text, nil, nil))
}

// hierarchyPath addresses one section of the source document at a moment
// of the element walk.
type hierarchyPath struct {
	source    string
	title     string
	header    string
	subheader string
}

// Chunk converts elements into enriched chunks:
//
//	pass 1 corrects categories from visual cues,
//	pass 2 walks the hierarchy and accumulates body text per path,
//	pass 3 assembles each path's section,
//	pass 4 splits oversized sections and prefixes every piece with its
//	       human-readable context line.
//
// Elements with empty text are skipped; paths with no body text produce
// no chunk.
func (s *ChunkerService) Chunk(elements []types.StructuralElement) []types.EnrichedChunk {
	sections := make(map[hierarchyPath][]string)
	var order []hierarchyPath

	currentTitle := unknownTitle
	currentHeader := ""
	currentSubheader := ""

	for _, el := range elements {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}

		category := correctCategory(el)

		switch category {
		case types.CategoryTitle:
			currentTitle = text
			currentHeader, currentSubheader = "", ""
		case types.CategoryHeader:
			currentHeader = text
			currentSubheader = ""
		case types.CategorySubheader:
			currentSubheader = text
		default:
			source := el.SourceName
			if source == "" {
				source = "Unknown Source"
			}
			path := hierarchyPath{
				source:    source,
				title:     currentTitle,
				header:    currentHeader,
				subheader: currentSubheader,
			}
			if _, seen := sections[path]; !seen {
				order = append(order, path)
			}
			sections[path] = append(sections[path], text)
		}
	}

	var chunks []types.EnrichedChunk
	for _, path := range order {
		fullSection := strings.Join(sections[path], "\n\n")

		var subChunks []string
		if s.TokenCount(fullSection) < s.chunkSize {
			subChunks = []string{fullSection}
		} else {
			subChunks = s.splitText(fullSection)
		}

		for _, sub := range subChunks {
			if strings.TrimSpace(sub) == "" {
				continue
			}
			content := fmt.Sprintf(
				"Source: %s > Context: %s > Section: %s > Sub-Section: %s\nContent: %s",
				path.source, path.title, path.header, path.subheader, sub,
			)
			chunks = append(chunks, types.EnrichedChunk{
				Content: content,
				Metadata: types.ChunkMetadata{
					Title:     path.title,
					Header:    path.header,
					Subheader: path.subheader,
					Source:    path.source,
					Tokens:    s.TokenCount(content),
				},
			})
		}
	}

	log.Printf("Chunked %d elements into %d enriched chunks", len(elements), len(chunks))
	return chunks
}

// correctCategory compensates for unreliable upstream structural detection:
// bold text, or all-caps with a leading digit, usually acts as a Header;
// all-caps alone usually acts as a Subheader. Titles are trusted as-is.
func correctCategory(el types.StructuralElement) string {
	if el.Category == types.CategoryTitle {
		return el.Category
	}
	hints := el.VisualHints
	if hints.IsBold || (hints.IsAllCaps && hints.StartsWithDigit) {
		return types.CategoryHeader
	}
	if hints.IsAllCaps {
		return types.CategorySubheader
	}
	return el.Category
}

// splitText splits an oversized section with the separator cascade,
// keeping the configured token overlap between consecutive pieces.
func (s *ChunkerService) splitText(text string) []string {
	return s.splitWith(text, splitSeparators)
}

func (s *ChunkerService) splitWith(text string, separators []string) []string {
	// Pick the first separator present in the text; "" means per-rune.
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep, rest = "", nil
			break
		}
		if strings.Contains(text, candidate) {
			sep, rest = candidate, separators[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		for _, r := range text {
			splits = append(splits, string(r))
		}
	} else {
		// SplitAfter keeps the separator attached so concatenating the
		// pieces reconstructs the original text exactly.
		splits = strings.SplitAfter(text, sep)
	}

	var chunks []string
	var pending []string
	for _, piece := range splits {
		if s.TokenCount(piece) < s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			chunks = append(chunks, s.mergeSplits(pending)...)
			pending = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, strings.TrimSpace(piece))
		} else {
			chunks = append(chunks, s.splitWith(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		chunks = append(chunks, s.mergeSplits(pending)...)
	}
	return chunks
}

// mergeSplits packs small pieces into chunks up to the size threshold.
// When a chunk is emitted, trailing pieces worth at least chunkOverlap
// tokens are carried into the next chunk.
func (s *ChunkerService) mergeSplits(splits []string) []string {
	var chunks []string
	var current []string
	total := 0

	flush := func() {
		chunk := strings.TrimSpace(strings.Join(current, ""))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range splits {
		n := s.TokenCount(piece)
		if total+n > s.chunkSize && len(current) > 0 {
			flush()
			for total > s.chunkOverlap && len(current) > 0 {
				total -= s.TokenCount(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if len(current) > 0 {
		flush()
	}
	return chunks
}

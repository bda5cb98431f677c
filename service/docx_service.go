package service

import (
	"archive/zip"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// DocumentService turns profile documents into structural elements for
// the chunker. It understands .docx archives directly and .json files
// holding pre-extracted elements.
type DocumentService struct{}

func NewDocumentService() *DocumentService {
	return &DocumentService{}
}

// ParseFile dispatches on the file extension.
func (s *DocumentService) ParseFile(path string) ([]types.StructuralElement, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return s.ParseDocx(path)
	case ".json":
		return s.ParseElementsJSON(path)
	default:
		return nil, fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

// ParseElementsJSON loads a pre-extracted element list.
func (s *DocumentService) ParseElementsJSON(path string) ([]types.StructuralElement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read elements file: %w", err)
	}
	var elements []types.StructuralElement
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("failed to parse elements file: %w", err)
	}
	source := filepath.Base(path)
	for i := range elements {
		if elements[i].SourceName == "" {
			elements[i].SourceName = source
		}
	}
	return elements, nil
}

// docx XML subset. Only paragraphs, their style and run formatting
// matter here; everything else in word/document.xml is skipped.
type docxDocument struct {
	Body docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
}

type docxParagraph struct {
	Properties docxParaProps `xml:"pPr"`
	Runs       []docxRun     `xml:"r"`
}

type docxParaProps struct {
	Style docxStyle `xml:"pStyle"`
}

type docxStyle struct {
	Val string `xml:"val,attr"`
}

type docxRun struct {
	Properties docxRunProps `xml:"rPr"`
	Texts      []string     `xml:"t"`
}

type docxRunProps struct {
	Bold *struct{} `xml:"b"`
}

// ParseDocx reads word/document.xml out of the archive and emits one
// element per non-empty paragraph, carrying the visual hints the
// chunker's correction pass keys on.
func (s *DocumentService) ParseDocx(path string) ([]types.StructuralElement, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}
	defer reader.Close()

	var doc docxDocument
	found := false
	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open document.xml: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read document.xml: %w", err)
		}
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("no word/document.xml in %s", path)
	}

	source := filepath.Base(path)
	var elements []types.StructuralElement
	for _, p := range doc.Body.Paragraphs {
		text, allBold := collapseRuns(p.Runs)
		if strings.TrimSpace(text) == "" {
			continue
		}
		text = strings.TrimSpace(text)
		elements = append(elements, types.StructuralElement{
			Text:     text,
			Category: categoryForStyle(p.Properties.Style.Val),
			VisualHints: types.VisualHints{
				IsBold:          allBold,
				IsAllCaps:       isAllCaps(text),
				StartsWithDigit: startsWithDigit(text),
			},
			SourceName: source,
		})
	}
	return elements, nil
}

// collapseRuns joins run text and reports whether every run with real
// text is bold. A paragraph with no text is not bold.
func collapseRuns(runs []docxRun) (string, bool) {
	var sb strings.Builder
	allBold := true
	hasText := false
	for _, r := range runs {
		text := strings.Join(r.Texts, "")
		sb.WriteString(text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		hasText = true
		if r.Properties.Bold == nil {
			allBold = false
		}
	}
	return sb.String(), hasText && allBold
}

func categoryForStyle(style string) string {
	switch {
	case style == "Title":
		return types.CategoryTitle
	case strings.HasPrefix(style, "Heading1") || style == "Heading1":
		return types.CategoryHeader
	case strings.HasPrefix(style, "Heading"):
		return types.CategorySubheader
	default:
		return types.CategoryBody
	}
}

// isAllCaps reports whether text contains letters and none of them are
// lowercase. Short tokens like "AI" stay body text, matching the
// chunker's length guard.
func isAllCaps(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter && len(strings.TrimSpace(text)) > 3
}

func startsWithDigit(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	return unicode.IsDigit(rune(trimmed[0]))
}

// Package chunking splits raw document text into ordered chunks.
package chunking

import (
	"regexp"
	"strings"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// DefaultChunkSize is the paragraph chunk size used for ingestion.
const DefaultChunkSize = 1000

// paragraphJoiner separates paragraphs grouped into one chunk.
const paragraphJoiner = "\n\n"

var blankLines = regexp.MustCompile(`\n[ \t\r]*\n\s*`)

// ByCharacters splits text into windows of at most chunkSize characters, each
// window starting chunkSize-overlap characters after the previous one, until a
// start position reaches the end of the text. Windows are cut short only by the
// end of the text, so the trailing ones may lie inside the window before them.
func ByCharacters(text string, chunkSize, overlap int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}
	if chunkSize <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, domain.ErrInvalidOverlap
	}

	runes := []rune(text)
	step := chunkSize - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for pos := 0; pos < len(runes); pos += step {
		end := pos + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[pos:end]))
	}

	return chunks, nil
}

// ByParagraphs groups blank-line separated paragraphs into chunks of at most
// maxChunkSize characters. Paragraphs longer than maxChunkSize are split with
// ByCharacters using a 10% overlap.
func ByParagraphs(text string, maxChunkSize int) ([]string, error) {
	if maxChunkSize <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	chunks := make([]string, 0, 8)
	var group []string
	groupLen := 0

	flush := func() {
		if len(group) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(group, paragraphJoiner))
		group = nil
		groupLen = 0
	}

	for _, paragraph := range splitParagraphs(text) {
		length := runeLen(paragraph)

		if length > maxChunkSize {
			flush()
			pieces, err := ByCharacters(paragraph, maxChunkSize, maxChunkSize/10)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, pieces...)
			continue
		}

		added := length
		if len(group) > 0 {
			added += len(paragraphJoiner)
		}
		if groupLen+added > maxChunkSize && len(group) > 0 {
			flush()
			added = length
		}

		group = append(group, paragraph)
		groupLen += added
	}
	flush()

	return chunks, nil
}

func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	raw := blankLines.Split(normalized, -1)

	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func runeLen(s string) int {
	return len([]rune(s))
}

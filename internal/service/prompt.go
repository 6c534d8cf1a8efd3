package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/docqa/internal/domain"
)

// SystemPrompt restricts the model to the supplied context.
const SystemPrompt = "You are a helpful assistant that answers questions using only the provided context. " +
	"Each context passage is labeled with its rank and source document. " +
	"If the context does not contain the answer, say \"I don't know\". " +
	"Do not use outside knowledge and do not make up sources."

const citationPreviewRunes = 100

// buildContext renders the retained hits as ranked context passages and returns
// the matching citations. Hits with empty chunk text are skipped and do not
// consume a rank.
func buildContext(hits []domain.SearchHit) (string, []string) {
	passages := make([]string, 0, len(hits))
	citations := make([]string, 0, len(hits))

	for _, hit := range hits {
		text := hit.Metadata.ChunkText
		if text == "" {
			continue
		}
		rank := len(passages) + 1
		passages = append(passages, fmt.Sprintf("[%d] (Source: %s)\n%s", rank, hit.Metadata.FileName, text))
		citations = append(citations, buildCitation(hit.Metadata.FileName, text))
	}

	return strings.Join(passages, "\n\n"), citations
}

// buildCitation formats "<fileName>: <preview>" where the preview is cut at
// citationPreviewRunes characters.
func buildCitation(fileName, text string) string {
	runes := []rune(text)
	if len(runes) > citationPreviewRunes {
		text = string(runes[:citationPreviewRunes]) + "..."
	}
	return fileName + ": " + text
}

func buildMessages(contextBlock, question string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: SystemPrompt},
		{Role: domain.ChatRoleUser, Content: "Context:\n" + contextBlock + "\n\nQuestion: " + question},
	}
}

package domain

// ChatRole is the role of a message in a chat prompt.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the ordered prompt sent to the chat provider.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// CompletionParams holds the sampling parameters for a chat completion.
type CompletionParams struct {
	Temperature     float32
	MaxOutputTokens int
}

// AnswerResult is a generated answer plus one citation per retained search hit,
// in descending similarity order.
type AnswerResult struct {
	Answer    string
	Citations []string
}

// IngestResult reports the outcome of a document ingestion.
type IngestResult struct {
	FileName      string
	ChunksCreated int
	Success       bool
	ErrorMessage  string
}

// NewFailedIngestResult builds a failed IngestResult.
func NewFailedIngestResult(fileName, message string) *IngestResult {
	return &IngestResult{
		FileName:      fileName,
		ChunksCreated: 0,
		Success:       false,
		ErrorMessage:  message,
	}
}

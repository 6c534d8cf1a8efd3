package domain

import "time"

// Chunk is an ordered segment of a source document. Chunks are computed during
// ingestion, embedded, stored and then discarded.
type Chunk struct {
	DocumentID string
	Index      int
	Text       string
}

// ChunkMetadata is the metadata persisted alongside every stored chunk.
type ChunkMetadata struct {
	FileName   string
	DocumentID string
	ChunkIndex int
	ChunkText  string
}

// StoredChunk is the persisted form of a chunk together with its embedding.
type StoredChunk struct {
	ID        string
	Metadata  ChunkMetadata
	Embedding []float32
	CreatedAt time.Time
}

// SearchHit is a single similarity search result. Score is 1 - cosine distance,
// so higher means more similar.
type SearchHit struct {
	ID       string
	Score    float32
	Metadata ChunkMetadata
}

// SearchFilter narrows a similarity search.
type SearchFilter struct {
	TopK       int
	FileName   string
	DocumentID string
}

// NewChunks numbers texts in order as the chunks of documentID.
func NewChunks(documentID string, texts []string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{DocumentID: documentID, Index: i, Text: text}
	}
	return chunks
}

// Metadata returns the metadata stored with c for a document named fileName.
func (c Chunk) Metadata(fileName string) ChunkMetadata {
	return NewChunkMetadata(fileName, c.DocumentID, c.Index, c.Text)
}

// NewChunkMetadata creates the metadata for chunk index of a document.
func NewChunkMetadata(fileName, documentID string, index int, text string) ChunkMetadata {
	return ChunkMetadata{
		FileName:   fileName,
		DocumentID: documentID,
		ChunkIndex: index,
		ChunkText:  text,
	}
}

// ValidateChunkMetadata validates a ChunkMetadata instance
func ValidateChunkMetadata(m ChunkMetadata) error {
	if m.DocumentID == "" {
		return NewInvalidArgument("chunk DocumentID is required")
	}
	if m.FileName == "" {
		return NewInvalidArgument("chunk FileName is required")
	}
	if m.ChunkIndex < 0 {
		return NewInvalidArgument("chunk ChunkIndex cannot be negative")
	}
	return nil
}

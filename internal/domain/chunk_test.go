package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChunkMetadata(t *testing.T) {
	m := NewChunkMetadata("guide.md", "guide.md", 2, "Refunds take five days.")

	assert.Equal(t, "guide.md", m.FileName)
	assert.Equal(t, "guide.md", m.DocumentID)
	assert.Equal(t, 2, m.ChunkIndex)
	assert.Equal(t, "Refunds take five days.", m.ChunkText)
}

func TestValidateChunkMetadata(t *testing.T) {
	tests := []struct {
		name    string
		meta    ChunkMetadata
		wantErr string
	}{
		{"valid", NewChunkMetadata("a.txt", "a.txt", 0, "text"), ""},
		{"empty chunk text is allowed", NewChunkMetadata("a.txt", "a.txt", 1, ""), ""},
		{"missing document id", NewChunkMetadata("a.txt", "", 0, "text"), "DocumentID"},
		{"missing file name", NewChunkMetadata("", "a.txt", 0, "text"), "FileName"},
		{"negative index", NewChunkMetadata("a.txt", "a.txt", -1, "text"), "ChunkIndex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunkMetadata(tt.meta)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestNewFailedIngestResult(t *testing.T) {
	r := NewFailedIngestResult("notes.txt", "document produced no chunks")

	assert.Equal(t, "notes.txt", r.FileName)
	assert.Zero(t, r.ChunksCreated)
	assert.False(t, r.Success)
	assert.Equal(t, "document produced no chunks", r.ErrorMessage)
}

func TestNewChunks(t *testing.T) {
	chunks := NewChunks("guide.md", []string{"first", "second"})

	assert.Equal(t, []Chunk{
		{DocumentID: "guide.md", Index: 0, Text: "first"},
		{DocumentID: "guide.md", Index: 1, Text: "second"},
	}, chunks)
	assert.Empty(t, NewChunks("guide.md", nil))
}

func TestChunk_Metadata(t *testing.T) {
	c := Chunk{DocumentID: "guide.md", Index: 3, Text: "Shipping is free."}

	assert.Equal(t, NewChunkMetadata("guide.md", "guide.md", 3, "Shipping is free."), c.Metadata("guide.md"))
}

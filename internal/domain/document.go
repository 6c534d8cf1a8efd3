package domain

import "time"

// Document summarizes an ingested document as currently stored.
type Document struct {
	ID         string
	FileName   string
	ChunkCount int
	CreatedAt  time.Time
}

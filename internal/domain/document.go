package domain

import "time"

// DocumentInfo describes one uploaded document as stored.
type DocumentInfo struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"username"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunkCount"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DocumentChunk is one embedded slice of an uploaded document.
type DocumentChunk struct {
	Text   string
	Vector []float32
}

// Document is a retrieved chunk of an owner's uploaded content.
// Documents are immutable once produced by retrieval; sanitization
// returns new values rather than mutating in place.
type Document struct {
	ID        string
	Text      string
	OwnerID   string
	Score     float64 // similarity, 0.0-1.0
	Metadata  map[string]string
	PIIMasked bool
}

// WithText returns a copy of the document carrying new text and the
// masked flag set. Score and metadata are preserved.
func (d Document) WithText(text string) Document {
	out := d
	out.Text = text
	out.PIIMasked = true
	return out
}

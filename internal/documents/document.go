// Package documents implements document intake for the wizard.
// It turns an uploaded file into a Document holding the plain text that
// every analysis operation reads.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Accepted document content types.
const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
)

// Document is an uploaded legal text. Content is the extracted plain text;
// Size is the byte size of the original upload.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	PageCount   *int      `json:"page_count,omitempty"`
	SHA256      string    `json:"sha256"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Clone returns a copy of d that shares no pointers with it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	if d.PageCount != nil {
		n := *d.PageCount
		c.PageCount = &n
	}
	return &c
}

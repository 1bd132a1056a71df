package mdstream

import (
	"context"
	"time"
)

// Document is the persisted record of one conversion.
type Document struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	Strategy    Strategy  `json:"strategy"`
	ConvertedAt time.Time `json:"convertedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.SourceURL == "" {
		return Errorf(EINVALID, "document source URL required")
	}
	if _, err := ParseStrategy(string(d.Strategy)); err != nil {
		return err
	}
	return nil
}

// DocumentService represents a service for managing conversion records.
type DocumentService interface {
	// CreateDocument stores a new document. ID, ContentHash and ConvertedAt
	// are set by the service when empty.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// DeleteDocument permanently removes a document.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id string) error
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID          *string `json:"id"`
	SourceURL   *string `json:"sourceUrl"`
	ContentHash *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DocumentStore writes converted Markdown files under a directory.
type DocumentStore interface {
	// Save writes the document content to a path derived from its source URL.
	Save(ctx context.Context, doc *Document) error

	// Commit makes all saved files visible atomically.
	Commit() error

	// Abort discards all saved files.
	Abort() error
}

package document

import (
	"context"
	"time"
)

// Repository persists document versions.
type Repository interface {
	// Save appends a new version row.
	Save(ctx context.Context, doc *Document) error

	// FindLatestByID returns the newest version of the document.
	FindLatestByID(ctx context.Context, id string) (*Document, error)

	// FindVersionsByID returns all versions ascending by creation time.
	FindVersionsByID(ctx context.Context, id string) ([]*Document, error)

	// DeleteVersionsAfter removes versions newer than the timestamp.
	DeleteVersionsAfter(ctx context.Context, id string, after time.Time) error
}

// SuggestionRepository persists suggestions.
type SuggestionRepository interface {
	// SaveBatch inserts the suggestions.
	SaveBatch(ctx context.Context, suggestions []*Suggestion) error

	// ListByDocumentID returns suggestions for the document, oldest first.
	ListByDocumentID(ctx context.Context, documentID string) ([]*Suggestion, error)
}

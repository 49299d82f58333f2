package entities

import (
	"time"

	"chat-server/internal/domain/document"
)

// Document represents the database schema for documents. Versions share an
// id; the (id, created_at) pair identifies one version.
type Document struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"primaryKey"`

	UserID  string `gorm:"type:varchar(64);index;not null"`
	Title   string `gorm:"type:varchar(256);not null"`
	Kind    string `gorm:"type:varchar(10);not null;default:'text'"`
	Content string `gorm:"type:text"`
}

// TableName specifies the table name for Document.
func (Document) TableName() string {
	return "documents"
}

// Suggestion represents the database schema for document edit suggestions.
type Suggestion struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	DocumentID        string    `gorm:"type:uuid;index;not null"`
	DocumentCreatedAt time.Time `gorm:"not null"`
	UserID            string    `gorm:"type:varchar(64);not null"`
	OriginalText      string    `gorm:"type:text;not null"`
	SuggestedText     string    `gorm:"type:text;not null"`
	Description       string    `gorm:"type:text"`
	IsResolved        bool      `gorm:"not null;default:false"`
}

// TableName specifies the table name for Suggestion.
func (Suggestion) TableName() string {
	return "suggestions"
}

// NewSchemaDocument converts a domain document to its database representation.
func NewSchemaDocument(d *document.Document) *Document {
	return &Document{
		ID:        d.ID,
		CreatedAt: d.CreatedAt,
		UserID:    d.UserID,
		Title:     d.Title,
		Kind:      string(d.Kind),
		Content:   d.Content,
	}
}

// EtoD converts the entity to its domain representation.
func (e *Document) EtoD() *document.Document {
	return &document.Document{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Kind:      document.Kind(e.Kind),
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

// NewSchemaSuggestion converts a domain suggestion to its database
// representation.
func NewSchemaSuggestion(s *document.Suggestion) *Suggestion {
	return &Suggestion{
		ID:                s.ID,
		CreatedAt:         s.CreatedAt,
		DocumentID:        s.DocumentID,
		DocumentCreatedAt: s.DocumentCreatedAt,
		UserID:            s.UserID,
		OriginalText:      s.OriginalText,
		SuggestedText:     s.SuggestedText,
		Description:       s.Description,
		IsResolved:        s.IsResolved,
	}
}

// EtoD converts the entity to its domain representation.
func (e *Suggestion) EtoD() *document.Suggestion {
	return &document.Suggestion{
		ID:                e.ID,
		DocumentID:        e.DocumentID,
		DocumentCreatedAt: e.DocumentCreatedAt,
		UserID:            e.UserID,
		OriginalText:      e.OriginalText,
		SuggestedText:     e.SuggestedText,
		Description:       e.Description,
		IsResolved:        e.IsResolved,
		CreatedAt:         e.CreatedAt,
	}
}

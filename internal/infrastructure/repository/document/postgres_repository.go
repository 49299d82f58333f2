// Package document provides the postgres persistence for documents and
// suggestions.
package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"chat-server/internal/domain/apperrors"
	domain "chat-server/internal/domain/document"
	"chat-server/internal/infrastructure/database/entities"
)

// Repository persists document versions.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a document repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts one document version.
func (r *Repository) Save(ctx context.Context, d *domain.Document) error {
	entity := entities.NewSchemaDocument(d)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "save document", err)
	}
	return nil
}

// FindLatestByID fetches the newest version of the document.
func (r *Repository) FindLatestByID(ctx context.Context, id string) (*domain.Document, error) {
	var entity entities.Document
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at DESC").
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("document not found: %s", id))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "fetch document", err)
	}
	return entity.EtoD(), nil
}

// FindVersionsByID returns all versions of the document ascending by creation
// time.
func (r *Repository) FindVersionsByID(ctx context.Context, id string) ([]*domain.Document, error) {
	var rows []entities.Document
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list document versions", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("document not found: %s", id))
	}

	docs := make([]*domain.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].EtoD())
	}
	return docs, nil
}

// DeleteVersionsAfter removes versions created after the timestamp, together
// with their suggestions.
func (r *Repository) DeleteVersionsAfter(ctx context.Context, id string, after time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("document_id = ? AND document_created_at > ?", id, after).
			Delete(&entities.Suggestion{}).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete suggestions", err)
		}
		if err := tx.
			Where("id = ? AND created_at > ?", id, after).
			Delete(&entities.Document{}).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete document versions", err)
		}
		return nil
	})
}

// SuggestionRepository persists document edit suggestions.
type SuggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository builds a suggestion repository.
func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// SaveBatch inserts the suggestions.
func (r *SuggestionRepository) SaveBatch(ctx context.Context, suggestions []*domain.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	rows := make([]*entities.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, entities.NewSchemaSuggestion(s))
	}
	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "save suggestions", err)
	}
	return nil
}

// ListByDocumentID returns suggestions for the document ascending by creation
// time.
func (r *SuggestionRepository) ListByDocumentID(ctx context.Context, documentID string) ([]*domain.Suggestion, error) {
	var rows []entities.Suggestion
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list suggestions", err)
	}

	suggestions := make([]*domain.Suggestion, 0, len(rows))
	for i := range rows {
		suggestions = append(suggestions, rows[i].EtoD())
	}
	return suggestions, nil
}

var (
	_ domain.Repository           = (*Repository)(nil)
	_ domain.SuggestionRepository = (*SuggestionRepository)(nil)
)

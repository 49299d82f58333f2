// Package project provides the postgres persistence for projects and their
// reference files.
package project

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chat-server/internal/domain/apperrors"
	domain "chat-server/internal/domain/project"
	"chat-server/internal/infrastructure/database/entities"
)

// Repository persists projects.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a project repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the project record.
func (r *Repository) Create(ctx context.Context, p *domain.Project) error {
	entity := entities.NewSchemaProject(p)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "create project", err)
	}
	p.CreatedAt = entity.CreatedAt
	p.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByID fetches a project by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var entity entities.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("project not found: %s", id))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "fetch project", err)
	}
	return entity.EtoD(), nil
}

// ListByUser returns the user's projects newest-first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	var rows []entities.Project
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list projects", err)
	}

	projects := make([]*domain.Project, 0, len(rows))
	for i := range rows {
		projects = append(projects, rows[i].EtoD())
	}
	return projects, nil
}

// Update replaces the mutable project fields.
func (r *Repository) Update(ctx context.Context, p *domain.Project) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Project{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":         p.Name,
			"description":  p.Description,
			"instructions": p.Instructions,
			"updated_at":   p.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "update project", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("project not found: %s", p.ID))
	}
	return nil
}

// Delete removes the project and its files. Chats keep existing with their
// project reference cleared.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&entities.Chat{}).
			Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "detach project chats", err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&entities.ProjectFile{}).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete project files", err)
		}
		result := tx.Where("id = ?", id).Delete(&entities.Project{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete project", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("project not found: %s", id))
		}
		return nil
	})
}

// ListFiles returns the project's files ascending by creation time.
func (r *Repository) ListFiles(ctx context.Context, projectID string) ([]*domain.File, error) {
	var rows []entities.ProjectFile
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list project files", err)
	}

	files := make([]*domain.File, 0, len(rows))
	for i := range rows {
		files = append(files, rows[i].EtoD())
	}
	return files, nil
}

// AddFile inserts a project file record.
func (r *Repository) AddFile(ctx context.Context, f *domain.File) error {
	entity := entities.NewSchemaProjectFile(f)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "add project file", err)
	}
	return nil
}

// DeleteFile removes one project file.
func (r *Repository) DeleteFile(ctx context.Context, projectID, fileID string) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND id = ?", projectID, fileID).
		Delete(&entities.ProjectFile{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete project file", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("project file not found: %s", fileID))
	}
	return nil
}

var _ domain.Repository = (*Repository)(nil)

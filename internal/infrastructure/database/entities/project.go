package entities

import (
	"time"

	"chat-server/internal/domain/project"
)

// Project represents the database schema for projects.
type Project struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID       string `gorm:"type:varchar(64);index;not null"`
	Name         string `gorm:"type:varchar(256);not null"`
	Description  string `gorm:"type:text"`
	Instructions string `gorm:"type:text"`
}

// TableName specifies the table name for Project.
func (Project) TableName() string {
	return "projects"
}

// ProjectFile represents the database schema for project reference files.
type ProjectFile struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	ProjectID string `gorm:"type:uuid;index;not null"`
	Name      string `gorm:"type:varchar(256);not null"`
	Summary   string `gorm:"type:text"`
}

// TableName specifies the table name for ProjectFile.
func (ProjectFile) TableName() string {
	return "project_files"
}

// NewSchemaProject converts a domain project to its database representation.
func NewSchemaProject(p *project.Project) *Project {
	return &Project{
		ID:           p.ID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		UserID:       p.UserID,
		Name:         p.Name,
		Description:  p.Description,
		Instructions: p.Instructions,
	}
}

// EtoD converts the entity to its domain representation.
func (e *Project) EtoD() *project.Project {
	return &project.Project{
		ID:           e.ID,
		UserID:       e.UserID,
		Name:         e.Name,
		Description:  e.Description,
		Instructions: e.Instructions,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// NewSchemaProjectFile converts a domain project file to its database
// representation.
func NewSchemaProjectFile(f *project.File) *ProjectFile {
	return &ProjectFile{
		ID:        f.ID,
		CreatedAt: f.CreatedAt,
		ProjectID: f.ProjectID,
		Name:      f.Name,
		Summary:   f.Summary,
	}
}

// EtoD converts the entity to its domain representation.
func (e *ProjectFile) EtoD() *project.File {
	return &project.File{
		ID:        e.ID,
		ProjectID: e.ProjectID,
		Name:      e.Name,
		Summary:   e.Summary,
		CreatedAt: e.CreatedAt,
	}
}

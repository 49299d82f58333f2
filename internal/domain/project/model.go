// Package project groups chats under user-owned projects and builds the
// project context injected into the chat system prompt.
package project

import (
	"context"
	"time"
)

// Project is a user-owned grouping of chats with optional shared instructions.
type Project struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// File is an uploaded reference file attached to a project. Only the extracted
// text summary participates in prompt building.
type File struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists projects and their files.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	ListByUser(ctx context.Context, userID string) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error

	ListFiles(ctx context.Context, projectID string) ([]*File, error)
	AddFile(ctx context.Context, f *File) error
	DeleteFile(ctx context.Context, projectID, fileID string) error
}

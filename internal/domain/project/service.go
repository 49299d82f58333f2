package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
)

// ContextMaxChars caps the project context injected into the system prompt.
const ContextMaxChars = 8000

// Service is the project business logic.
type Service interface {
	Create(ctx context.Context, userID, name, description, instructions string) (*Project, error)
	Get(ctx context.Context, id, userID string) (*Project, error)
	List(ctx context.Context, userID string) ([]*Project, error)
	Update(ctx context.Context, id, userID, name, description, instructions string) (*Project, error)
	Delete(ctx context.Context, id, userID string) error

	ListFiles(ctx context.Context, projectID, userID string) ([]*File, error)
	AddFile(ctx context.Context, projectID, userID, name, summary string) (*File, error)
	DeleteFile(ctx context.Context, projectID, fileID, userID string) error

	// BuildContext assembles the prompt context for a chat that belongs to the
	// project. Empty string when the project does not exist or yields nothing.
	BuildContext(ctx context.Context, projectID string, relatedChatTitles []string) (string, error)
}

// DefaultService implements Service.
type DefaultService struct {
	repo Repository
	log  zerolog.Logger
}

// NewService wires dependencies.
func NewService(repo Repository, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		repo: repo,
		log:  log.With().Str("component", "project-service").Logger(),
	}
}

func (s *DefaultService) Create(ctx context.Context, userID, name, description, instructions string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.New(apperrors.CodeBadRequest, "project", "project name is required")
	}

	now := time.Now()
	p := &Project{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Description:  description,
		Instructions: instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

func (s *DefaultService) Get(ctx context.Context, id, userID string) (*Project, error) {
	return s.owned(ctx, id, userID)
}

func (s *DefaultService) List(ctx context.Context, userID string) ([]*Project, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *DefaultService) Update(ctx context.Context, id, userID, name, description, instructions string) (*Project, error) {
	p, err := s.owned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		p.Name = name
	}
	p.Description = description
	p.Instructions = instructions
	p.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *DefaultService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *DefaultService) ListFiles(ctx context.Context, projectID, userID string) ([]*File, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListFiles(ctx, projectID)
}

func (s *DefaultService) AddFile(ctx context.Context, projectID, userID, name, summary string) (*File, error) {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.New(apperrors.CodeBadRequest, "project", "file name is required")
	}

	f := &File{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		Summary:   summary,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AddFile(ctx, f); err != nil {
		return nil, fmt.Errorf("add project file: %w", err)
	}
	return f, nil
}

func (s *DefaultService) DeleteFile(ctx context.Context, projectID, fileID, userID string) error {
	if _, err := s.owned(ctx, projectID, userID); err != nil {
		return err
	}
	return s.repo.DeleteFile(ctx, projectID, fileID)
}

func (s *DefaultService) BuildContext(ctx context.Context, projectID string, relatedChatTitles []string) (string, error) {
	p, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return "", nil
		}
		return "", err
	}

	files, err := s.repo.ListFiles(ctx, projectID)
	if err != nil {
		s.log.Warn().Err(err).Str("project_id", projectID).Msg("listing project files for context failed")
		files = nil
	}

	var b strings.Builder
	b.WriteString("You are working within the project \"")
	b.WriteString(p.Name)
	b.WriteString("\".")
	if p.Description != "" {
		b.WriteString(" ")
		b.WriteString(p.Description)
	}
	b.WriteString("\n")

	if p.Instructions != "" {
		b.WriteString("\nProject instructions:\n")
		b.WriteString(p.Instructions)
		b.WriteString("\n")
	}

	if len(files) > 0 {
		b.WriteString("\nProject files:\n")
		for _, f := range files {
			b.WriteString("- ")
			b.WriteString(f.Name)
			if f.Summary != "" {
				b.WriteString(": ")
				b.WriteString(f.Summary)
			}
			b.WriteString("\n")
		}
	}

	if len(relatedChatTitles) > 0 {
		b.WriteString("\nOther conversations in this project:\n")
		for _, title := range relatedChatTitles {
			b.WriteString("- ")
			b.WriteString(title)
			b.WriteString("\n")
		}
	}

	return truncateContext(b.String(), ContextMaxChars), nil
}

func (s *DefaultService) owned(ctx context.Context, id, userID string) (*Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "project", "not the project owner")
	}
	return p, nil
}

func truncateContext(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut at the last full line that fits so the prompt never ends mid-entry.
	cut := s[:max]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx+1]
	}
	return cut
}

var _ Service = (*DefaultService)(nil)

package project_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/project"
)

type mockRepository struct {
	createFunc     func(ctx context.Context, p *project.Project) error
	findByIDFunc   func(ctx context.Context, id string) (*project.Project, error)
	listByUserFunc func(ctx context.Context, userID string) ([]*project.Project, error)
	updateFunc     func(ctx context.Context, p *project.Project) error
	deleteFunc     func(ctx context.Context, id string) error
	listFilesFunc  func(ctx context.Context, projectID string) ([]*project.File, error)
	addFileFunc    func(ctx context.Context, f *project.File) error
	deleteFileFunc func(ctx context.Context, projectID, fileID string) error
}

func (m *mockRepository) Create(ctx context.Context, p *project.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID string) ([]*project.Project, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockRepository) Update(ctx context.Context, p *project.Project) error {
	return m.updateFunc(ctx, p)
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockRepository) ListFiles(ctx context.Context, projectID string) ([]*project.File, error) {
	if m.listFilesFunc == nil {
		return nil, nil
	}
	return m.listFilesFunc(ctx, projectID)
}

func (m *mockRepository) AddFile(ctx context.Context, f *project.File) error {
	return m.addFileFunc(ctx, f)
}

func (m *mockRepository) DeleteFile(ctx context.Context, projectID, fileID string) error {
	return m.deleteFileFunc(ctx, projectID, fileID)
}

func TestCreateRequiresName(t *testing.T) {
	svc := project.NewService(&mockRepository{}, zerolog.Nop())

	_, err := svc.Create(context.Background(), "user-1", "  ", "", "")
	if !apperrors.IsCode(err, apperrors.CodeBadRequest) {
		t.Fatalf("expected bad_request, got %v", err)
	}
}

func TestGetRejectsNonOwner(t *testing.T) {
	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id string) (*project.Project, error) {
			return &project.Project{ID: id, UserID: "owner"}, nil
		},
	}
	svc := project.NewService(repo, zerolog.Nop())

	_, err := svc.Get(context.Background(), "p-1", "intruder")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBuildContextIncludesFilesAndChats(t *testing.T) {
	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id string) (*project.Project, error) {
			return &project.Project{
				ID:           id,
				UserID:       "owner",
				Name:         "Road Trip",
				Description:  "Planning the summer trip.",
				Instructions: "Always answer in bullet points.",
			}, nil
		},
		listFilesFunc: func(ctx context.Context, projectID string) ([]*project.File, error) {
			return []*project.File{
				{Name: "itinerary.md", Summary: "Day-by-day plan"},
			}, nil
		},
	}
	svc := project.NewService(repo, zerolog.Nop())

	got, err := svc.BuildContext(context.Background(), "p-1", []string{"Hotel options"})
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}

	for _, want := range []string{"Road Trip", "Always answer in bullet points.", "itinerary.md", "Day-by-day plan", "Hotel options"} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
}

func TestBuildContextMissingProjectYieldsEmpty(t *testing.T) {
	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id string) (*project.Project, error) {
			return nil, apperrors.New(apperrors.CodeNotFound, "project", "project not found")
		},
	}
	svc := project.NewService(repo, zerolog.Nop())

	got, err := svc.BuildContext(context.Background(), "missing", nil)
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestBuildContextCapped(t *testing.T) {
	repo := &mockRepository{
		findByIDFunc: func(ctx context.Context, id string) (*project.Project, error) {
			return &project.Project{
				ID:           id,
				Name:         "Big",
				Instructions: strings.Repeat("verbose instructions ", 2000),
			}, nil
		},
	}
	svc := project.NewService(repo, zerolog.Nop())

	got, err := svc.BuildContext(context.Background(), "p-1", nil)
	if err != nil {
		t.Fatalf("BuildContext returned error: %v", err)
	}
	if len(got) > project.ContextMaxChars {
		t.Errorf("context exceeds cap: %d > %d", len(got), project.ContextMaxChars)
	}
}

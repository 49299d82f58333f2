package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/project"
	"chat-server/internal/interfaces/httpserver/handlers"
)

// MockProjectService is a mock implementation of project.Service for testing.
type MockProjectService struct {
	CreateFunc       func(ctx context.Context, userID, name, description, instructions string) (*project.Project, error)
	GetFunc          func(ctx context.Context, id, userID string) (*project.Project, error)
	ListFunc         func(ctx context.Context, userID string) ([]*project.Project, error)
	UpdateFunc       func(ctx context.Context, id, userID, name, description, instructions string) (*project.Project, error)
	DeleteFunc       func(ctx context.Context, id, userID string) error
	ListFilesFunc    func(ctx context.Context, projectID, userID string) ([]*project.File, error)
	AddFileFunc      func(ctx context.Context, projectID, userID, name, summary string) (*project.File, error)
	DeleteFileFunc   func(ctx context.Context, projectID, fileID, userID string) error
	BuildContextFunc func(ctx context.Context, projectID string, relatedChatTitles []string) (string, error)
}

func (m *MockProjectService) Create(ctx context.Context, userID, name, description, instructions string) (*project.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, name, description, instructions)
	}
	return nil, nil
}

func (m *MockProjectService) Get(ctx context.Context, id, userID string) (*project.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockProjectService) List(ctx context.Context, userID string) ([]*project.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockProjectService) Update(ctx context.Context, id, userID, name, description, instructions string) (*project.Project, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, userID, name, description, instructions)
	}
	return nil, nil
}

func (m *MockProjectService) Delete(ctx context.Context, id, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockProjectService) ListFiles(ctx context.Context, projectID, userID string) ([]*project.File, error) {
	if m.ListFilesFunc != nil {
		return m.ListFilesFunc(ctx, projectID, userID)
	}
	return nil, nil
}

func (m *MockProjectService) AddFile(ctx context.Context, projectID, userID, name, summary string) (*project.File, error) {
	if m.AddFileFunc != nil {
		return m.AddFileFunc(ctx, projectID, userID, name, summary)
	}
	return nil, nil
}

func (m *MockProjectService) DeleteFile(ctx context.Context, projectID, fileID, userID string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, projectID, fileID, userID)
	}
	return nil
}

func (m *MockProjectService) BuildContext(ctx context.Context, projectID string, relatedChatTitles []string) (string, error) {
	if m.BuildContextFunc != nil {
		return m.BuildContextFunc(ctx, projectID, relatedChatTitles)
	}
	return "", nil
}

// MockChatLister is a mock implementation of handlers.ChatLister.
type MockChatLister struct {
	ListByProjectFunc func(ctx context.Context, projectID string) ([]*chat.Chat, error)
}

func (m *MockChatLister) ListByProject(ctx context.Context, projectID string) ([]*chat.Chat, error) {
	if m.ListByProjectFunc != nil {
		return m.ListByProjectFunc(ctx, projectID)
	}
	return nil, nil
}

func setupProjectTestRouter(handler *handlers.ProjectHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	projects := r.Group("/v1/projects")
	{
		projects.POST("", handler.Create)
		projects.GET("", handler.List)
		projects.GET("/:id", handler.Get)
		projects.PATCH("/:id", handler.Update)
		projects.DELETE("/:id", handler.Delete)
		projects.GET("/:id/chats", handler.ListChats)
		projects.GET("/:id/files", handler.ListFiles)
		projects.POST("/:id/files", handler.AddFile)
	}

	return r
}

func TestProjectHandler_Create(t *testing.T) {
	mockService := &MockProjectService{
		CreateFunc: func(ctx context.Context, userID, name, description, instructions string) (*project.Project, error) {
			return &project.Project{ID: "proj-1", Name: name, Description: description}, nil
		},
	}

	handler := handlers.NewProjectHandler(mockService, &MockChatLister{}, zerolog.Nop())
	router := setupProjectTestRouter(handler)

	body, _ := json.Marshal(map[string]string{"name": "Research"})
	req, _ := http.NewRequest("POST", "/v1/projects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["name"] != "Research" {
		t.Errorf("Expected name 'Research', got %v", response["name"])
	}
}

func TestProjectHandler_ListChats(t *testing.T) {
	mockService := &MockProjectService{
		GetFunc: func(ctx context.Context, id, userID string) (*project.Project, error) {
			return &project.Project{ID: id, Name: "Research"}, nil
		},
	}
	mockChats := &MockChatLister{
		ListByProjectFunc: func(ctx context.Context, projectID string) ([]*chat.Chat, error) {
			return []*chat.Chat{
				{ID: "chat-1", Title: "First"},
				{ID: "chat-2", Title: "Second"},
			}, nil
		},
	}

	handler := handlers.NewProjectHandler(mockService, mockChats, zerolog.Nop())
	router := setupProjectTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/projects/proj-1/chats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if len(response) != 2 {
		t.Errorf("Expected 2 chats, got %d", len(response))
	}
}

func TestProjectHandler_ListChatsForbidden(t *testing.T) {
	mockService := &MockProjectService{
		GetFunc: func(ctx context.Context, id, userID string) (*project.Project, error) {
			return nil, apperrors.New(apperrors.CodeForbidden, "project", "not the project owner")
		},
	}
	listerCalled := false
	mockChats := &MockChatLister{
		ListByProjectFunc: func(ctx context.Context, projectID string) ([]*chat.Chat, error) {
			listerCalled = true
			return nil, nil
		},
	}

	handler := handlers.NewProjectHandler(mockService, mockChats, zerolog.Nop())
	router := setupProjectTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/projects/proj-1/chats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}

	if listerCalled {
		t.Error("Expected chats lister not to be called for a forbidden project")
	}
}

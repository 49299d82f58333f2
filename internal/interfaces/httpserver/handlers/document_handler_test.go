package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/document"
	"chat-server/internal/interfaces/httpserver/handlers"
)

// MockDocumentService is a mock implementation of document.Service for testing.
type MockDocumentService struct {
	CreateFunc              func(ctx context.Context, params document.CreateParams) (*document.Document, error)
	UpdateFunc              func(ctx context.Context, id, description, userID string) (*document.Document, error)
	GetLatestFunc           func(ctx context.Context, id string) (*document.Document, error)
	GetVersionsFunc         func(ctx context.Context, id string) ([]*document.Document, error)
	GenerateSuggestionsFunc func(ctx context.Context, documentID, userID string) ([]*document.Suggestion, error)
	ListSuggestionsFunc     func(ctx context.Context, documentID string) ([]*document.Suggestion, error)
}

func (m *MockDocumentService) Create(ctx context.Context, params document.CreateParams) (*document.Document, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockDocumentService) Update(ctx context.Context, id, description, userID string) (*document.Document, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, description, userID)
	}
	return nil, nil
}

func (m *MockDocumentService) GetLatest(ctx context.Context, id string) (*document.Document, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDocumentService) GetVersions(ctx context.Context, id string) ([]*document.Document, error) {
	if m.GetVersionsFunc != nil {
		return m.GetVersionsFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockDocumentService) GenerateSuggestions(ctx context.Context, documentID, userID string) ([]*document.Suggestion, error) {
	if m.GenerateSuggestionsFunc != nil {
		return m.GenerateSuggestionsFunc(ctx, documentID, userID)
	}
	return nil, nil
}

func (m *MockDocumentService) ListSuggestions(ctx context.Context, documentID string) ([]*document.Suggestion, error) {
	if m.ListSuggestionsFunc != nil {
		return m.ListSuggestionsFunc(ctx, documentID)
	}
	return nil, nil
}

func setupDocumentTestRouter(handler *handlers.DocumentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	documents := r.Group("/v1/documents")
	{
		documents.POST("", handler.Create)
		documents.GET("/:id", handler.Get)
		documents.POST("/:id", handler.Update)
		documents.GET("/:id/versions", handler.ListVersions)
		documents.POST("/:id/suggestions", handler.GenerateSuggestions)
		documents.GET("/:id/suggestions", handler.ListSuggestions)
	}

	return r
}

func TestDocumentHandler_Get(t *testing.T) {
	mockService := &MockDocumentService{
		GetLatestFunc: func(ctx context.Context, id string) (*document.Document, error) {
			return &document.Document{
				ID:        id,
				Title:     "Trip notes",
				Kind:      document.KindText,
				Content:   "Day one.",
				CreatedAt: time.Now(),
			}, nil
		},
	}

	handler := handlers.NewDocumentHandler(mockService, zerolog.Nop())
	router := setupDocumentTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/documents/doc-123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["id"] != "doc-123" {
		t.Errorf("Expected document id 'doc-123', got %v", response["id"])
	}

	if response["title"] != "Trip notes" {
		t.Errorf("Expected title 'Trip notes', got %v", response["title"])
	}
}

func TestDocumentHandler_GetNotFound(t *testing.T) {
	mockService := &MockDocumentService{
		GetLatestFunc: func(ctx context.Context, id string) (*document.Document, error) {
			return nil, apperrors.New(apperrors.CodeNotFound, "document", "document not found")
		},
	}

	handler := handlers.NewDocumentHandler(mockService, zerolog.Nop())
	router := setupDocumentTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/documents/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["code"] != "not_found" {
		t.Errorf("Expected code 'not_found', got %v", response["code"])
	}
}

func TestDocumentHandler_Create(t *testing.T) {
	mockService := &MockDocumentService{
		CreateFunc: func(ctx context.Context, params document.CreateParams) (*document.Document, error) {
			return &document.Document{
				ID:      params.ID,
				Title:   params.Title,
				Kind:    params.Kind,
				Content: "generated",
			}, nil
		},
	}

	handler := handlers.NewDocumentHandler(mockService, zerolog.Nop())
	router := setupDocumentTestRouter(handler)

	body, _ := json.Marshal(map[string]string{
		"id":    "doc-1",
		"title": "Essay",
		"kind":  "text",
	})
	req, _ := http.NewRequest("POST", "/v1/documents", bytes.NewReader(body))
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

	if response["content"] != "generated" {
		t.Errorf("Expected generated content, got %v", response["content"])
	}
}

func TestDocumentHandler_CreateMissingFields(t *testing.T) {
	handler := handlers.NewDocumentHandler(&MockDocumentService{}, zerolog.Nop())
	router := setupDocumentTestRouter(handler)

	body, _ := json.Marshal(map[string]string{"id": "doc-1"})
	req, _ := http.NewRequest("POST", "/v1/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestDocumentHandler_ListSuggestions(t *testing.T) {
	mockService := &MockDocumentService{
		ListSuggestionsFunc: func(ctx context.Context, documentID string) ([]*document.Suggestion, error) {
			return []*document.Suggestion{
				{ID: "sug-1", DocumentID: documentID, OriginalText: "teh", SuggestedText: "the"},
				{ID: "sug-2", DocumentID: documentID, OriginalText: "wierd", SuggestedText: "weird"},
			}, nil
		},
	}

	handler := handlers.NewDocumentHandler(mockService, zerolog.Nop())
	router := setupDocumentTestRouter(handler)

	req, _ := http.NewRequest("GET", "/v1/documents/doc-123/suggestions", nil)
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
		t.Errorf("Expected 2 suggestions, got %d", len(response))
	}
}

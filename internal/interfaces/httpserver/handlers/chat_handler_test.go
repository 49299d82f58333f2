package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/llm"
	"chat-server/internal/interfaces/httpserver/handlers"
)

func setupChatTestRouter(handler *handlers.ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/v1/chat", handler.Submit)
	r.GET("/v1/chat", handler.Resume)

	return r
}

// Rejections happen before the service is touched, so a nil service is safe
// for these cases.
func newRejectionHandler() *handlers.ChatHandler {
	return handlers.NewChatHandler(nil, llm.DefaultEntitlements, zerolog.Nop())
}

func TestChatHandler_SubmitInvalidBody(t *testing.T) {
	router := setupChatTestRouter(newRejectionHandler())

	req, _ := http.NewRequest("POST", "/v1/chat", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["code"] != "bad_request" {
		t.Errorf("Expected code 'bad_request', got %v", response["code"])
	}
}

func TestChatHandler_SubmitUnknownModel(t *testing.T) {
	router := setupChatTestRouter(newRejectionHandler())

	body := map[string]interface{}{
		"id": "0b2587cb-0b90-40c9-9b91-563334a9404c",
		"message": map[string]interface{}{
			"id":    "37e67971-78e3-4b6c-b832-932bf5bd0b35",
			"role":  "user",
			"parts": []map[string]string{{"type": "text", "text": "hello"}},
		},
		"selectedChatModel":      "gpt-does-not-exist",
		"selectedVisibilityType": "private",
	}
	payload, _ := json.Marshal(body)

	req, _ := http.NewRequest("POST", "/v1/chat", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestChatHandler_ResumeMissingChatID(t *testing.T) {
	router := setupChatTestRouter(newRejectionHandler())

	req, _ := http.NewRequest("GET", "/v1/chat", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response["code"] != "bad_request" {
		t.Errorf("Expected code 'bad_request', got %v", response["code"])
	}
}

func TestModelHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/models", handlers.NewModelHandler().List)

	req, _ := http.NewRequest("GET", "/v1/models", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if len(response.Data) != len(llm.ChatModels) {
		t.Fatalf("Expected %d models, got %d", len(llm.ChatModels), len(response.Data))
	}

	for i, model := range llm.ChatModels {
		if response.Data[i].ID != model.ID {
			t.Errorf("Expected model id %q at index %d, got %q", model.ID, i, response.Data[i].ID)
		}
	}
}

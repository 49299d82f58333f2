package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"chat-server/internal/domain/apperrors"
)

func TestCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code   apperrors.Code
		status int
	}{
		{apperrors.CodeBadRequest, http.StatusBadRequest},
		{apperrors.CodeUnauthorized, http.StatusUnauthorized},
		{apperrors.CodeForbidden, http.StatusForbidden},
		{apperrors.CodeNotFound, http.StatusNotFound},
		{apperrors.CodeRateLimit, http.StatusTooManyRequests},
		{apperrors.CodeInternal, http.StatusInternalServerError},
		{apperrors.Code("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.code, tt.status, got)
		}
	}
}

func TestCodeOfWrappedError(t *testing.T) {
	base := apperrors.New(apperrors.CodeForbidden, "chat", "not the chat owner")
	wrapped := fmt.Errorf("submit turn: %w", base)

	if got := apperrors.CodeOf(wrapped); got != apperrors.CodeForbidden {
		t.Errorf("expected forbidden, got %s", got)
	}
	if got := apperrors.Status(wrapped); got != http.StatusForbidden {
		t.Errorf("expected 403, got %d", got)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := apperrors.CodeOf(errors.New("boom")); got != apperrors.CodeInternal {
		t.Errorf("expected internal, got %s", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperrors.Wrap(apperrors.CodeInternal, "chat", "append message", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestPublicMessageMasksInternal(t *testing.T) {
	internal := apperrors.Wrap(apperrors.CodeInternal, "chat", "pq: relation missing", errors.New("pq"))
	if msg := apperrors.PublicMessage(internal); msg == "pq: relation missing" {
		t.Error("internal details must not surface to clients")
	}

	visible := apperrors.New(apperrors.CodeRateLimit, "chat", "daily message limit reached")
	if msg := apperrors.PublicMessage(visible); msg != "daily message limit reached" {
		t.Errorf("expected client-visible message, got %q", msg)
	}
}

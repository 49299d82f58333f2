package dto

import (
	"github.com/google/uuid"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/llm"
)

// MessagePart is one content element in the HTTP contract.
type MessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessageAttachment references an uploaded file included with a message.
type MessageAttachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

// SubmitMessage is the user message inside a submit request.
type SubmitMessage struct {
	ID          string              `json:"id"`
	Role        string              `json:"role"`
	Parts       []MessagePart       `json:"parts"`
	Attachments []MessageAttachment `json:"attachments"`
}

// SubmitChatRequest models POST /v1/chat input.
type SubmitChatRequest struct {
	ID                     string        `json:"id"`
	Message                SubmitMessage `json:"message"`
	SelectedChatModel      string        `json:"selectedChatModel"`
	SelectedVisibilityType string        `json:"selectedVisibilityType"`
}

// Validate checks the request against the caller's entitlements and converts
// it to domain types. All failures classify as bad_request.
func (r *SubmitChatRequest) Validate(entitlements llm.Entitlements) (chat.Message, chat.Visibility, error) {
	if _, err := uuid.Parse(r.ID); err != nil {
		return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "id must be a UUID")
	}
	if _, err := uuid.Parse(r.Message.ID); err != nil {
		return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "message.id must be a UUID")
	}
	if r.Message.Role != string(chat.RoleUser) {
		return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "message.role must be user")
	}
	if len(r.Message.Parts) == 0 {
		return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "message must have at least one part")
	}
	if !entitlements.IsSelectableModel(r.SelectedChatModel) {
		return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "unknown chat model: "+r.SelectedChatModel)
	}

	visibility := chat.Visibility(r.SelectedVisibilityType)
	if !visibility.Valid() {
		return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "unknown visibility: "+r.SelectedVisibilityType)
	}

	parts := make([]chat.Part, 0, len(r.Message.Parts))
	for _, part := range r.Message.Parts {
		if part.Type != chat.PartTypeText {
			return chat.Message{}, "", apperrors.New(apperrors.CodeBadRequest, "chat", "unsupported part type: "+part.Type)
		}
		parts = append(parts, chat.Part{Type: chat.PartTypeText, Text: part.Text})
	}

	attachments := make([]chat.Attachment, 0, len(r.Message.Attachments))
	for _, att := range r.Message.Attachments {
		attachments = append(attachments, chat.Attachment{
			Name:        att.Name,
			URL:         att.URL,
			ContentType: att.ContentType,
		})
	}

	message := chat.Message{
		ID:          r.Message.ID,
		ChatID:      r.ID,
		Role:        chat.RoleUser,
		Parts:       parts,
		Attachments: attachments,
	}

	return message, visibility, nil
}

// UpdateVisibilityRequest models PATCH /v1/chat/:id/visibility input.
type UpdateVisibilityRequest struct {
	Visibility string `json:"visibility" binding:"required"`
}

// VoteRequest models PATCH /v1/votes input.
type VoteRequest struct {
	ChatID    string `json:"chatId" binding:"required"`
	MessageID string `json:"messageId" binding:"required"`
	Type      string `json:"type" binding:"required"`
}

// AssignProjectRequest models PATCH /v1/chats/:id/project input. A null
// projectId detaches the chat.
type AssignProjectRequest struct {
	ProjectID *string `json:"projectId"`
}

// CreateDocumentRequest models POST /v1/documents input.
type CreateDocumentRequest struct {
	ID    string `json:"id" binding:"required"`
	Title string `json:"title" binding:"required"`
	Kind  string `json:"kind" binding:"required"`
}

// UpdateDocumentRequest models POST /v1/documents/:id input.
type UpdateDocumentRequest struct {
	Description string `json:"description" binding:"required"`
}

// ProjectRequest models project create and update input.
type ProjectRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Instructions string `json:"instructions"`
}

// ProjectFileRequest models POST /v1/projects/:id/files input.
type ProjectFileRequest struct {
	Name    string `json:"name" binding:"required"`
	Summary string `json:"summary"`
}

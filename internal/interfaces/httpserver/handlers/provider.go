package handlers

import (
	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/document"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/project"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat     *ChatHandler
	Document *DocumentHandler
	Project  *ProjectHandler
	Model    *ModelHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(
	chatService *chat.Service,
	documentService document.Service,
	projectService project.Service,
	entitlements llm.Entitlements,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Chat:     NewChatHandler(chatService, entitlements, log),
		Document: NewDocumentHandler(documentService, log),
		Project:  NewProjectHandler(projectService, chatService, log),
		Model:    NewModelHandler(),
	}
}

package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/llm"
)

// Service is the document business logic consumed by the document tools and
// the document HTTP surface.
type Service interface {
	// Create generates content for a new document with the artifact model and
	// persists it as the first version.
	Create(ctx context.Context, params CreateParams) (*Document, error)

	// Update regenerates the document following the description and persists
	// the result as a new version.
	Update(ctx context.Context, id, description, userID string) (*Document, error)

	// GetLatest returns the current version of the document.
	GetLatest(ctx context.Context, id string) (*Document, error)

	// GetVersions returns all versions ascending by creation time.
	GetVersions(ctx context.Context, id string) ([]*Document, error)

	// GenerateSuggestions asks the artifact model for edit suggestions and
	// persists them.
	GenerateSuggestions(ctx context.Context, documentID, userID string) ([]*Suggestion, error)

	// ListSuggestions returns persisted suggestions for the document.
	ListSuggestions(ctx context.Context, documentID string) ([]*Suggestion, error)
}

// CreateParams describes a new document.
type CreateParams struct {
	ID     string
	UserID string
	Title  string
	Kind   Kind
}

// DefaultService implements Service.
type DefaultService struct {
	documents   Repository
	suggestions SuggestionRepository
	provider    llm.Provider
	log         zerolog.Logger
}

// NewService wires dependencies.
func NewService(documents Repository, suggestions SuggestionRepository, provider llm.Provider, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		documents:   documents,
		suggestions: suggestions,
		provider:    provider,
		log:         log.With().Str("component", "document-service").Logger(),
	}
}

func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Document, error) {
	if !params.Kind.Valid() {
		return nil, apperrors.New(apperrors.CodeBadRequest, "document", fmt.Sprintf("unknown document kind: %s", params.Kind))
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}

	content, err := s.generate(ctx, kindSystemPrompt(params.Kind), params.Title)
	if err != nil {
		return nil, fmt.Errorf("generate document content: %w", err)
	}

	doc := &Document{
		ID:        id,
		UserID:    params.UserID,
		Title:     params.Title,
		Kind:      params.Kind,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.documents.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

func (s *DefaultService) Update(ctx context.Context, id, description, userID string) (*Document, error) {
	current, err := s.documents.FindLatestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "document", "not the document owner")
	}

	prompt := fmt.Sprintf("Improve the following contents of the document based on the given description.\n\nDescription: %s\n\nCurrent content:\n%s", description, current.Content)
	content, err := s.generate(ctx, kindSystemPrompt(current.Kind), prompt)
	if err != nil {
		return nil, fmt.Errorf("regenerate document content: %w", err)
	}

	next := &Document{
		ID:        current.ID,
		UserID:    current.UserID,
		Title:     current.Title,
		Kind:      current.Kind,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.documents.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save document version: %w", err)
	}
	return next, nil
}

func (s *DefaultService) GetLatest(ctx context.Context, id string) (*Document, error) {
	return s.documents.FindLatestByID(ctx, id)
}

func (s *DefaultService) GetVersions(ctx context.Context, id string) ([]*Document, error) {
	return s.documents.FindVersionsByID(ctx, id)
}

func (s *DefaultService) GenerateSuggestions(ctx context.Context, documentID, userID string) ([]*Suggestion, error) {
	doc, err := s.documents.FindLatestByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	raw, err := s.generate(ctx, suggestionsSystemPrompt, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	parsed := parseSuggestionPayload(raw)
	if len(parsed) == 0 {
		return nil, nil
	}

	suggestions := make([]*Suggestion, 0, len(parsed))
	for _, p := range parsed {
		suggestions = append(suggestions, &Suggestion{
			ID:                uuid.NewString(),
			DocumentID:        doc.ID,
			DocumentCreatedAt: doc.CreatedAt,
			UserID:            userID,
			OriginalText:      p.OriginalText,
			SuggestedText:     p.SuggestedText,
			Description:       p.Description,
			CreatedAt:         time.Now(),
		})
	}

	if err := s.suggestions.SaveBatch(ctx, suggestions); err != nil {
		return nil, fmt.Errorf("save suggestions: %w", err)
	}
	return suggestions, nil
}

func (s *DefaultService) ListSuggestions(ctx context.Context, documentID string) ([]*Suggestion, error) {
	return s.suggestions.ListByDocumentID(ctx, documentID)
}

func (s *DefaultService) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model: llm.ModelArtifact,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("artifact model returned no choices")
	}

	content, _ := resp.Choices[0].Message.Content.(string)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("artifact model returned empty content")
	}
	return content, nil
}

func kindSystemPrompt(kind Kind) string {
	switch kind {
	case KindCode:
		return "You are a code generator. Produce a single self-contained snippet for the request. Respond with code only, no commentary."
	case KindSheet:
		return "You are a spreadsheet generator. Produce CSV content for the request. Respond with CSV only."
	case KindImage:
		return "Describe, in one detailed paragraph, the image to generate for the request."
	default:
		return "Write about the given topic. Markdown is supported. Use headings wherever appropriate."
	}
}

const suggestionsSystemPrompt = `You are a writing assistant. Given a document, suggest improvements. Respond with a JSON array where each element has the fields "originalText", "suggestedText" and "description". Suggest at most five edits.`

type suggestionPayload struct {
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText"`
	Description   string `json:"description"`
}

func parseSuggestionPayload(raw string) []suggestionPayload {
	raw = strings.TrimSpace(raw)
	// Tolerate models that wrap JSON in a code fence.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed []suggestionPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil
	}
	return parsed
}

var _ Service = (*DefaultService)(nil)

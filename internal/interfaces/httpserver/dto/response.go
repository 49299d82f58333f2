package dto

import (
	"time"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/document"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/project"
)

// ChatPayload is the HTTP representation of a chat.
type ChatPayload struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"`
	ProjectID  *string   `json:"projectId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FromChat converts a domain chat.
func FromChat(c *chat.Chat) ChatPayload {
	return ChatPayload{
		ID:         c.ID,
		Title:      c.Title,
		Visibility: string(c.Visibility),
		ProjectID:  c.ProjectID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// HistoryPayload is one page of a user's chat history.
type HistoryPayload struct {
	Chats   []ChatPayload `json:"chats"`
	HasMore bool          `json:"hasMore"`
}

// FromHistory converts a history page.
func FromHistory(page *chat.HistoryPage) HistoryPayload {
	chats := make([]ChatPayload, 0, len(page.Chats))
	for _, c := range page.Chats {
		chats = append(chats, FromChat(c))
	}
	return HistoryPayload{Chats: chats, HasMore: page.HasMore}
}

// MessagePayload is the HTTP representation of a message.
type MessagePayload struct {
	ID          string            `json:"id"`
	ChatID      string            `json:"chatId"`
	Role        string            `json:"role"`
	Parts       []chat.Part       `json:"parts"`
	Attachments []chat.Attachment `json:"attachments"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// FromMessage converts a domain message.
func FromMessage(m *chat.Message) MessagePayload {
	return MessagePayload{
		ID:          m.ID,
		ChatID:      m.ChatID,
		Role:        string(m.Role),
		Parts:       m.Parts,
		Attachments: m.Attachments,
		CreatedAt:   m.CreatedAt,
	}
}

// FromMessages converts a message list.
func FromMessages(messages []*chat.Message) []MessagePayload {
	result := make([]MessagePayload, 0, len(messages))
	for _, m := range messages {
		result = append(result, FromMessage(m))
	}
	return result
}

// VotePayload is the HTTP representation of a vote.
type VotePayload struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Type      string `json:"type"`
}

// FromVotes converts a vote list.
func FromVotes(votes []*chat.Vote) []VotePayload {
	result := make([]VotePayload, 0, len(votes))
	for _, v := range votes {
		result = append(result, VotePayload{
			ChatID:    v.ChatID,
			MessageID: v.MessageID,
			Type:      string(v.Type),
		})
	}
	return result
}

// DocumentPayload is the HTTP representation of one document version.
type DocumentPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromDocument converts a domain document.
func FromDocument(d *document.Document) DocumentPayload {
	return DocumentPayload{
		ID:        d.ID,
		Title:     d.Title,
		Kind:      string(d.Kind),
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
}

// FromDocuments converts a document version list.
func FromDocuments(docs []*document.Document) []DocumentPayload {
	result := make([]DocumentPayload, 0, len(docs))
	for _, d := range docs {
		result = append(result, FromDocument(d))
	}
	return result
}

// SuggestionPayload is the HTTP representation of a document suggestion.
type SuggestionPayload struct {
	ID            string `json:"id"`
	DocumentID    string `json:"documentId"`
	OriginalText  string `json:"originalText"`
	SuggestedText string `json:"suggestedText"`
	Description   string `json:"description"`
	IsResolved    bool   `json:"isResolved"`
}

// FromSuggestions converts a suggestion list.
func FromSuggestions(suggestions []*document.Suggestion) []SuggestionPayload {
	result := make([]SuggestionPayload, 0, len(suggestions))
	for _, s := range suggestions {
		result = append(result, SuggestionPayload{
			ID:            s.ID,
			DocumentID:    s.DocumentID,
			OriginalText:  s.OriginalText,
			SuggestedText: s.SuggestedText,
			Description:   s.Description,
			IsResolved:    s.IsResolved,
		})
	}
	return result
}

// ProjectPayload is the HTTP representation of a project.
type ProjectPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FromProject converts a domain project.
func FromProject(p *project.Project) ProjectPayload {
	return ProjectPayload{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Instructions: p.Instructions,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromProjects converts a project list.
func FromProjects(projects []*project.Project) []ProjectPayload {
	result := make([]ProjectPayload, 0, len(projects))
	for _, p := range projects {
		result = append(result, FromProject(p))
	}
	return result
}

// ProjectFilePayload is the HTTP representation of a project file.
type ProjectFilePayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromProjectFile converts a domain project file.
func FromProjectFile(f *project.File) ProjectFilePayload {
	return ProjectFilePayload{
		ID:        f.ID,
		Name:      f.Name,
		Summary:   f.Summary,
		CreatedAt: f.CreatedAt,
	}
}

// FromProjectFiles converts a project file list.
func FromProjectFiles(files []*project.File) []ProjectFilePayload {
	result := make([]ProjectFilePayload, 0, len(files))
	for _, f := range files {
		result = append(result, FromProjectFile(f))
	}
	return result
}

// ModelPayload is one entry in the model catalog.
type ModelPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FromModels converts the model catalog.
func FromModels(models []llm.ChatModel) []ModelPayload {
	result := make([]ModelPayload, 0, len(models))
	for _, m := range models {
		result = append(result, ModelPayload{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
		})
	}
	return result
}

// Package chat holds the conversation domain: chats, their messages, stream
// handles for resumption, and the turn lifecycle that ties them together.
package chat

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// Visibility controls who may read a chat.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Part is one content element of a message. Text parts carry prose; tool-call
// and tool-result parts record what the assistant invoked mid-turn.
type Part struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Arguments  json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// Part types.
const (
	PartTypeText       = "text"
	PartTypeToolCall   = "tool-call"
	PartTypeToolResult = "tool-result"
)

// Attachment references an uploaded file included with a message.
type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
}

// Chat is one conversation thread. The identifier is caller-supplied and,
// once created, permanently bound to its owner.
type Chat struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
	ProjectID  *string    `json:"projectId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Message is one turn contribution. Messages are immutable once created and
// strictly ordered by creation time within a chat.
type Message struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chatId"`
	Role        Role         `json:"role"`
	Parts       []Part       `json:"parts"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Text concatenates the message's text parts.
func (m Message) Text() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if part.Type != PartTypeText {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// StreamHandle binds a stream identifier to a chat so a reconnecting client
// can rediscover the in-flight response. Handles are write-once; the most
// recently created one is the only resumable candidate.
type StreamHandle struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoteType is an up or down signal on a message.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Vote is a per-message signal from the chat owner.
type Vote struct {
	ChatID    string   `json:"chatId"`
	MessageID string   `json:"messageId"`
	Type      VoteType `json:"type"`
}

// FallbackTitle derives a provisional chat title from the first user message,
// used until the title model produces a real one.
func FallbackTitle(m Message) string {
	text := strings.TrimSpace(m.Text())
	if text == "" {
		return "New chat"
	}
	return truncateTitle(text, maxTitleLen)
}

const maxTitleLen = 80

// truncateTitle cuts text to at most max bytes without splitting a rune.
func truncateTitle(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

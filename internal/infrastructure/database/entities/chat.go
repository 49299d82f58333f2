package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"chat-server/internal/domain/chat"
)

// Chat represents the database schema for chats.
type Chat struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_chats_user_created"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID     string  `gorm:"type:varchar(64);index:idx_chats_user_created;not null"`
	Title      string  `gorm:"type:varchar(256);not null"`
	Visibility string  `gorm:"type:varchar(10);not null;default:'private'"`
	ProjectID  *string `gorm:"type:uuid;index"`
}

// TableName specifies the table name for Chat.
func (Chat) TableName() string {
	return "chats"
}

// Message represents the database schema for chat messages. Seq preserves
// insertion order for messages created within the same instant.
type Message struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Seq       int64     `gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	ChatID      string         `gorm:"type:uuid;index;not null"`
	Role        string         `gorm:"type:varchar(16);index;not null"`
	Parts       datatypes.JSON `gorm:"type:jsonb;not null"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// Stream represents the database schema for resumable stream handles.
type Stream struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`

	ChatID string `gorm:"type:uuid;index;not null"`
}

// TableName specifies the table name for Stream.
func (Stream) TableName() string {
	return "streams"
}

// Vote represents the database schema for message votes.
type Vote struct {
	ChatID    string `gorm:"type:uuid;primaryKey"`
	MessageID string `gorm:"type:uuid;primaryKey"`
	Type      string `gorm:"type:varchar(4);not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Vote.
func (Vote) TableName() string {
	return "votes"
}

// NewSchemaChat converts a domain chat to its database representation.
func NewSchemaChat(c *chat.Chat) *Chat {
	return &Chat{
		ID:         c.ID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		UserID:     c.UserID,
		Title:      c.Title,
		Visibility: string(c.Visibility),
		ProjectID:  c.ProjectID,
	}
}

// EtoD converts the entity to its domain representation.
func (e *Chat) EtoD() *chat.Chat {
	return &chat.Chat{
		ID:         e.ID,
		UserID:     e.UserID,
		Title:      e.Title,
		Visibility: chat.Visibility(e.Visibility),
		ProjectID:  e.ProjectID,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// NewSchemaMessage converts a domain message to its database representation.
func NewSchemaMessage(m *chat.Message) (*Message, error) {
	parts, err := json.Marshal(m.Parts)
	if err != nil {
		return nil, fmt.Errorf("marshal message parts: %w", err)
	}

	entity := &Message{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		ChatID:    m.ChatID,
		Role:      string(m.Role),
		Parts:     datatypes.JSON(parts),
	}

	if len(m.Attachments) > 0 {
		attachments, err := json.Marshal(m.Attachments)
		if err != nil {
			return nil, fmt.Errorf("marshal message attachments: %w", err)
		}
		entity.Attachments = datatypes.JSON(attachments)
	}

	return entity, nil
}

// EtoD converts the entity to its domain representation.
func (e *Message) EtoD() (*chat.Message, error) {
	m := &chat.Message{
		ID:        e.ID,
		ChatID:    e.ChatID,
		Role:      chat.Role(e.Role),
		CreatedAt: e.CreatedAt,
	}

	if len(e.Parts) > 0 {
		if err := json.Unmarshal(e.Parts, &m.Parts); err != nil {
			return nil, fmt.Errorf("unmarshal message parts: %w", err)
		}
	}
	if len(e.Attachments) > 0 {
		if err := json.Unmarshal(e.Attachments, &m.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal message attachments: %w", err)
		}
	}

	return m, nil
}

// EtoD converts the entity to its domain representation.
func (e *Stream) EtoD() *chat.StreamHandle {
	return &chat.StreamHandle{
		ID:        e.ID,
		ChatID:    e.ChatID,
		CreatedAt: e.CreatedAt,
	}
}

// EtoD converts the entity to its domain representation.
func (e *Vote) EtoD() *chat.Vote {
	return &chat.Vote{
		ChatID:    e.ChatID,
		MessageID: e.MessageID,
		Type:      chat.VoteType(e.Type),
	}
}

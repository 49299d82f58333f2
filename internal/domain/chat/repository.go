package chat

import (
	"context"
	"time"
)

// Repository persists chats. Each call is atomic; the service never spans a
// transaction over multiple calls.
type Repository interface {
	// FindByID returns the chat or a not_found classified error.
	FindByID(ctx context.Context, id string) (*Chat, error)

	// Create inserts the chat. The id is caller-supplied.
	Create(ctx context.Context, chat *Chat) error

	// UpdateTitle replaces the chat title.
	UpdateTitle(ctx context.Context, id, title string) error

	// UpdateVisibility replaces the chat visibility.
	UpdateVisibility(ctx context.Context, id string, visibility Visibility) error

	// UpdateProject sets or clears the owning project.
	UpdateProject(ctx context.Context, id string, projectID *string) error

	// Delete removes the chat along with its messages, votes and stream handles.
	Delete(ctx context.Context, id string) error

	// ListByUser returns the caller's chats newest-first. endingBefore is an
	// exclusive cursor chat id; empty means start from the newest.
	ListByUser(ctx context.Context, userID string, limit int, endingBefore string) ([]*Chat, error)

	// ListByProject returns a project's chats newest-first.
	ListByProject(ctx context.Context, projectID string) ([]*Chat, error)
}

// MessageRepository persists messages.
type MessageRepository interface {
	// ListByChatID returns messages ascending by creation time, ties broken by
	// insertion order.
	ListByChatID(ctx context.Context, chatID string) ([]*Message, error)

	// Append inserts the given messages.
	Append(ctx context.Context, messages []*Message) error

	// CountByUserSince counts messages authored by userID with role user since
	// the cutoff, across all of their chats.
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// StreamRepository records stream handles.
type StreamRepository interface {
	// Create records the handle before the first byte of the turn is emitted.
	Create(ctx context.Context, streamID, chatID string) error

	// ListByChatID returns handles ascending by creation time.
	ListByChatID(ctx context.Context, chatID string) ([]*StreamHandle, error)
}

// VoteRepository persists per-message votes.
type VoteRepository interface {
	// Upsert records the vote, replacing an existing one for the message.
	Upsert(ctx context.Context, vote *Vote) error

	// ListByChatID returns all votes for the chat.
	ListByChatID(ctx context.Context, chatID string) ([]*Vote, error)
}

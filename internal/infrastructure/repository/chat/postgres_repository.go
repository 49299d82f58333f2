// Package chat provides the postgres persistence for chats, messages, stream
// handles and votes.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chat-server/internal/domain/apperrors"
	domain "chat-server/internal/domain/chat"
	"chat-server/internal/infrastructure/database/entities"
)

// Repository persists chats.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a chat repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID fetches a chat by id.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	var entity entities.Chat
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("chat not found: %s", id))
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "fetch chat", err)
	}
	return entity.EtoD(), nil
}

// Create inserts the chat record.
func (r *Repository) Create(ctx context.Context, c *domain.Chat) error {
	entity := entities.NewSchemaChat(c)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "create chat", err)
	}
	c.CreatedAt = entity.CreatedAt
	c.UpdatedAt = entity.UpdatedAt
	return nil
}

// UpdateTitle replaces the chat title.
func (r *Repository) UpdateTitle(ctx context.Context, id, title string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"title": title})
}

// UpdateVisibility replaces the chat visibility.
func (r *Repository) UpdateVisibility(ctx context.Context, id string, visibility domain.Visibility) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"visibility": string(visibility)})
}

// UpdateProject sets or clears the owning project.
func (r *Repository) UpdateProject(ctx context.Context, id string, projectID *string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{"project_id": projectID})
}

func (r *Repository) updateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	columns["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).
		Model(&entities.Chat{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "update chat", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("chat not found: %s", id))
	}
	return nil
}

// Delete removes the chat and its dependents in one transaction.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&entities.Vote{}).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete chat votes", err)
		}
		if err := tx.Where("chat_id = ?", id).Delete(&entities.Message{}).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete chat messages", err)
		}
		if err := tx.Where("chat_id = ?", id).Delete(&entities.Stream{}).Error; err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete chat streams", err)
		}
		result := tx.Where("id = ?", id).Delete(&entities.Chat{})
		if result.Error != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "delete chat", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("chat not found: %s", id))
		}
		return nil
	})
}

// ListByUser returns the user's chats newest-first, optionally starting after
// the endingBefore cursor chat.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int, endingBefore string) ([]*domain.Chat, error) {
	query := r.db.WithContext(ctx).
		Model(&entities.Chat{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	if endingBefore != "" {
		var cursor entities.Chat
		if err := r.db.WithContext(ctx).Where("id = ?", endingBefore).First(&cursor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.New(apperrors.CodeNotFound, "repository", fmt.Sprintf("cursor chat not found: %s", endingBefore))
			}
			return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "fetch cursor chat", err)
		}
		query = query.Where("created_at < ?", cursor.CreatedAt)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.Chat
	if err := query.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list chats", err)
	}

	chats := make([]*domain.Chat, 0, len(rows))
	for i := range rows {
		chats = append(chats, rows[i].EtoD())
	}
	return chats, nil
}

// ListByProject returns a project's chats newest-first.
func (r *Repository) ListByProject(ctx context.Context, projectID string) ([]*domain.Chat, error) {
	var rows []entities.Chat
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list project chats", err)
	}

	chats := make([]*domain.Chat, 0, len(rows))
	for i := range rows {
		chats = append(chats, rows[i].EtoD())
	}
	return chats, nil
}

// MessageRepository persists messages.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// ListByChatID returns messages ascending by creation time, ties broken by
// insertion order.
func (r *MessageRepository) ListByChatID(ctx context.Context, chatID string) ([]*domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, seq ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list messages", err)
	}

	messages := make([]*domain.Message, 0, len(rows))
	for i := range rows {
		m, err := rows[i].EtoD()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "decode message", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// Append inserts the given messages.
func (r *MessageRepository) Append(ctx context.Context, messages []*domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	rows := make([]*entities.Message, 0, len(messages))
	for _, m := range messages {
		entity, err := entities.NewSchemaMessage(m)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, "repository", "encode message", err)
		}
		rows = append(rows, entity)
	}

	if err := r.db.WithContext(ctx).Create(rows).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "append messages", err)
	}
	return nil
}

// CountByUserSince counts user-authored messages across the user's chats
// since the cutoff.
func (r *MessageRepository) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.user_id = ?", userID).
		Where("messages.role = ?", string(domain.RoleUser)).
		Where("messages.created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, "repository", "count messages", err)
	}
	return int(count), nil
}

// StreamRepository records stream handles.
type StreamRepository struct {
	db *gorm.DB
}

// NewStreamRepository builds a stream handle repository.
func NewStreamRepository(db *gorm.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

// Create records a stream handle.
func (r *StreamRepository) Create(ctx context.Context, streamID, chatID string) error {
	entity := &entities.Stream{ID: streamID, ChatID: chatID}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "create stream handle", err)
	}
	return nil
}

// ListByChatID returns handles ascending by creation time.
func (r *StreamRepository) ListByChatID(ctx context.Context, chatID string) ([]*domain.StreamHandle, error) {
	var rows []entities.Stream
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list stream handles", err)
	}

	handles := make([]*domain.StreamHandle, 0, len(rows))
	for i := range rows {
		handles = append(handles, rows[i].EtoD())
	}
	return handles, nil
}

// VoteRepository persists per-message votes.
type VoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository builds a vote repository.
func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert records the vote, replacing an existing one for the message.
func (r *VoteRepository) Upsert(ctx context.Context, vote *domain.Vote) error {
	entity := &entities.Vote{
		ChatID:    vote.ChatID,
		MessageID: vote.MessageID,
		Type:      string(vote.Type),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(entity).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "repository", "upsert vote", err)
	}
	return nil
}

// ListByChatID returns all votes for the chat.
func (r *VoteRepository) ListByChatID(ctx context.Context, chatID string) ([]*domain.Vote, error) {
	var rows []entities.Vote
	if err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "repository", "list votes", err)
	}

	votes := make([]*domain.Vote, 0, len(rows))
	for i := range rows {
		votes = append(votes, rows[i].EtoD())
	}
	return votes, nil
}

var (
	_ domain.Repository        = (*Repository)(nil)
	_ domain.MessageRepository = (*MessageRepository)(nil)
	_ domain.StreamRepository  = (*StreamRepository)(nil)
	_ domain.VoteRepository    = (*VoteRepository)(nil)
)

package chat

import (
	"context"
	"fmt"

	"chat-server/internal/domain/apperrors"
)

// GetChat returns the chat when the caller may read it: owners always,
// everyone for public chats.
func (s *Service) GetChat(ctx context.Context, chatID, userID string) (*Chat, error) {
	conversation, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if conversation.Visibility == VisibilityPrivate && conversation.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "chat", "not the chat owner")
	}
	return conversation, nil
}

// ListMessages returns the chat's messages under the same read rules.
func (s *Service) ListMessages(ctx context.Context, chatID, userID string) ([]*Message, error) {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.messages.ListByChatID(ctx, chatID)
}

// HistoryPage is one page of the caller's chats.
type HistoryPage struct {
	Chats   []*Chat `json:"chats"`
	HasMore bool    `json:"hasMore"`
}

// History pages through the caller's chats newest-first. endingBefore is an
// exclusive cursor chat id.
func (s *Service) History(ctx context.Context, userID string, limit int, endingBefore string) (*HistoryPage, error) {
	if limit <= 0 {
		limit = 20
	}

	// Over-fetch by one to learn whether another page exists.
	chats, err := s.chats.ListByUser(ctx, userID, limit+1, endingBefore)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	hasMore := len(chats) > limit
	if hasMore {
		chats = chats[:limit]
	}
	return &HistoryPage{Chats: chats, HasMore: hasMore}, nil
}

// DeleteChat removes a chat and everything hanging off it. Owner only.
func (s *Service) DeleteChat(ctx context.Context, chatID, userID string) error {
	if _, err := s.owned(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chats.Delete(ctx, chatID)
}

// UpdateVisibility switches a chat between private and public. Owner only.
func (s *Service) UpdateVisibility(ctx context.Context, chatID, userID string, visibility Visibility) error {
	if !visibility.Valid() {
		return apperrors.New(apperrors.CodeBadRequest, "chat", fmt.Sprintf("unknown visibility: %s", visibility))
	}
	if _, err := s.owned(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chats.UpdateVisibility(ctx, chatID, visibility)
}

// AssignProject moves a chat into a project, or out of any project when
// projectID is nil. Owner only.
func (s *Service) AssignProject(ctx context.Context, chatID, userID string, projectID *string) error {
	if _, err := s.owned(ctx, chatID, userID); err != nil {
		return err
	}
	return s.chats.UpdateProject(ctx, chatID, projectID)
}

// ListByProject returns a project's chats newest-first.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]*Chat, error) {
	return s.chats.ListByProject(ctx, projectID)
}

// Vote records the caller's up or down signal on a message in their chat.
func (s *Service) Vote(ctx context.Context, chatID, messageID, userID string, voteType VoteType) error {
	if voteType != VoteUp && voteType != VoteDown {
		return apperrors.New(apperrors.CodeBadRequest, "chat", fmt.Sprintf("unknown vote type: %s", voteType))
	}
	if _, err := s.owned(ctx, chatID, userID); err != nil {
		return err
	}
	return s.votes.Upsert(ctx, &Vote{ChatID: chatID, MessageID: messageID, Type: voteType})
}

// ListVotes returns the chat's votes under the read rules.
func (s *Service) ListVotes(ctx context.Context, chatID, userID string) ([]*Vote, error) {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.votes.ListByChatID(ctx, chatID)
}

func (s *Service) owned(ctx context.Context, chatID, userID string) (*Chat, error) {
	conversation, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if conversation.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "chat", "not the chat owner")
	}
	return conversation, nil
}

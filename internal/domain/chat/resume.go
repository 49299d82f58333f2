package chat

import (
	"context"
	"fmt"
	"time"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/stream"
	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/infrastructure/observability"
)

// ResumeStatus classifies the outcome of a resume attempt.
type ResumeStatus string

const (
	// ResumeUnavailable means no registry is configured; the caller answers
	// no-content and the client falls back to non-resumable streaming.
	ResumeUnavailable ResumeStatus = "unavailable"

	// ResumeLive means the turn is still producing; Subscription carries its
	// events from the attachment point forward.
	ResumeLive ResumeStatus = "live"

	// ResumeBackfill means the turn concluded moments ago; Message carries the
	// assistant message to replay as a single append event.
	ResumeBackfill ResumeStatus = "backfill"

	// ResumeEmpty means there is nothing to recover; the caller answers an
	// empty event stream.
	ResumeEmpty ResumeStatus = "empty"
)

// ResumeResult is the outcome of Resume. Exactly one of Subscription and
// Message is set, and only for the live and backfill statuses respectively.
type ResumeResult struct {
	Status       ResumeStatus
	Subscription stream.Subscription
	Message      *Message
}

// Resume recovers the most recent stream of a chat after a client reconnect.
// The checks run in a fixed order: registry availability, chat existence,
// read access, handle existence, live attachment, then recent-message
// backfill.
func (s *Service) Resume(ctx context.Context, chatID, userID string) (*ResumeResult, error) {
	ctx, span := observability.StartResumeSpan(ctx, chatID)
	defer span.End()

	result, err := s.resume(ctx, chatID, userID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.AddResumeOutcome(span, string(result.Status))
	return result, nil
}

func (s *Service) resume(ctx context.Context, chatID, userID string) (*ResumeResult, error) {
	if !s.registry.Ok() {
		metrics.RecordResume(string(ResumeUnavailable))
		return &ResumeResult{Status: ResumeUnavailable}, nil
	}

	conversation, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if conversation.Visibility == VisibilityPrivate && conversation.UserID != userID {
		return nil, apperrors.New(apperrors.CodeForbidden, "chat", "not the chat owner")
	}

	handles, err := s.streams.ListByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list stream handles: %w", err)
	}
	if len(handles) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "chat", "no streams for chat")
	}

	latest := handles[len(handles)-1]
	subscription, err := s.registry.Registry().Attach(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("attach to stream %s: %w", latest.ID, err)
	}
	if subscription != nil {
		metrics.RecordResume(string(ResumeLive))
		return &ResumeResult{Status: ResumeLive, Subscription: subscription}, nil
	}

	// The stream concluded. If the assistant answer landed moments ago the
	// client likely missed it mid-flight; replay it once.
	history, err := s.messages.ListByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	if len(history) == 0 {
		metrics.RecordResume(string(ResumeEmpty))
		return &ResumeResult{Status: ResumeEmpty}, nil
	}

	last := history[len(history)-1]
	if last.Role != RoleAssistant || time.Since(last.CreatedAt) > s.cfg.BackfillWindow {
		metrics.RecordResume(string(ResumeEmpty))
		return &ResumeResult{Status: ResumeEmpty}, nil
	}

	metrics.RecordResume(string(ResumeBackfill))
	return &ResumeResult{Status: ResumeBackfill, Message: last}, nil
}

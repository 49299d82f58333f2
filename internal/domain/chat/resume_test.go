package chat_test

import (
	"context"
	"testing"
	"time"

	"chat-server/internal/domain/apperrors"
	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/stream"
)

func privateChatRepo(owner string) *mockChatRepo {
	return &mockChatRepo{
		findByIDFunc: func(ctx context.Context, id string) (*chat.Chat, error) {
			return &chat.Chat{ID: id, UserID: owner, Visibility: chat.VisibilityPrivate}, nil
		},
	}
}

func TestResumeNoRegistry(t *testing.T) {
	svc := newService(privateChatRepo("user-1"), &mockMessageRepo{}, &mockStreamRepo{}, successRunner("hi"), stream.Unavailable(), nil)

	result, err := svc.Resume(context.Background(), "chat-1", "user-1")
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if result.Status != chat.ResumeUnavailable {
		t.Errorf("status = %s, want unavailable", result.Status)
	}
}

func TestResumeChatNotFound(t *testing.T) {
	registry := stream.NewMemoryRegistry()
	svc := newService(notFoundChatRepo(), &mockMessageRepo{}, &mockStreamRepo{}, successRunner("hi"), stream.Available(registry), nil)

	_, err := svc.Resume(context.Background(), "missing", "user-1")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestResumePrivateChatForbiddenForNonOwner(t *testing.T) {
	registry := stream.NewMemoryRegistry()
	svc := newService(privateChatRepo("owner"), &mockMessageRepo{}, &mockStreamRepo{}, successRunner("hi"), stream.Available(registry), nil)

	_, err := svc.Resume(context.Background(), "chat-1", "intruder")
	if !apperrors.IsCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestResumePublicChatReadableByAnyone(t *testing.T) {
	registry := stream.NewMemoryRegistry()
	chats := &mockChatRepo{
		findByIDFunc: func(ctx context.Context, id string) (*chat.Chat, error) {
			return &chat.Chat{ID: id, UserID: "owner", Visibility: chat.VisibilityPublic}, nil
		},
	}
	streams := &mockStreamRepo{handles: []*chat.StreamHandle{
		{ID: "stream-1", ChatID: "chat-1", CreatedAt: time.Now()},
	}}
	svc := newService(chats, &mockMessageRepo{}, streams, successRunner("hi"), stream.Available(registry), nil)

	result, err := svc.Resume(context.Background(), "chat-1", "someone-else")
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if result.Status != chat.ResumeEmpty {
		t.Errorf("status = %s, want empty", result.Status)
	}
}

func TestResumeNoHandles(t *testing.T) {
	registry := stream.NewMemoryRegistry()
	svc := newService(privateChatRepo("user-1"), &mockMessageRepo{}, &mockStreamRepo{}, successRunner("hi"), stream.Available(registry), nil)

	_, err := svc.Resume(context.Background(), "chat-1", "user-1")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestResumeAttachesToLiveStream(t *testing.T) {
	registry := stream.NewMemoryRegistry()
	producer, err := registry.NewProducer(context.Background(), "stream-2")
	if err != nil {
		t.Fatalf("NewProducer returned error: %v", err)
	}
	defer producer.Close()

	streams := &mockStreamRepo{handles: []*chat.StreamHandle{
		{ID: "stream-1", ChatID: "chat-1", CreatedAt: time.Now().Add(-time.Minute)},
		{ID: "stream-2", ChatID: "chat-1", CreatedAt: time.Now()},
	}}
	svc := newService(privateChatRepo("user-1"), &mockMessageRepo{}, streams, successRunner("hi"), stream.Available(registry), nil)

	result, err := svc.Resume(context.Background(), "chat-1", "user-1")
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if result.Status != chat.ResumeLive {
		t.Fatalf("status = %s, want live", result.Status)
	}
	defer result.Subscription.Close()

	producer.Send(stream.NewEvent(stream.EventDelta, map[string]string{"delta": "more"}))

	select {
	case event := <-result.Subscription.Events():
		if event.Type != stream.EventDelta {
			t.Errorf("event type = %s, want delta", event.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for forwarded event")
	}
}

func TestResumeBackfillWindows(t *testing.T) {
	cases := []struct {
		name     string
		messages []*chat.Message
		want     chat.ResumeStatus
	}{
		{
			name: "recent assistant message backfills",
			messages: []*chat.Message{
				{Role: chat.RoleUser, CreatedAt: time.Now().Add(-10 * time.Second)},
				{Role: chat.RoleAssistant, CreatedAt: time.Now().Add(-5 * time.Second)},
			},
			want: chat.ResumeBackfill,
		},
		{
			name: "stale assistant message yields empty",
			messages: []*chat.Message{
				{Role: chat.RoleAssistant, CreatedAt: time.Now().Add(-time.Minute)},
			},
			want: chat.ResumeEmpty,
		},
		{
			name: "last message not assistant yields empty",
			messages: []*chat.Message{
				{Role: chat.RoleAssistant, CreatedAt: time.Now()},
				{Role: chat.RoleUser, CreatedAt: time.Now()},
			},
			want: chat.ResumeEmpty,
		},
		{
			name:     "no messages yields empty",
			messages: nil,
			want:     chat.ResumeEmpty,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			registry := stream.NewMemoryRegistry()
			messages := &mockMessageRepo{
				listByChatIDFunc: func(ctx context.Context, chatID string) ([]*chat.Message, error) {
					return tc.messages, nil
				},
			}
			streams := &mockStreamRepo{handles: []*chat.StreamHandle{
				{ID: "stream-concluded", ChatID: "chat-1", CreatedAt: time.Now()},
			}}
			svc := newService(privateChatRepo("user-1"), messages, streams, successRunner("hi"), stream.Available(registry), nil)

			result, err := svc.Resume(context.Background(), "chat-1", "user-1")
			if err != nil {
				t.Fatalf("Resume returned error: %v", err)
			}
			if result.Status != tc.want {
				t.Errorf("status = %s, want %s", result.Status, tc.want)
			}
			if tc.want == chat.ResumeBackfill && result.Message == nil {
				t.Error("backfill result must carry the assistant message")
			}
		})
	}
}

package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/llm"
)

type fakeTitleProvider struct {
	response string
	err      error
}

func (p *fakeTitleProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{
			{Message: llm.ChatMessage{Role: "assistant", Content: p.response}},
		},
	}, nil
}

func (p *fakeTitleProvider) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	return nil, errors.New("not implemented")
}

func TestGenerateSanitizesTitle(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     string
	}{
		{"plain", "Alpine road trip planning", "Alpine road trip planning"},
		{"strips quotes and colons", `"Road trip: the Alps"`, "Road trip the Alps"},
		{"first line only", "Trip plan\nSecond line", "Trip plan"},
		{
			"truncated to eighty characters",
			"This title is far far far far far far far far far far far far far too long to keep around",
			"This title is far far far far far far far far far far far far far too long to ke",
		},
		{
			"truncation keeps runes whole",
			strings.Repeat("a", 79) + "über",
			strings.Repeat("a", 79),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stored string
			chats := &mockChatRepo{
				updateTitleFunc: func(ctx context.Context, id, title string) error {
					stored = title
					return nil
				},
			}
			gen := chat.NewTitleGenerator(chats, &fakeTitleProvider{response: tc.response}, zerolog.Nop())

			if err := gen.Generate(context.Background(), "chat-1", "first message"); err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if stored != tc.want {
				t.Errorf("stored title = %q, want %q", stored, tc.want)
			}
			if len(stored) > 80 {
				t.Errorf("title exceeds 80 characters: %d", len(stored))
			}
			if !utf8.ValidString(stored) {
				t.Errorf("title is not valid UTF-8: %q", stored)
			}
		})
	}
}

func TestGenerateKeepsFallbackOnEmptyTitle(t *testing.T) {
	updated := false
	chats := &mockChatRepo{
		updateTitleFunc: func(ctx context.Context, id, title string) error {
			updated = true
			return nil
		},
	}
	gen := chat.NewTitleGenerator(chats, &fakeTitleProvider{response: `":"`}, zerolog.Nop())

	if err := gen.Generate(context.Background(), "chat-1", "first message"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if updated {
		t.Error("empty sanitized title must not overwrite the fallback")
	}
}

func TestGeneratePropagatesProviderError(t *testing.T) {
	gen := chat.NewTitleGenerator(&mockChatRepo{}, &fakeTitleProvider{err: errors.New("boom")}, zerolog.Nop())

	if err := gen.Generate(context.Background(), "chat-1", "first message"); err == nil {
		t.Fatal("expected error from provider")
	}
}

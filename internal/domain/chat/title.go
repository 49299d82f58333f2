package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/llm"
)

// TitleGenerator produces a real chat title from the opening user message,
// replacing the provisional fallback title. It runs on the background worker.
type TitleGenerator struct {
	chats    Repository
	provider llm.Provider
	log      zerolog.Logger
}

// NewTitleGenerator wires dependencies.
func NewTitleGenerator(chats Repository, provider llm.Provider, log zerolog.Logger) *TitleGenerator {
	return &TitleGenerator{
		chats:    chats,
		provider: provider,
		log:      log.With().Str("component", "title-generator").Logger(),
	}
}

// Generate asks the title model for a title and stores it on the chat.
func (g *TitleGenerator) Generate(ctx context.Context, chatID, prompt string) error {
	resp, err := g.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model: llm.ModelTitle,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: llm.TitleSystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return fmt.Errorf("title completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("title model returned no choices")
	}

	raw, _ := resp.Choices[0].Message.Content.(string)
	title := sanitizeTitle(raw)
	if title == "" {
		g.log.Warn().Str("chat_id", chatID).Msg("title model returned empty title, keeping fallback")
		return nil
	}

	if err := g.chats.UpdateTitle(ctx, chatID, title); err != nil {
		return fmt.Errorf("update chat title: %w", err)
	}
	return nil
}

// sanitizeTitle enforces the title contract: single line, no quotes or
// colons, at most 80 characters.
func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ':':
			return -1
		}
		return r
	}, title)
	title = strings.TrimSpace(title)

	return strings.TrimSpace(truncateTitle(title, maxTitleLen))
}

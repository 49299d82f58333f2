package chat_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"chat-server/internal/domain/chat"
)

func TestFallbackTitle(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"short text passes through", "Plan a trip", "Plan a trip"},
		{"empty message", "", "New chat"},
		{"whitespace only", "   \n\t ", "New chat"},
		{
			"long text truncated to eighty bytes",
			strings.Repeat("x", 100),
			strings.Repeat("x", 80),
		},
		{
			"truncation never splits a rune",
			strings.Repeat("a", 79) + "über den Bergen",
			strings.Repeat("a", 79),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			message := chat.Message{
				Parts: []chat.Part{{Type: chat.PartTypeText, Text: tc.text}},
			}

			got := chat.FallbackTitle(message)
			if got != tc.want {
				t.Errorf("FallbackTitle = %q, want %q", got, tc.want)
			}
			if len(got) > 80 {
				t.Errorf("title exceeds 80 bytes: %d", len(got))
			}
			if !utf8.ValidString(got) {
				t.Errorf("title is not valid UTF-8: %q", got)
			}
		})
	}
}

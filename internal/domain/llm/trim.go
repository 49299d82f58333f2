package llm

import (
	"encoding/json"
	"unicode/utf8"
)

const (
	// DefaultContextLength is used when the model context window is unknown.
	DefaultContextLength = 128000

	// TokenEstimateRatio estimates ~4 characters per token.
	TokenEstimateRatio = 4

	// MinMessagesToKeep ensures the system prompt plus the latest user message
	// always survive trimming.
	MinMessagesToKeep = 2

	// SafetyMarginRatio reserves space for the response and tool overhead.
	SafetyMarginRatio = 0.80
)

// EstimateTokenCount roughly estimates tokens for a message payload.
func EstimateTokenCount(content interface{}) int {
	var text string
	switch v := content.(type) {
	case string:
		text = v
	case nil:
		return 0
	default:
		raw, _ := json.Marshal(v)
		text = string(raw)
	}
	return utf8.RuneCountInString(text) / TokenEstimateRatio
}

// EstimateMessagesTokenCount estimates total tokens across messages, with a
// small per-message overhead for roles and tool call structure.
func EstimateMessagesTokenCount(messages []ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += 10
		total += EstimateTokenCount(msg.Content)
		for _, tc := range msg.ToolCalls {
			total += 20
			total += EstimateTokenCount(tc.Function.Name)
			total += EstimateTokenCount(string(tc.Function.Arguments))
		}
	}
	return total
}

// TrimResult reports what trimming did to the model input.
type TrimResult struct {
	Messages        []ChatMessage
	TrimmedCount    int
	EstimatedTokens int
}

// TrimMessages drops the oldest history entries until the estimated token
// count fits within the context budget. The leading system message and the
// trailing user message are never dropped.
func TrimMessages(messages []ChatMessage, contextLength int) TrimResult {
	if contextLength <= 0 {
		contextLength = DefaultContextLength
	}
	budget := int(float64(contextLength) * SafetyMarginRatio)

	estimated := EstimateMessagesTokenCount(messages)
	if estimated <= budget || len(messages) <= MinMessagesToKeep {
		return TrimResult{Messages: messages, EstimatedTokens: estimated}
	}

	hasSystem := len(messages) > 0 && messages[0].Role == "system"

	head := 0
	if hasSystem {
		head = 1
	}

	trimmed := 0
	// Drop from the oldest non-system entry; always retain the final message.
	for estimated > budget && len(messages)-trimmed > MinMessagesToKeep {
		if head+trimmed >= len(messages)-1 {
			break
		}
		estimated -= 10 + EstimateTokenCount(messages[head+trimmed].Content)
		trimmed++
	}

	result := make([]ChatMessage, 0, len(messages)-trimmed)
	result = append(result, messages[:head]...)
	result = append(result, messages[head+trimmed:]...)

	return TrimResult{
		Messages:        result,
		TrimmedCount:    trimmed,
		EstimatedTokens: estimated,
	}
}

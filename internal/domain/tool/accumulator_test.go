package tool

import (
	"encoding/json"
	"testing"

	"chat-server/internal/domain/llm"
)

func TestStreamAccumulatorAssemblesFragmentedToolCall(t *testing.T) {
	acc := newStreamAccumulator()

	acc.Apply(&llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{
			Delta: llm.ChatMessage{
				Role: "assistant",
				ToolCalls: []llm.ToolCall{{
					ID:   "call-1",
					Type: "function",
					Function: llm.ToolFunction{
						Name:      "get_weather",
						Arguments: json.RawMessage(`{"latitude":`),
					},
				}},
			},
		}},
	})
	acc.Apply(&llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{
			Delta: llm.ChatMessage{
				ToolCalls: []llm.ToolCall{{
					ID:       "call-1",
					Function: llm.ToolFunction{Arguments: json.RawMessage(`52.52,"longitude":13.4}`)},
				}},
			},
		}},
	})
	acc.Apply(&llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{FinishReason: "tool_calls"}},
	})

	choice := acc.Result()
	if choice == nil {
		t.Fatal("expected an accumulated choice")
	}
	if choice.FinishReason != "tool_calls" {
		t.Errorf("expected finish reason 'tool_calls', got %q", choice.FinishReason)
	}
	if len(choice.Message.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(choice.Message.ToolCalls))
	}

	call := choice.Message.ToolCalls[0]
	if call.ID != "call-1" {
		t.Errorf("expected call id 'call-1', got %q", call.ID)
	}
	if call.Function.Name != "get_weather" {
		t.Errorf("expected function name 'get_weather', got %q", call.Function.Name)
	}

	var args struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.Unmarshal(call.Function.Arguments, &args); err != nil {
		t.Fatalf("reassembled arguments are not valid JSON: %v", err)
	}
	if args.Latitude != 52.52 || args.Longitude != 13.4 {
		t.Errorf("unexpected arguments: %+v", args)
	}
}

func TestStreamAccumulatorInterleavedTextAndCalls(t *testing.T) {
	acc := newStreamAccumulator()

	acc.Apply(&llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{
			Delta: llm.ChatMessage{Role: "assistant", Content: "Let me check. "},
		}},
	})
	acc.Apply(&llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{
			Delta: llm.ChatMessage{Content: "One moment."},
		}},
	})
	acc.Apply(&llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{FinishReason: "stop"}},
	})

	choice := acc.Result()
	if choice == nil {
		t.Fatal("expected an accumulated choice")
	}
	if got, ok := choice.Message.Content.(string); !ok || got != "Let me check. One moment." {
		t.Errorf("expected concatenated content, got %v", choice.Message.Content)
	}
}

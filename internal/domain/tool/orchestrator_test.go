package tool_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
	"chat-server/internal/domain/tool"
)

type fakeStream struct {
	deltas []llm.ChatCompletionDelta
	pos    int
}

func (s *fakeStream) Recv() (*llm.ChatCompletionDelta, error) {
	if s.pos >= len(s.deltas) {
		return nil, io.EOF
	}
	delta := s.deltas[s.pos]
	s.pos++
	return &delta, nil
}

func (s *fakeStream) Close() error { return nil }

type fakeProvider struct {
	streams  [][]llm.ChatCompletionDelta
	requests []llm.ChatCompletionRequest
}

func (p *fakeProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	p.requests = append(p.requests, req)
	if len(p.streams) == 0 {
		return nil, errors.New("no more scripted streams")
	}
	next := p.streams[0]
	p.streams = p.streams[1:]
	return &fakeStream{deltas: next}, nil
}

type recordingWriter struct {
	mu     sync.Mutex
	events []stream.Event
}

func (w *recordingWriter) Send(event stream.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event)
}

func (w *recordingWriter) byType(eventType string) []stream.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []stream.Event
	for _, e := range w.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeTool struct {
	name   string
	invoke func(ctx context.Context, inv tool.Invocation) (*tool.Result, error)
	calls  int
}

func (t *fakeTool) Name() string { return t.name }

func (t *fakeTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:       t.name,
			Parameters: map[string]interface{}{"type": "object"},
		},
	}
}

func (t *fakeTool) Invoke(ctx context.Context, inv tool.Invocation) (*tool.Result, error) {
	t.calls++
	return t.invoke(ctx, inv)
}

func textDeltas(chunks ...string) []llm.ChatCompletionDelta {
	deltas := make([]llm.ChatCompletionDelta, 0, len(chunks)+1)
	for _, chunk := range chunks {
		deltas = append(deltas, llm.ChatCompletionDelta{
			Choices: []llm.ChatCompletionDeltaChoice{
				{Delta: llm.ChatMessage{Role: "assistant", Content: chunk}},
			},
		})
	}
	deltas = append(deltas, llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{FinishReason: "stop"}},
	})
	return deltas
}

func toolCallDeltas(callID, name string, argFragments ...string) []llm.ChatCompletionDelta {
	deltas := []llm.ChatCompletionDelta{{
		Choices: []llm.ChatCompletionDeltaChoice{{
			Delta: llm.ChatMessage{
				Role: "assistant",
				ToolCalls: []llm.ToolCall{{
					ID:       callID,
					Type:     "function",
					Function: llm.ToolFunction{Name: name},
				}},
			},
		}},
	}}
	for _, fragment := range argFragments {
		deltas = append(deltas, llm.ChatCompletionDelta{
			Choices: []llm.ChatCompletionDeltaChoice{{
				Delta: llm.ChatMessage{
					ToolCalls: []llm.ToolCall{{
						ID:       callID,
						Function: llm.ToolFunction{Arguments: json.RawMessage(fragment)},
					}},
				},
			}},
		})
	}
	deltas = append(deltas, llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{{FinishReason: "tool_calls"}},
	})
	return deltas
}

func TestExecutePlainAnswer(t *testing.T) {
	provider := &fakeProvider{streams: [][]llm.ChatCompletionDelta{
		textDeltas("Hello", ", world"),
	}}
	writer := &recordingWriter{}
	orchestrator := tool.NewOrchestrator(provider, 5, time.Second)

	result, err := orchestrator.Execute(context.Background(), tool.ExecuteParams{
		Model:    llm.ModelChat,
		Messages: []llm.ChatMessage{{Role: "user", Content: "hi"}},
		Output:   writer,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Steps != 1 {
		t.Errorf("expected 1 step, got %d", result.Steps)
	}
	if result.Text != "Hello, world" {
		t.Errorf("unexpected text: %q", result.Text)
	}
	if len(result.Parts) != 1 || result.Parts[0].Type != tool.PartTypeText {
		t.Fatalf("expected a single text part, got %+v", result.Parts)
	}
	if deltas := writer.byType(stream.EventDelta); len(deltas) != 2 {
		t.Errorf("expected 2 delta events, got %d", len(deltas))
	}
}

func TestExecuteToolCallRoundTrip(t *testing.T) {
	provider := &fakeProvider{streams: [][]llm.ChatCompletionDelta{
		toolCallDeltas("call_1", "getWeather", `{"latitude":`, `52.52,"longitude":13.41}`),
		textDeltas("Sunny in Berlin."),
	}}
	writer := &recordingWriter{}

	weather := &fakeTool{
		name: "getWeather",
		invoke: func(ctx context.Context, inv tool.Invocation) (*tool.Result, error) {
			var args struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			}
			if err := json.Unmarshal(inv.Arguments, &args); err != nil {
				t.Fatalf("tool received unparseable arguments %s: %v", inv.Arguments, err)
			}
			if args.Latitude != 52.52 {
				t.Errorf("fragmented arguments were not reassembled: %+v", args)
			}
			return &tool.Result{Content: json.RawMessage(`{"temperature":21}`)}, nil
		},
	}

	orchestrator := tool.NewOrchestrator(provider, 5, time.Second)
	result, err := orchestrator.Execute(context.Background(), tool.ExecuteParams{
		Model:    llm.ModelChat,
		Messages: []llm.ChatMessage{{Role: "user", Content: "weather in berlin?"}},
		Tools:    tool.NewRegistry(weather),
		UserID:   "user-1",
		Output:   writer,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if weather.calls != 1 {
		t.Errorf("expected exactly one tool invocation, got %d", weather.calls)
	}
	if result.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", result.Steps)
	}
	if result.Text != "Sunny in Berlin." {
		t.Errorf("unexpected final text: %q", result.Text)
	}

	wantTypes := []string{tool.PartTypeToolCall, tool.PartTypeToolResult, tool.PartTypeText}
	if len(result.Parts) != len(wantTypes) {
		t.Fatalf("expected %d parts, got %+v", len(wantTypes), result.Parts)
	}
	for i, wantType := range wantTypes {
		if result.Parts[i].Type != wantType {
			t.Errorf("part %d: expected type %s, got %s", i, wantType, result.Parts[i].Type)
		}
	}

	if len(result.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(result.Executions))
	}
	if result.Executions[0].Status != tool.ExecutionStatusCompleted {
		t.Errorf("expected completed execution, got %s", result.Executions[0].Status)
	}

	if calls := writer.byType(stream.EventToolCall); len(calls) != 1 {
		t.Errorf("expected 1 tool.call event, got %d", len(calls))
	}
	if results := writer.byType(stream.EventToolResult); len(results) != 1 {
		t.Errorf("expected 1 tool.result event, got %d", len(results))
	}

	// The second model request must include the tool result message.
	if len(provider.requests) != 2 {
		t.Fatalf("expected 2 model requests, got %d", len(provider.requests))
	}
	last := provider.requests[1].Messages[len(provider.requests[1].Messages)-1]
	if last.Role != "tool" || last.ToolCallID == nil || *last.ToolCallID != "call_1" {
		t.Errorf("second request missing tool result message: %+v", last)
	}
}

func TestExecuteUnknownToolRecordsFailure(t *testing.T) {
	provider := &fakeProvider{streams: [][]llm.ChatCompletionDelta{
		toolCallDeltas("call_1", "launchMissiles", `{}`),
		textDeltas("I cannot do that."),
	}}
	writer := &recordingWriter{}

	orchestrator := tool.NewOrchestrator(provider, 5, time.Second)
	result, err := orchestrator.Execute(context.Background(), tool.ExecuteParams{
		Model:    llm.ModelChat,
		Messages: []llm.ChatMessage{{Role: "user", Content: "do it"}},
		Tools:    tool.NewRegistry(),
		Output:   writer,
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(result.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(result.Executions))
	}
	if result.Executions[0].Status != tool.ExecutionStatusFailed {
		t.Errorf("expected failed execution, got %s", result.Executions[0].Status)
	}
}

func TestExecuteStepBudgetExceeded(t *testing.T) {
	const budget = 3
	streams := make([][]llm.ChatCompletionDelta, 0, budget)
	for i := 0; i < budget; i++ {
		streams = append(streams, toolCallDeltas("call_1", "loop", `{}`))
	}
	provider := &fakeProvider{streams: streams}
	writer := &recordingWriter{}

	loop := &fakeTool{
		name: "loop",
		invoke: func(ctx context.Context, inv tool.Invocation) (*tool.Result, error) {
			return &tool.Result{Content: json.RawMessage(`{"again":true}`)}, nil
		},
	}

	orchestrator := tool.NewOrchestrator(provider, budget, time.Second)
	_, err := orchestrator.Execute(context.Background(), tool.ExecuteParams{
		Model:    llm.ModelChat,
		Messages: []llm.ChatMessage{{Role: "user", Content: "loop forever"}},
		Tools:    tool.NewRegistry(loop),
		Output:   writer,
	})
	if !errors.Is(err, tool.ErrStepBudgetExceeded) {
		t.Fatalf("expected ErrStepBudgetExceeded, got %v", err)
	}
	if loop.calls != budget {
		t.Errorf("expected %d tool invocations, got %d", budget, loop.calls)
	}
}

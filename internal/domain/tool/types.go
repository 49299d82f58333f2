// Package tool drives the model's tool-calling loop and hosts the built-in
// tool implementations.
package tool

import (
	"context"
	"encoding/json"
	"time"

	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
)

// Call is a parsed tool invocation request from the model.
type Call struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Result is what a tool handed back to the model.
type Result struct {
	Content json.RawMessage `json:"content,omitempty"`
	IsError bool            `json:"is_error"`
	Error   string          `json:"error,omitempty"`
}

// Invocation carries the per-turn context a tool runs with. Output is the live
// output channel, so tools can emit intermediate UI events mid-execution.
type Invocation struct {
	UserID    string
	Arguments json.RawMessage
	Output    stream.Writer
}

// Handler is one callable tool.
type Handler interface {
	Name() string
	Definition() llm.ToolDefinition
	Invoke(ctx context.Context, inv Invocation) (*Result, error)
}

// Execution records one tool invocation within a turn.
type Execution struct {
	CallID         string          `json:"call_id"`
	ToolName       string          `json:"tool_name"`
	Arguments      json.RawMessage `json:"arguments"`
	Status         string          `json:"status"`
	Result         *Result         `json:"result,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	ExecutionOrder int             `json:"execution_order"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}

// Execution statuses.
const (
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"
)

// Registry is the active-tool allowlist for a turn.
type Registry struct {
	handlers map[string]Handler
	order    []string
}

// NewRegistry builds a registry preserving handler order.
func NewRegistry(handlers ...Handler) *Registry {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if _, exists := r.handlers[h.Name()]; exists {
			continue
		}
		r.handlers[h.Name()] = h
		r.order = append(r.order, h.Name())
	}
	return r
}

// Get looks up a handler by name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Definitions returns the tool contracts passed to the model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.handlers[name].Definition())
	}
	return defs
}

// Names returns the active tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// ParseToolCall converts the wire-format tool call into a Call.
func ParseToolCall(raw llm.ToolCall) (Call, error) {
	call := Call{
		ID:        raw.ID,
		Name:      raw.Function.Name,
		Arguments: raw.Function.Arguments,
	}
	if len(call.Arguments) == 0 {
		call.Arguments = json.RawMessage("{}")
	}
	return call, nil
}

package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
	"chat-server/internal/infrastructure/observability"
)

// ErrStepBudgetExceeded is returned when a turn chains more tool-call steps
// than the configured budget allows.
var ErrStepBudgetExceeded = errors.New("tool step budget exceeded")

// Part is one content element produced during a turn, in emission order.
type Part struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Arguments  json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// Part types.
const (
	PartTypeText       = "text"
	PartTypeToolCall   = "tool-call"
	PartTypeToolResult = "tool-result"
)

// Orchestrator runs the model against the active tools as an explicit bounded
// loop: one streamed completion per step, tools executed between steps, until
// the model answers without requesting tools or the step budget runs out.
type Orchestrator struct {
	provider    llm.Provider
	maxSteps    int
	toolTimeout time.Duration
}

// NewOrchestrator constructs the turn orchestrator.
func NewOrchestrator(provider llm.Provider, maxSteps int, toolTimeout time.Duration) *Orchestrator {
	if maxSteps <= 0 {
		maxSteps = 5
	}
	return &Orchestrator{
		provider:    provider,
		maxSteps:    maxSteps,
		toolTimeout: toolTimeout,
	}
}

// ExecuteParams is the input to one turn's orchestration.
type ExecuteParams struct {
	Model    string
	Messages []llm.ChatMessage
	Tools    *Registry
	UserID   string

	// Output is the live output channel; every delta and tool event is
	// forwarded onto it in model order.
	Output stream.Writer
}

// ExecuteResult is the outcome of a completed turn.
type ExecuteResult struct {
	// Parts is the assistant message content across all steps, in order.
	Parts []Part

	// Text is the concatenation of the text parts.
	Text string

	Steps      int
	Executions []Execution
}

// Execute drains the orchestration loop. It returns only after the model
// produced a final answer or a step failed.
func (o *Orchestrator) Execute(ctx context.Context, params ExecuteParams) (*ExecuteResult, error) {
	messages := append([]llm.ChatMessage(nil), params.Messages...)

	var (
		parts      []Part
		text       strings.Builder
		executions []Execution
	)

	toolDefs := []llm.ToolDefinition(nil)
	if params.Tools != nil {
		toolDefs = params.Tools.Definitions()
	}

	for step := 0; step < o.maxSteps; step++ {
		req := llm.ChatCompletionRequest{
			Model:    params.Model,
			Messages: messages,
			Tools:    toolDefs,
			Stream:   true,
		}

		choice, err := o.streamCompletion(ctx, req, params.Output)
		if err != nil {
			return nil, fmt.Errorf("model step %d: %w", step+1, err)
		}

		messages = append(messages, choice.Message)

		if stepText := flattenContent(choice.Message.Content); stepText != "" {
			parts = append(parts, Part{Type: PartTypeText, Text: stepText})
			if text.Len() > 0 {
				text.WriteString(" ")
			}
			text.WriteString(stepText)
		}

		if len(choice.Message.ToolCalls) == 0 {
			return &ExecuteResult{
				Parts:      parts,
				Text:       text.String(),
				Steps:      step + 1,
				Executions: executions,
			}, nil
		}

		for _, rawCall := range choice.Message.ToolCalls {
			call, err := ParseToolCall(rawCall)
			if err != nil {
				return nil, fmt.Errorf("parse tool call: %w", err)
			}

			params.Output.Send(stream.NewEvent(stream.EventToolCall, call))

			execution := o.runTool(ctx, params, call, step+1)
			execution.ExecutionOrder = len(executions) + 1
			executions = append(executions, execution)

			params.Output.Send(stream.NewEvent(stream.EventToolResult, map[string]interface{}{
				"callId": call.ID,
				"result": execution.Result,
			}))

			parts = append(parts,
				Part{
					Type:       PartTypeToolCall,
					ToolCallID: call.ID,
					ToolName:   call.Name,
					Arguments:  call.Arguments,
				},
				Part{
					Type:       PartTypeToolResult,
					ToolCallID: call.ID,
					ToolName:   call.Name,
					Result:     resultPayload(execution),
				},
			)

			messages = append(messages, toolResultMessage(call.ID, execution))
		}
	}

	return nil, ErrStepBudgetExceeded
}

func (o *Orchestrator) runTool(ctx context.Context, params ExecuteParams, call Call, step int) Execution {
	ctx, span := observability.StartToolSpan(ctx, call.Name, call.ID, step)
	defer span.End()

	execution := Execution{
		CallID:    call.ID,
		ToolName:  call.Name,
		Arguments: call.Arguments,
		StartedAt: time.Now(),
	}

	finish := func(result *Result, errMsg string) Execution {
		execution.Result = result
		execution.ErrorMessage = errMsg
		execution.FinishedAt = time.Now()
		if errMsg != "" || (result != nil && result.IsError) {
			execution.Status = ExecutionStatusFailed
			if execution.ErrorMessage == "" {
				execution.ErrorMessage = result.Error
			}
			observability.RecordError(span, errors.New(execution.ErrorMessage))
		} else {
			execution.Status = ExecutionStatusCompleted
		}
		return execution
	}

	if params.Tools == nil {
		return finish(nil, "no tools available")
	}
	handler, ok := params.Tools.Get(call.Name)
	if !ok {
		return finish(nil, fmt.Sprintf("unknown tool: %s", call.Name))
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if o.toolTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, o.toolTimeout)
		defer cancel()
	}

	result, err := handler.Invoke(callCtx, Invocation{
		UserID:    params.UserID,
		Arguments: call.Arguments,
		Output:    params.Output,
	})
	if err != nil {
		return finish(result, err.Error())
	}
	return finish(result, "")
}

func (o *Orchestrator) streamCompletion(ctx context.Context, req llm.ChatCompletionRequest, output stream.Writer) (*llm.ChatCompletionChoice, error) {
	modelStream, err := o.provider.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer modelStream.Close()

	accumulator := newStreamAccumulator()

	for {
		delta, err := modelStream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if delta == nil {
			continue
		}
		if deltaText := extractDeltaText(*delta); deltaText != "" {
			output.Send(stream.NewEvent(stream.EventDelta, map[string]string{"delta": deltaText}))
		}
		accumulator.Apply(delta)
	}

	choice := accumulator.Result()
	if choice == nil {
		return nil, errors.New("stream produced no choices")
	}
	return choice, nil
}

func toolResultMessage(toolCallID string, execution Execution) llm.ChatMessage {
	var resultText string
	switch {
	case execution.ErrorMessage != "":
		resultText = execution.ErrorMessage
	case execution.Result != nil && len(execution.Result.Content) > 0:
		resultText = string(execution.Result.Content)
	default:
		resultText = "[tool execution completed]"
	}

	return llm.ChatMessage{
		Role:       "tool",
		Content:    map[string]string{"type": "text", "text": resultText},
		ToolCallID: &toolCallID,
	}
}

func resultPayload(execution Execution) json.RawMessage {
	if execution.ErrorMessage != "" {
		raw, _ := json.Marshal(map[string]string{"error": execution.ErrorMessage})
		return raw
	}
	if execution.Result != nil && len(execution.Result.Content) > 0 {
		return execution.Result.Content
	}
	return json.RawMessage(`{}`)
}

func extractDeltaText(delta llm.ChatCompletionDelta) string {
	for _, choice := range delta.Choices {
		if choice.Delta.Content == nil {
			continue
		}
		if text := flattenContent(choice.Delta.Content); text != "" {
			return text
		}
	}
	return ""
}

func flattenContent(content interface{}) string {
	switch v := content.(type) {
	case string:
		return v
	case []interface{}:
		builder := strings.Builder{}
		for _, item := range v {
			builder.WriteString(flattenContent(item))
		}
		return builder.String()
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok {
			return text
		}
	}
	return ""
}

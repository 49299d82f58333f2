package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"chat-server/internal/domain/llm"
)

// streamAccumulator rebuilds a complete choice from streamed deltas, including
// tool calls whose arguments arrive fragmented across chunks.
type streamAccumulator struct {
	choices map[int]*choiceAccumulator
}

func newStreamAccumulator() *streamAccumulator {
	return &streamAccumulator{
		choices: make(map[int]*choiceAccumulator),
	}
}

func (a *streamAccumulator) Apply(delta *llm.ChatCompletionDelta) {
	if delta == nil {
		return
	}
	for _, choice := range delta.Choices {
		acc := a.ensure(choice.Index)
		acc.apply(choice)
	}
}

func (a *streamAccumulator) ensure(index int) *choiceAccumulator {
	if acc, ok := a.choices[index]; ok {
		return acc
	}
	acc := &choiceAccumulator{
		role:      "assistant",
		toolCalls: make(map[string]*toolCallAccumulator),
	}
	a.choices[index] = acc
	return acc
}

func (a *streamAccumulator) Result() *llm.ChatCompletionChoice {
	if len(a.choices) == 0 {
		return nil
	}
	acc := a.choices[0]
	choice := acc.build(0)
	return &choice
}

type choiceAccumulator struct {
	role         string
	finishReason string
	content      strings.Builder
	toolCalls    map[string]*toolCallAccumulator
	toolOrder    []string
}

func (c *choiceAccumulator) apply(choice llm.ChatCompletionDeltaChoice) {
	if choice.Delta.Role != "" {
		c.role = choice.Delta.Role
	}

	if choice.Delta.Content != nil {
		c.appendContent(choice.Delta.Content)
	}

	for idx, call := range choice.Delta.ToolCalls {
		c.addOrUpdateToolCall(idx, call)
	}

	if choice.FinishReason != "" {
		c.finishReason = choice.FinishReason
	}
}

func (c *choiceAccumulator) appendContent(content interface{}) {
	switch v := content.(type) {
	case string:
		c.content.WriteString(v)
	case []interface{}:
		for _, item := range v {
			c.appendContent(item)
		}
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok {
			c.content.WriteString(text)
		}
	case nil:
		return
	default:
		c.content.WriteString(fmt.Sprint(v))
	}
}

func (c *choiceAccumulator) addOrUpdateToolCall(idx int, call llm.ToolCall) {
	id := call.ID
	if id == "" {
		id = fmt.Sprintf("tool_%d", len(c.toolOrder)+idx)
	}

	builder, ok := c.toolCalls[id]
	if !ok {
		builder = &toolCallAccumulator{}
		builder.call.ID = id
		c.toolCalls[id] = builder
		c.toolOrder = append(c.toolOrder, id)
	}

	if call.Type != "" {
		builder.call.Type = call.Type
	}
	if call.Function.Name != "" {
		builder.call.Function.Name = call.Function.Name
	}
	if len(call.Function.Arguments) > 0 {
		builder.args.Write(call.Function.Arguments)
		builder.call.Function.Arguments = json.RawMessage(builder.args.String())
	}
}

func (c *choiceAccumulator) build(index int) llm.ChatCompletionChoice {
	message := llm.ChatMessage{
		Role: c.role,
	}
	if c.content.Len() > 0 {
		message.Content = c.content.String()
	}
	if len(c.toolOrder) > 0 {
		message.ToolCalls = make([]llm.ToolCall, 0, len(c.toolOrder))
		for _, id := range c.toolOrder {
			builder := c.toolCalls[id]
			call := builder.call
			if len(call.Function.Arguments) == 0 && builder.args.Len() > 0 {
				call.Function.Arguments = json.RawMessage(builder.args.String())
			}
			message.ToolCalls = append(message.ToolCalls, call)
		}
	}

	return llm.ChatCompletionChoice{
		Index:        index,
		Message:      message,
		FinishReason: c.finishReason,
	}
}

// toolCallAccumulator collects one tool call's fragmented argument chunks.
type toolCallAccumulator struct {
	call llm.ToolCall
	args strings.Builder
}

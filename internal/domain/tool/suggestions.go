package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-server/internal/domain/document"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
)

// RequestSuggestionsTool asks the artifact model for edit suggestions on an
// existing document and streams them to the client as data events.
type RequestSuggestionsTool struct {
	documents document.Service
}

// NewRequestSuggestionsTool wires the document service.
func NewRequestSuggestionsTool(documents document.Service) *RequestSuggestionsTool {
	return &RequestSuggestionsTool{documents: documents}
}

func (t *RequestSuggestionsTool) Name() string { return "requestSuggestions" }

func (t *RequestSuggestionsTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        t.Name(),
			Description: "Request suggestions for a document",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"documentId": map[string]interface{}{
						"type":        "string",
						"description": "The ID of the document to request edits for",
					},
				},
				"required": []string{"documentId"},
			},
		},
	}
}

type requestSuggestionsArgs struct {
	DocumentID string `json:"documentId"`
}

func (t *RequestSuggestionsTool) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	var args requestSuggestionsArgs
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("invalid arguments: %v", err)}, nil
	}

	suggestions, err := t.documents.GenerateSuggestions(ctx, args.DocumentID, inv.UserID)
	if err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("generate suggestions failed: %v", err)}, nil
	}

	if inv.Output != nil {
		for _, sg := range suggestions {
			inv.Output.Send(stream.NewEvent(stream.EventData, map[string]interface{}{
				"kind":          "suggestion",
				"id":            sg.ID,
				"documentId":    sg.DocumentID,
				"originalText":  sg.OriginalText,
				"suggestedText": sg.SuggestedText,
				"description":   sg.Description,
			}))
		}
	}

	return marshalResult(map[string]interface{}{
		"documentId": args.DocumentID,
		"count":      len(suggestions),
		"message":    "Suggestions have been added to the document",
	})
}

var _ Handler = (*RequestSuggestionsTool)(nil)

package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"chat-server/internal/domain/document"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/stream"
)

// CreateDocumentTool lets the model spawn a document artifact. The generated
// document is surfaced to the client through data events on the live stream so
// the UI can render it before the turn finishes.
type CreateDocumentTool struct {
	documents document.Service
}

// NewCreateDocumentTool wires the document service.
func NewCreateDocumentTool(documents document.Service) *CreateDocumentTool {
	return &CreateDocumentTool{documents: documents}
}

func (t *CreateDocumentTool) Name() string { return "createDocument" }

func (t *CreateDocumentTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        t.Name(),
			Description: "Create a document for writing or content creation activities. The document content is generated based on the title and kind.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title": map[string]interface{}{"type": "string"},
					"kind": map[string]interface{}{
						"type": "string",
						"enum": []string{"text", "code", "image", "sheet"},
					},
				},
				"required": []string{"title", "kind"},
			},
		},
	}
}

type createDocumentArgs struct {
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

func (t *CreateDocumentTool) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	var args createDocumentArgs
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("invalid arguments: %v", err)}, nil
	}

	doc, err := t.documents.Create(ctx, document.CreateParams{
		UserID: inv.UserID,
		Title:  args.Title,
		Kind:   document.Kind(args.Kind),
	})
	if err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("create document failed: %v", err)}, nil
	}

	emitDocumentEvent(inv.Output, "document.created", doc)

	return marshalResult(map[string]string{
		"id":    doc.ID,
		"title": doc.Title,
		"kind":  string(doc.Kind),
	})
}

var _ Handler = (*CreateDocumentTool)(nil)

// UpdateDocumentTool lets the model revise an existing document.
type UpdateDocumentTool struct {
	documents document.Service
}

// NewUpdateDocumentTool wires the document service.
func NewUpdateDocumentTool(documents document.Service) *UpdateDocumentTool {
	return &UpdateDocumentTool{documents: documents}
}

func (t *UpdateDocumentTool) Name() string { return "updateDocument" }

func (t *UpdateDocumentTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        t.Name(),
			Description: "Update a document with the given description of changes.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id":          map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
				},
				"required": []string{"id", "description"},
			},
		},
	}
}

type updateDocumentArgs struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

func (t *UpdateDocumentTool) Invoke(ctx context.Context, inv Invocation) (*Result, error) {
	var args updateDocumentArgs
	if err := json.Unmarshal(inv.Arguments, &args); err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("invalid arguments: %v", err)}, nil
	}

	doc, err := t.documents.Update(ctx, args.ID, args.Description, inv.UserID)
	if err != nil {
		return &Result{IsError: true, Error: fmt.Sprintf("update document failed: %v", err)}, nil
	}

	emitDocumentEvent(inv.Output, "document.updated", doc)

	return marshalResult(map[string]string{
		"id":    doc.ID,
		"title": doc.Title,
		"kind":  string(doc.Kind),
	})
}

var _ Handler = (*UpdateDocumentTool)(nil)

func emitDocumentEvent(w stream.Writer, kind string, doc *document.Document) {
	if w == nil {
		return
	}
	w.Send(stream.NewEvent(stream.EventData, map[string]interface{}{
		"kind":    kind,
		"id":      doc.ID,
		"title":   doc.Title,
		"docKind": string(doc.Kind),
		"content": doc.Content,
	}))
}

func marshalResult(payload interface{}) (*Result, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return &Result{Content: raw}, nil
}

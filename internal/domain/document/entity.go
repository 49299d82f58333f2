// Package document defines the documents produced by the createDocument and
// updateDocument tools, plus the suggestions attached to them.
package document

import "time"

// Kind identifies what a document contains.
type Kind string

const (
	KindText  Kind = "text"
	KindCode  Kind = "code"
	KindImage Kind = "image"
	KindSheet Kind = "sheet"
)

// Valid reports whether k is a known document kind.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindCode, KindImage, KindSheet:
		return true
	}
	return false
}

// Document is one version of a document. Versions share an ID and are
// distinguished by creation time; the newest row is the current version.
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Kind      Kind      `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Suggestion is a proposed edit to a document version.
type Suggestion struct {
	ID                string    `json:"id"`
	DocumentID        string    `json:"documentId"`
	DocumentCreatedAt time.Time `json:"documentCreatedAt"`
	UserID            string    `json:"userId"`
	OriginalText      string    `json:"originalText"`
	SuggestedText     string    `json:"suggestedText"`
	Description       string    `json:"description"`
	IsResolved        bool      `json:"isResolved"`
	CreatedAt         time.Time `json:"createdAt"`
}

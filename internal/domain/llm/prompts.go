package llm

import (
	"fmt"
	"strings"
)

// RequestHints carries best-effort, request-derived context for the system
// prompt. Any field may be empty.
type RequestHints struct {
	City      string
	Country   string
	Latitude  string
	Longitude string
}

const regularPrompt = "You are a friendly assistant! Keep your responses concise and helpful."

const artifactsPrompt = `When asked to write substantial content such as code, essays or documents, use the createDocument tool so the result is saved as a document the user can keep editing. Use updateDocument to revise an existing document instead of rewriting it inline. For short conversational answers, just reply directly.`

// SystemPrompt builds the system message for a turn. The reasoning model gets
// no tool instructions since tools are disabled for it.
func SystemPrompt(selectedModel string, hints RequestHints, projectContext string) string {
	var sections []string

	sections = append(sections, regularPrompt)

	if prompt := hintsPrompt(hints); prompt != "" {
		sections = append(sections, prompt)
	}

	if selectedModel != ModelChatReasoning {
		sections = append(sections, artifactsPrompt)
	}

	if projectContext != "" {
		sections = append(sections, projectContext)
	}

	return strings.Join(sections, "\n\n")
}

func hintsPrompt(hints RequestHints) string {
	if hints.City == "" && hints.Country == "" && hints.Latitude == "" && hints.Longitude == "" {
		return ""
	}

	var lines []string
	lines = append(lines, "About the origin of the user's request:")
	if hints.Latitude != "" {
		lines = append(lines, fmt.Sprintf("- lat: %s", hints.Latitude))
	}
	if hints.Longitude != "" {
		lines = append(lines, fmt.Sprintf("- lon: %s", hints.Longitude))
	}
	if hints.City != "" {
		lines = append(lines, fmt.Sprintf("- city: %s", hints.City))
	}
	if hints.Country != "" {
		lines = append(lines, fmt.Sprintf("- country: %s", hints.Country))
	}
	return strings.Join(lines, "\n")
}

// TitleSystemPrompt instructs the title model to summarize the first user
// message of a chat.
const TitleSystemPrompt = `Generate a short title based on the first message a user begins a conversation with. Ensure it is not more than 80 characters long. The title should be a summary of the user's message. Do not use quotes or colons.`

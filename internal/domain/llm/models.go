package llm

// Chat model identifiers. The first two are user-selectable; title-model and
// artifact-model are only used internally.
const (
	ModelChat          = "chat-model"
	ModelChatReasoning = "chat-model-reasoning"
	ModelTitle         = "title-model"
	ModelArtifact      = "artifact-model"
)

// ChatModel describes a selectable model.
type ChatModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Entitlements bounds what an authenticated user may do per day.
type Entitlements struct {
	MaxMessagesPerDay     int
	AvailableChatModelIDs []string
}

// DefaultEntitlements applies to every authenticated user. The per-day ceiling
// is intentionally huge; it exists as a guard, not a product limit.
var DefaultEntitlements = Entitlements{
	MaxMessagesPerDay:     100_000,
	AvailableChatModelIDs: []string{ModelChat, ModelChatReasoning},
}

// ChatModels is the user-facing model catalog.
var ChatModels = []ChatModel{
	{
		ID:          ModelChat,
		Name:        "Chat model",
		Description: "Primary model for all-purpose chat",
	},
	{
		ID:          ModelChatReasoning,
		Name:        "Reasoning model",
		Description: "Uses advanced reasoning before answering",
	},
}

// IsSelectableModel reports whether users may submit turns against id.
func (e Entitlements) IsSelectableModel(id string) bool {
	for _, allowed := range e.AvailableChatModelIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

package domain

// Role identifies who produced a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// ConversationTurn is one message of chat history.
// History is owned and appended to by the caller; the core never stores it.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ContextFragment is a fragment as presented to the generation step.
type ContextFragment struct {
	// Source is the citation label (filename).
	Source string `json:"source"`

	// SourceID is the originating document identifier.
	SourceID string `json:"source_id"`

	// Index is the fragment's position within its document.
	Index int `json:"chunk_index"`

	// Text is the fragment content.
	Text string `json:"text"`
}

// ContextPayload is the bounded unit handed to the generation boundary.
// It is built fresh per question and has no persistent identity.
type ContextPayload struct {
	Question  string             `json:"question"`
	Fragments []ContextFragment  `json:"fragments"`
	History   []ConversationTurn `json:"history"`
}

// Sources returns the unique source labels in fragment order.
func (p ContextPayload) Sources() []string {
	seen := make(map[string]struct{}, len(p.Fragments))
	sources := make([]string, 0, len(p.Fragments))
	for _, f := range p.Fragments {
		if _, ok := seen[f.Source]; ok {
			continue
		}
		seen[f.Source] = struct{}{}
		sources = append(sources, f.Source)
	}
	return sources
}

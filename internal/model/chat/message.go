package chat

// Roles stored in a session transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of the counseling dialogue.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

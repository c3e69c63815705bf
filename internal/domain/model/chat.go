package model

// Chat message types. A file message carries CV text, usually the text
// returned by the upload endpoint; a job message carries a job description.
const (
	ChatText   = "text"
	ChatFile   = "file"
	ChatJob    = "job"
	ChatSystem = "system"
)

// Chat roles kept in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one message sent to the screening assistant.
type ChatMessage struct {
	Content  string `json:"content"`
	Type     string `json:"message_type"`
	FileName string `json:"file_name,omitempty"`
}

// ChatTurn is a message kept in a conversation history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply is the assistant's answer. Candidate is set once a CV was read
// in this message; Analysis once a CV and a job description were matched.
type ChatReply struct {
	SessionID string          `json:"session_id"`
	Content   string          `json:"content"`
	Type      string          `json:"message_type"`
	Candidate *Candidate      `json:"candidate,omitempty"`
	Analysis  *AnalysisResult `json:"analysis,omitempty"`
}

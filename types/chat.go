package types

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	SessionId string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionId string `json:"session_id"`
	Reply     string `json:"reply"`
}

type HistoryResponse struct {
	SessionId string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

type ClearHistoryRequest struct {
	SessionId string `json:"session_id"`
}

type TranscriptResponse struct {
	SessionId string    `json:"session_id"`
	Logs      []ChatLog `json:"logs"`
}

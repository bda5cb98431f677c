package service

import (
	"fmt"
	"strings"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// Number of recent history entries rendered into the responder prompt
// (three exchanges).
const historyWindow = 6

const noHistoryPlaceholder = "No previous conversation."

// conversationHistory is a bounded, insertion-ordered message log owned by
// one chat session. Not safe for concurrent use; the owning chatbot
// serialises turns.
type conversationHistory struct {
	entries []types.Message
	max     int
}

func newConversationHistory(max int) *conversationHistory {
	if max <= 0 {
		max = 20
	}
	return &conversationHistory{max: max}
}

// push appends an entry, evicting the oldest entries past the cap.
func (h *conversationHistory) push(role, content string) {
	h.entries = append(h.entries, types.Message{Role: role, Content: content})
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// format renders the most recent window as plain text for the responder.
// An empty history yields an explicit placeholder so the prompt can never
// confuse "no history" with "empty input".
func (h *conversationHistory) format() string {
	if len(h.entries) == 0 {
		return noHistoryPlaceholder
	}
	start := len(h.entries) - historyWindow
	if start < 0 {
		start = 0
	}
	var lines []string
	for _, msg := range h.entries[start:] {
		label := "User"
		if msg.Role == types.RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", label, msg.Content))
	}
	return strings.Join(lines, "\n")
}

func (h *conversationHistory) clear() {
	h.entries = nil
}

// snapshot returns a copy so callers cannot mutate session state.
func (h *conversationHistory) snapshot() []types.Message {
	out := make([]types.Message, len(h.entries))
	copy(out, h.entries)
	return out
}

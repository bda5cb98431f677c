package service

import (
	"context"

	"github.com/vivekcarvalho/profile-chatbot-be/types"
)

// ChatModel is the opaque text-generation capability every pipeline stage
// depends on. Provider-specific request/response shapes stay behind it.
type ChatModel interface {
	Generate(ctx context.Context, system string, messages []types.Message) (string, error)
}

package chat

import (
	"context"

	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	"github.com/kailas-cloud/docdex/internal/usecase/retrieval"
)

// Retriever builds the retrieval context for a chat turn.
type Retriever interface {
	ChatContext(ctx context.Context, query string) (retrieval.ChatContext, error)
}

// Completer generates an assistant reply from a system prompt and a user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// History stores session turns. Recent returns at most limit turns, oldest first.
type History interface {
	Append(ctx context.Context, turns ...domchat.Turn) error
	Recent(ctx context.Context, sessionID string, limit int) ([]domchat.Turn, error)
}

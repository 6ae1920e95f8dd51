package docdex

import "context"

// Completer produces a chat answer from a system prompt and one user message.
// If it also implements HealthCheck(ctx) error, Health reports on it as "llm".
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

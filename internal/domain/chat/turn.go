// Package chat models the stored turns of a chat session.
package chat

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Role says who spoke a turn.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxSessionIDLength bounds client-supplied session identifiers.
const MaxSessionIDLength = 256

var sessionIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Turn is one message of a session.
type Turn struct {
	sessionID string
	role      Role
	content   string
	createdAt time.Time
}

// NewTurn validates and creates a turn.
func NewTurn(sessionID string, role Role, content string, createdAt time.Time) (Turn, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return Turn{}, err
	}
	if role != RoleUser && role != RoleAssistant {
		return Turn{}, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidQuery)
	}
	return Reconstruct(sessionID, role, content, createdAt), nil
}

// Reconstruct creates a Turn without validation (storage hydration).
func Reconstruct(sessionID string, role Role, content string, createdAt time.Time) Turn {
	return Turn{sessionID: sessionID, role: role, content: content, createdAt: createdAt.UTC()}
}

// ValidateSessionID checks that id is usable as a storage key.
func ValidateSessionID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("session ID is required: %w", domain.ErrInvalidQuery)
	case len(id) > MaxSessionIDLength:
		return fmt.Errorf("session ID too long (max %d): %w", MaxSessionIDLength, domain.ErrInvalidQuery)
	case !sessionIDRegex.MatchString(id):
		return fmt.Errorf("session ID must be alphanumeric with underscores and hyphens: %w", domain.ErrInvalidQuery)
	}
	return nil
}

// SessionID returns the owning session.
func (t *Turn) SessionID() string { return t.sessionID }

// Role returns the speaker.
func (t *Turn) Role() Role { return t.role }

// Content returns the message text.
func (t *Turn) Content() string { return t.content }

// CreatedAt returns when the turn was recorded.
func (t *Turn) CreatedAt() time.Time { return t.createdAt }

// Transcript renders earlier turns followed by the new user message as one prompt:
//
//	User: ...
//	Assistant: ...
//	User: <message>
//
// With no history the message is returned unchanged.
func Transcript(history []Turn, message string) string {
	if len(history) == 0 {
		return message
	}
	var b strings.Builder
	for i := range history {
		if history[i].role == RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(history[i].content)
		b.WriteByte('\n')
	}
	b.WriteString("User: ")
	b.WriteString(message)
	return b.String()
}

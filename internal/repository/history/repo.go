// Package history stores chat sessions as Redis lists of JSON-encoded turns.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	"github.com/kailas-cloud/docdex/internal/repository/document"
)

type store interface {
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo appends turns to one list per session.
type Repo struct {
	store  store
	prefix string
}

// New creates a history repository. An empty prefix selects document.DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = document.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Key returns the list key of a session.
func Key(prefix, sessionID string) string {
	return prefix + "chat:" + sessionID
}

type turnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Append pushes turns in order. Turns of different sessions go to their own lists.
func (r *Repo) Append(ctx context.Context, turns ...domchat.Turn) error {
	bySession := make(map[string][]string)
	var order []string
	for i := range turns {
		t := &turns[i]
		raw, err := json.Marshal(turnDTO{Role: string(t.Role()), Content: t.Content(), CreatedAt: t.CreatedAt()})
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}
		if _, ok := bySession[t.SessionID()]; !ok {
			order = append(order, t.SessionID())
		}
		bySession[t.SessionID()] = append(bySession[t.SessionID()], string(raw))
	}
	for _, id := range order {
		key := Key(r.prefix, id)
		if err := r.store.RPush(ctx, key, bySession[id]...); err != nil {
			return fmt.Errorf("rpush %s: %w", key, err)
		}
	}
	return nil
}

// Recent returns up to limit of the latest turns of a session, oldest first.
func (r *Repo) Recent(ctx context.Context, sessionID string, limit int) ([]domchat.Turn, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	key := Key(r.prefix, sessionID)
	vals, err := r.store.LRange(ctx, key, start, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	turns := make([]domchat.Turn, 0, len(vals))
	for _, v := range vals {
		var dto turnDTO
		if err := json.Unmarshal([]byte(v), &dto); err != nil {
			return nil, fmt.Errorf("decode turn of %s: %w", key, err)
		}
		turns = append(turns, domchat.Reconstruct(sessionID, domchat.Role(dto.Role), dto.Content, dto.CreatedAt))
	}
	return turns, nil
}

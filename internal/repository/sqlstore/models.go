package sqlstore

import (
	"strings"
	"time"

	"github.com/uptrace/bun"

	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/keyword"
)

type documentModel struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID          string    `bun:"id,pk"`
	Filename    string    `bun:"filename,notnull"`
	ContentType string    `bun:"content_type,notnull"`
	SizeBytes   int64     `bun:"size_bytes,notnull"`
	Status      string    `bun:"status,notnull"`
	Owner       string    `bun:"owner,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	ChunkCount  int       `bun:"chunk_count,notnull"`
}

func newDocumentModel(doc *domdoc.Document) *documentModel {
	return &documentModel{
		ID:          doc.ID(),
		Filename:    doc.Filename(),
		ContentType: doc.ContentType(),
		SizeBytes:   doc.Size(),
		Status:      string(doc.Status()),
		Owner:       doc.Owner(),
		CreatedAt:   doc.CreatedAt(),
		ChunkCount:  doc.ChunkCount(),
	}
}

func (m *documentModel) toDomain() domdoc.Document {
	return domdoc.Reconstruct(m.ID, m.Filename, m.ContentType, m.Owner, m.SizeBytes,
		domdoc.Status(m.Status), m.CreatedAt, m.ChunkCount)
}

type chunkModel struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`

	ID         string    `bun:"id,pk"`
	DocumentID string    `bun:"document_id,notnull"`
	ChunkIndex int       `bun:"chunk_index,notnull"`
	Content    string    `bun:"content,notnull"`
	Keywords   string    `bun:"keywords,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func newChunkModel(c *domchunk.Chunk) *chunkModel {
	return &chunkModel{
		ID:         c.ID(),
		DocumentID: c.DocumentID(),
		ChunkIndex: c.Index(),
		Content:    c.Text(),
		Keywords:   c.Keywords().String(),
		CreatedAt:  c.CreatedAt(),
	}
}

func (m *chunkModel) toDomain() domchunk.Chunk {
	return domchunk.Reconstruct(m.ID, m.DocumentID, m.ChunkIndex, m.Content,
		keyword.FromTokens(strings.Fields(m.Keywords)), m.CreatedAt)
}

type chatTurnModel struct {
	bun.BaseModel `bun:"table:chat_turns,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SessionID string    `bun:"session_id,notnull"`
	Role      string    `bun:"role,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func newChatTurnModel(t *domchat.Turn) chatTurnModel {
	return chatTurnModel{
		SessionID: t.SessionID(),
		Role:      string(t.Role()),
		Content:   t.Content(),
		CreatedAt: t.CreatedAt(),
	}
}

func (m *chatTurnModel) toDomain() domchat.Turn {
	return domchat.Reconstruct(m.SessionID, domchat.Role(m.Role), m.Content, m.CreatedAt)
}

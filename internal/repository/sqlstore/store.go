// Package sqlstore persists documents, chunks and chat history in Postgres or SQLite through bun.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/docdex/internal/domain"
	domchat "github.com/kailas-cloud/docdex/internal/domain/chat"
	domchunk "github.com/kailas-cloud/docdex/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and configures the SQL backend.
type Config struct {
	Driver string
	// DSN is the Postgres connection string.
	DSN string
	// Path is the SQLite database file.
	Path string
	// Debug logs every query.
	Debug bool
}

// Store implements the document and chunk persistence contracts on a bun.DB.
type Store struct {
	db *bun.DB
}

// Open connects to the configured database and creates the schema if missing.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var db *bun.DB
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		// WAL mode for concurrent readers during ingestion
		sqldb, err := sql.Open("sqlite",
			cfg.Path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unknown sql driver %q", cfg.Driver)
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*documentModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}
	_, err := s.db.NewCreateTable().
		Model((*chunkModel)(nil)).
		ForeignKey(`("document_id") REFERENCES "documents" ("id") ON DELETE CASCADE`).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	_, err = s.db.NewCreateIndex().
		Model((*chunkModel)(nil)).
		Index("chunks_document_id_idx").
		Column("document_id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create chunks index: %w", err)
	}
	if _, err := s.db.NewCreateTable().Model((*chatTurnModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create chat_turns table: %w", err)
	}
	_, err = s.db.NewCreateIndex().
		Model((*chatTurnModel)(nil)).
		Index("chat_turns_session_id_idx").
		Column("session_id", "id").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create chat_turns index: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	_ = s.db.Close()
}

// Create stores a new document.
func (s *Store) Create(ctx context.Context, doc domdoc.Document) error {
	exists, err := s.db.NewSelect().Model((*documentModel)(nil)).Where("id = ?", doc.ID()).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check document %s: %w", doc.ID(), err)
	}
	if exists {
		return fmt.Errorf("document %s: %w", doc.ID(), domain.ErrDocumentExists)
	}
	if _, err := s.db.NewInsert().Model(newDocumentModel(&doc)).Exec(ctx); err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID(), err)
	}
	return nil
}

// Update writes a document's status and chunk count.
func (s *Store) Update(ctx context.Context, doc domdoc.Document) error {
	res, err := s.db.NewUpdate().
		Model(newDocumentModel(&doc)).
		Column("status", "chunk_count").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID(), err)
	}
	return requireAffected(res, doc.ID())
}

// Get returns a document by ID.
func (s *Store) Get(ctx context.Context, id string) (domdoc.Document, error) {
	var m documentModel
	if err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("select document %s: %w", id, err)
	}
	return m.toDomain(), nil
}

// List returns every document, newest first.
func (s *Store) List(ctx context.Context) ([]domdoc.Document, error) {
	var rows []documentModel
	if err := s.db.NewSelect().Model(&rows).OrderExpr("d.created_at DESC, d.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	docs := make([]domdoc.Document, len(rows))
	for i := range rows {
		docs[i] = rows[i].toDomain()
	}
	return docs, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*documentModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return requireAffected(res, id)
}

const insertChunkSQL = `INSERT INTO chunks (id, document_id, chunk_index, content, keywords, created_at)
SELECT ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM documents WHERE id = ?)`

// Insert stores one chunk of an existing document; ErrDocumentNotFound when the document is gone.
func (s *Store) Insert(ctx context.Context, c domchunk.Chunk) error {
	m := newChunkModel(&c)
	res, err := s.db.ExecContext(ctx, insertChunkSQL,
		m.ID, m.DocumentID, m.ChunkIndex, m.Content, m.Keywords, m.CreatedAt, m.DocumentID)
	if err != nil {
		return fmt.Errorf("insert chunk %s: %w", c.ID(), err)
	}
	if err := requireAffected(res, c.DocumentID()); err != nil {
		return fmt.Errorf("insert chunk %s: %w", c.ID(), err)
	}
	return nil
}

// ListChunks returns the corpus in document creation order, then document ID, then chunk index.
func (s *Store) ListChunks(ctx context.Context) ([]domchunk.Chunk, error) {
	var rows []chunkModel
	err := s.db.NewSelect().
		Model(&rows).
		Join("JOIN documents AS d ON d.id = c.document_id").
		OrderExpr("d.created_at ASC, c.document_id ASC, c.chunk_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}
	chunks := make([]domchunk.Chunk, len(rows))
	for i := range rows {
		chunks[i] = rows[i].toDomain()
	}
	return chunks, nil
}

// DeleteByDocument removes every chunk of a document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	res, err := s.db.NewDelete().Model((*chunkModel)(nil)).Where("document_id = ?", documentID).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// Append stores turns in one statement; ids keep their order.
func (s *Store) Append(ctx context.Context, turns ...domchat.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	rows := make([]chatTurnModel, len(turns))
	for i := range turns {
		rows[i] = newChatTurnModel(&turns[i])
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert chat turns: %w", err)
	}
	return nil
}

// Recent returns up to limit of the latest turns of a session, oldest first.
func (s *Store) Recent(ctx context.Context, sessionID string, limit int) ([]domchat.Turn, error) {
	var rows []chatTurnModel
	q := s.db.NewSelect().Model(&rows).Where("session_id = ?", sessionID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select chat turns of %s: %w", sessionID, err)
	}
	turns := make([]domchat.Turn, len(rows))
	for i := range rows {
		turns[len(rows)-1-i] = rows[i].toDomain()
	}
	return turns, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

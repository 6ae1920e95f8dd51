package health

import "context"

// DBPinger is the document store: Redis, Valkey, Postgres, SQLite or memory.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker is the chat completion provider.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

package domain

import "context"

// Database defines lifecycle operations for a Record Store backend.
// Each implementation (SQLite, Redis, Postgres) owns its own schema
// setup, so the persistence layer is swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Records() RecordStore
	Close() error
}

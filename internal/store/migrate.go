package store

import (
	"context"
	"fmt"
)

// migrations are applied in order. The schema version stored in
// PRAGMA user_version is the number of applied migrations.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL UNIQUE,
		shorthand TEXT,
		colour INTEGER,
		hidden INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tag_aliases (
		canonical_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		alias_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (canonical_id, alias_id)
	);

	CREATE TABLE IF NOT EXISTS tag_graph_links (
		parent_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		child_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (parent_id, child_id)
	);

	CREATE INDEX IF NOT EXISTS idx_tag_aliases_alias ON tag_aliases(alias_id);
	CREATE INDEX IF NOT EXISTS idx_tag_graph_links_child ON tag_graph_links(child_id);
	`,
	`
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		tag_count INTEGER NOT NULL,
		link_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawl_runs_saved_at ON crawl_runs(saved_at);
	`,
}

// SchemaVersion returns the number of applied migrations.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// migrate applies every migration newer than the stored schema version.
func (s *Store) migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}
	return nil
}

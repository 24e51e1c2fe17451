package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/tagtree/internal/model"
)

// CrawlRun summarizes one saved crawl.
type CrawlRun struct {
	ID       string    `json:"id"`
	StartURL string    `json:"start_url"`
	SavedAt  time.Time `json:"saved_at"`
	Tags     int       `json:"tags"`
	Links    int       `json:"links"`
}

// SaveTree stores every node of tree and the relations between them in a
// single transaction.
//
// Relations map onto links as follows, where N is a node and S the root of
// one of its subtrees:
//   - alias: S is an alias of N
//   - parent: S is a parent of N
//   - child: S is a child of N
//
// Links between two nodes folded into the same row are skipped. The returned
// run counts distinct tags and newly added links.
func (s *Store) SaveTree(ctx context.Context, startURL string, tree *model.CrawlResult) (*CrawlRun, error) {
	if tree == nil {
		return nil, errors.New("cannot save an empty tree")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	ids := make(map[*model.CrawlResult]int64)
	distinct := make(map[int64]struct{})
	links := 0

	err = tree.Walk(func(parent *model.CrawlResult, rel model.Relation, node *model.CrawlResult) error {
		id, err := upsertTag(ctx, tx, node.Tag)
		if err != nil {
			return err
		}
		ids[node] = id
		distinct[id] = struct{}{}

		if parent == nil {
			return nil
		}
		parentID := ids[parent]

		var added bool
		switch rel {
		case model.RelationAlias:
			added, err = addLink(ctx, tx, "tag_aliases", "canonical_id", "alias_id", parentID, id)
		case model.RelationParent:
			added, err = addLink(ctx, tx, "tag_graph_links", "parent_id", "child_id", id, parentID)
		case model.RelationChild:
			added, err = addLink(ctx, tx, "tag_graph_links", "parent_id", "child_id", parentID, id)
		}
		if errors.Is(err, ErrSelfLink) {
			return nil
		}
		if err != nil {
			return err
		}
		if added {
			links++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save tree: %w", err)
	}

	run := &CrawlRun{
		ID:       uuid.NewString(),
		StartURL: startURL,
		SavedAt:  time.Now().UTC(),
		Tags:     len(distinct),
		Links:    links,
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO crawl_runs (id, start_url, saved_at, tag_count, link_count) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.StartURL, run.SavedAt.Format(time.RFC3339), run.Tags, run.Links,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record crawl run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tree: %w", err)
	}
	return run, nil
}

// Runs returns the most recent crawl runs, newest first. A non-positive
// limit returns every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]CrawlRun, error) {
	query := "SELECT id, start_url, saved_at, tag_count, link_count FROM crawl_runs ORDER BY saved_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl runs: %w", err)
	}
	defer rows.Close()

	runs := make([]CrawlRun, 0)
	for rows.Next() {
		var (
			run     CrawlRun
			savedAt string
		)
		if err := rows.Scan(&run.ID, &run.StartURL, &savedAt, &run.Tags, &run.Links); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.SavedAt = parseTimestamp(savedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// parseTimestamp parses a timestamp string from SQLite, which may come back
// in several formats depending on how it was written.
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

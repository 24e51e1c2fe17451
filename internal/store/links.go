package store

import (
	"context"
	"fmt"
)

// AddAliasLink marks aliasID as an alias of canonicalID. It reports false
// when the link already existed.
func (s *Store) AddAliasLink(ctx context.Context, canonicalID, aliasID int64) (bool, error) {
	return addLink(ctx, s.db, "tag_aliases", "canonical_id", "alias_id", canonicalID, aliasID)
}

// RemoveAliasLink removes an alias link. It reports false when no such link
// existed.
func (s *Store) RemoveAliasLink(ctx context.Context, canonicalID, aliasID int64) (bool, error) {
	return removeLink(ctx, s.db, "tag_aliases", "canonical_id", "alias_id", canonicalID, aliasID)
}

// Aliases returns every tag reachable from canonicalID through alias links,
// excluding canonicalID itself.
func (s *Store) Aliases(ctx context.Context, canonicalID int64) ([]StoredTag, error) {
	query := `
	WITH RECURSIVE aliases_of(id) AS (
		SELECT alias_id FROM tag_aliases WHERE canonical_id = ?
		UNION
		SELECT a.alias_id FROM tag_aliases a JOIN aliases_of o ON a.canonical_id = o.id
	)
	SELECT ` + tagColumns + ` FROM tags WHERE id IN (SELECT id FROM aliases_of) AND id != ?
	ORDER BY name_key
	`
	rows, err := s.db.QueryContext(ctx, query, canonicalID, canonicalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query aliases: %w", err)
	}
	return scanTags(rows)
}

// AddGraphLink makes childID a child of parentID. It reports false when the
// link already existed.
func (s *Store) AddGraphLink(ctx context.Context, parentID, childID int64) (bool, error) {
	return addLink(ctx, s.db, "tag_graph_links", "parent_id", "child_id", parentID, childID)
}

// RemoveGraphLink removes a parent-child link. It reports false when no such
// link existed.
func (s *Store) RemoveGraphLink(ctx context.Context, parentID, childID int64) (bool, error) {
	return removeLink(ctx, s.db, "tag_graph_links", "parent_id", "child_id", parentID, childID)
}

// Parents returns the direct parents of childID.
func (s *Store) Parents(ctx context.Context, childID int64) ([]StoredTag, error) {
	query := `
	SELECT ` + tagColumns + ` FROM tags
	WHERE id IN (SELECT parent_id FROM tag_graph_links WHERE child_id = ?)
	ORDER BY name_key
	`
	rows, err := s.db.QueryContext(ctx, query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	return scanTags(rows)
}

// Children returns every descendant of parentID, excluding parentID itself.
// Cycles in the stored graph are tolerated.
func (s *Store) Children(ctx context.Context, parentID int64) ([]StoredTag, error) {
	query := `
	WITH RECURSIVE descendants(id) AS (
		SELECT child_id FROM tag_graph_links WHERE parent_id = ?
		UNION
		SELECT l.child_id FROM tag_graph_links l JOIN descendants d ON l.parent_id = d.id
	)
	SELECT ` + tagColumns + ` FROM tags WHERE id IN (SELECT id FROM descendants) AND id != ?
	ORDER BY name_key
	`
	rows, err := s.db.QueryContext(ctx, query, parentID, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	return scanTags(rows)
}

// addLink inserts a row into a two-column link table. Table and column names
// are package constants, never user input.
func addLink(ctx context.Context, q queryer, table, fromCol, toCol string, from, to int64) (bool, error) {
	if from == to {
		return false, ErrSelfLink
	}
	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?) ON CONFLICT DO NOTHING", table, fromCol, toCol)
	res, err := q.ExecContext(ctx, query, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to add link to %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add link to %s: %w", table, err)
	}
	return n == 1, nil
}

func removeLink(ctx context.Context, q queryer, table, fromCol, toCol string, from, to int64) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?", table, fromCol, toCol)
	res, err := q.ExecContext(ctx, query, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to remove link from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove link from %s: %w", table, err)
	}
	return n == 1, nil
}

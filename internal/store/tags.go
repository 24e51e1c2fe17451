package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/tagtree/internal/model"
)

// StoredTag is a tag together with its row identifier.
type StoredTag struct {
	ID int64 `json:"id"`
	model.Tag
}

// tagColumns is the column list scanned by scanTag.
const tagColumns = "id, name, shorthand, colour, hidden"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTag(row scanner) (StoredTag, error) {
	var (
		t         StoredTag
		shorthand sql.NullString
		colour    sql.NullInt64
		hidden    int
	)
	if err := row.Scan(&t.ID, &t.Name, &shorthand, &colour, &hidden); err != nil {
		return StoredTag{}, err
	}
	t.Shorthand = shorthand.String
	if colour.Valid {
		c := model.ColourFromInt32(int32(colour.Int64)) //nolint:gosec // stored from an int32
		t.Colour = &c
	}
	t.Hidden = hidden != 0
	return t, nil
}

func scanTags(rows *sql.Rows) ([]StoredTag, error) {
	defer rows.Close()

	tags := make([]StoredTag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// UpsertTag inserts tag or merges it into the existing row with the same
// case-folded name. Known display attributes are never cleared by a tag that
// lacks them, and a hidden tag stays hidden.
func (s *Store) UpsertTag(ctx context.Context, tag model.Tag) (int64, error) {
	return upsertTag(ctx, s.db, tag)
}

func upsertTag(ctx context.Context, q queryer, tag model.Tag) (int64, error) {
	name := strings.TrimSpace(tag.Name)
	if name == "" {
		return 0, ErrEmptyName
	}

	var shorthand sql.NullString
	if tag.Shorthand != "" {
		shorthand = sql.NullString{String: tag.Shorthand, Valid: true}
	}
	var colour sql.NullInt64
	if tag.Colour != nil {
		colour = sql.NullInt64{Int64: int64(tag.Colour.Int32()), Valid: true}
	}
	hidden := 0
	if tag.Hidden {
		hidden = 1
	}

	query := `
	INSERT INTO tags (name, name_key, shorthand, colour, hidden)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(name_key) DO UPDATE SET
		shorthand = COALESCE(excluded.shorthand, tags.shorthand),
		colour = COALESCE(excluded.colour, tags.colour),
		hidden = MAX(tags.hidden, excluded.hidden)
	RETURNING id
	`

	var id int64
	if err := q.QueryRowContext(ctx, query, name, tag.Key(), shorthand, colour, hidden).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert tag %q: %w", name, err)
	}
	return id, nil
}

// GetTag retrieves a tag by identifier.
func (s *Store) GetTag(ctx context.Context, id int64) (*StoredTag, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE id = ?", id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrTagNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &t, nil
}

// GetTagByName retrieves a tag by name. The lookup ignores case.
func (s *Store) GetTagByName(ctx context.Context, name string) (*StoredTag, error) {
	key := model.Tag{Name: name}.Key()
	row := s.db.QueryRowContext(ctx, "SELECT "+tagColumns+" FROM tags WHERE name_key = ?", key)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrTagNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &t, nil
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]StoredTag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+tagColumns+" FROM tags ORDER BY name_key")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return scanTags(rows)
}

// UpdateTag overwrites the display attributes of an existing tag.
func (s *Store) UpdateTag(ctx context.Context, id int64, tag model.Tag) error {
	var colour sql.NullInt64
	if tag.Colour != nil {
		colour = sql.NullInt64{Int64: int64(tag.Colour.Int32()), Valid: true}
	}
	var shorthand sql.NullString
	if tag.Shorthand != "" {
		shorthand = sql.NullString{String: tag.Shorthand, Valid: true}
	}
	hidden := 0
	if tag.Hidden {
		hidden = 1
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE tags SET shorthand = ?, colour = ?, hidden = ? WHERE id = ?",
		shorthand, colour, hidden, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update tag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrTagNotFound, id)
	}
	return nil
}

// DeleteTag removes a tag and every link that references it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrTagNotFound, id)
	}
	return nil
}

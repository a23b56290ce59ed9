package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// QueryGroups returns groups matching the criteria, ordered by title.
func (db *DB) QueryGroups(ctx context.Context, c model.GroupCriteria) ([]model.Group, error) {
	clauses := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if c.ID != "" {
		clauses = append(clauses, "id = "+arg(c.ID))
	}
	if len(c.IDs) > 0 {
		clauses = append(clauses, "id = ANY("+arg(c.IDs)+")")
	}
	if c.Slug != "" {
		clauses = append(clauses, "slug = "+arg(c.Slug))
	}

	rows, err := db.pool.Query(ctx, `SELECT id, type, title, slug, created_at, updated_at
		FROM groups WHERE `+strings.Join(clauses, " AND ")+` ORDER BY title`, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Type, &g.Title, &g.Slug, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: query groups: %w", err)
	}
	return groups, nil
}

// SaveGroup upserts a group record.
func (db *DB) SaveGroup(ctx context.Context, g model.Group) (model.Group, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Type == "" {
		g.Type = "group"
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now

	_, err := db.pool.Exec(ctx,
		`INSERT INTO groups (id, type, title, slug, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			slug = EXCLUDED.slug,
			updated_at = EXCLUDED.updated_at`,
		g.ID, g.Type, g.Title, g.Slug, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Group{}, fmt.Errorf("storage: save group %q: %w", g.ID, ErrConflict)
		}
		return model.Group{}, fmt.Errorf("storage: save group %q: %w", g.ID, err)
	}
	return g, nil
}

// PageForGroup returns the directory page locked to the given group, or
// ErrNotFound when no page claims it.
func (db *DB) PageForGroup(ctx context.Context, groupID string) (model.Page, error) {
	var p model.Page
	var lockedGroupID *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, slug, title, type, group_id, created_at FROM pages
		 WHERE group_id = $1 ORDER BY created_at LIMIT 1`, groupID,
	).Scan(&p.ID, &p.Slug, &p.Title, &p.Type, &lockedGroupID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Page{}, fmt.Errorf("storage: page for group %q: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("storage: page for group %q: %w", groupID, err)
	}
	if lockedGroupID != nil {
		p.GroupID = *lockedGroupID
	}
	return p, nil
}

// FallbackPage returns the oldest directory page not locked to any group,
// or ErrNotFound when none exists.
func (db *DB) FallbackPage(ctx context.Context) (model.Page, error) {
	var p model.Page
	err := db.pool.QueryRow(ctx,
		`SELECT id, slug, title, type, created_at FROM pages
		 WHERE group_id IS NULL AND type = 'directory'
		 ORDER BY created_at LIMIT 1`,
	).Scan(&p.ID, &p.Slug, &p.Title, &p.Type, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Page{}, fmt.Errorf("storage: fallback page: %w", ErrNotFound)
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("storage: fallback page: %w", err)
	}
	return p, nil
}

// SavePage upserts a directory page. An empty GroupID stores NULL so the
// page is eligible as the fallback.
func (db *DB) SavePage(ctx context.Context, p model.Page) (model.Page, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Type == "" {
		p.Type = "directory"
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	var groupID *string
	if p.GroupID != "" {
		groupID = &p.GroupID
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO pages (id, slug, title, type, group_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			slug = EXCLUDED.slug,
			title = EXCLUDED.title,
			type = EXCLUDED.type,
			group_id = EXCLUDED.group_id`,
		p.ID, p.Slug, p.Title, p.Type, groupID, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Page{}, fmt.Errorf("storage: save page %q: %w", p.ID, ErrConflict)
		}
		return model.Page{}, fmt.Errorf("storage: save page %q: %w", p.ID, err)
	}
	return p, nil
}

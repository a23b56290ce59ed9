package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// personSortColumns whitelists sortable person fields.
var personSortColumns = map[string]string{
	"lastName":  "last_name",
	"firstName": "first_name",
	"title":     "title",
	"username":  "username",
	"createdAt": "created_at",
}

// QueryPeople returns person records matching the criteria, plus the total
// match count independent of pagination. Rows and count run concurrently on
// the pool.
func (db *DB) QueryPeople(ctx context.Context, c model.Criteria, opts model.QueryOptions) (model.ResultSet, error) {
	where, args := buildPersonWhere(c)

	orderBy, err := personOrderBy(opts.Sort)
	if err != nil {
		return model.ResultSet{}, err
	}

	listSQL := `SELECT id, title, first_name, last_name, slug, login, username,
		password_hash, email, phone, group_ids, created_at, updated_at
		FROM people WHERE ` + where + orderBy
	if opts.Limit > 0 {
		listSQL += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		listSQL += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}
	countSQL := `SELECT count(*) FROM people WHERE ` + where

	var (
		people []model.Person
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.pool.QueryRow(gctx, countSQL, args...).Scan(&total)
	})
	g.Go(func() error {
		rows, err := db.pool.Query(gctx, listSQL, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p model.Person
			if err := rows.Scan(&p.ID, &p.Title, &p.FirstName, &p.LastName,
				&p.Slug, &p.Login, &p.Username, &p.PasswordHash,
				&p.Email, &p.Phone, &p.GroupIDs, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return err
			}
			people = append(people, p)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return model.ResultSet{}, fmt.Errorf("storage: query people: %w", err)
	}

	if people == nil {
		people = []model.Person{}
	}
	return model.ResultSet{People: people, Total: total}, nil
}

// SavePerson upserts a person record, assigning an identifier and timestamps
// as needed, and returns the persisted record. Violations of the
// login-enabled username index or the slug index surface as ErrConflict.
func (db *DB) SavePerson(ctx context.Context, p model.Person) (model.Person, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.GroupIDs == nil {
		p.GroupIDs = []string{}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO people (id, title, first_name, last_name, slug, login,
			username, password_hash, email, phone, group_ids, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			slug = EXCLUDED.slug,
			login = EXCLUDED.login,
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			group_ids = EXCLUDED.group_ids,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Title, p.FirstName, p.LastName, p.Slug, p.Login,
		p.Username, p.PasswordHash, p.Email, p.Phone, p.GroupIDs,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Person{}, fmt.Errorf("storage: save person %q: %w", p.ID, ErrConflict)
		}
		return model.Person{}, fmt.Errorf("storage: save person %q: %w", p.ID, err)
	}
	return p, nil
}

func buildPersonWhere(c model.Criteria) (string, []any) {
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
	if c.Username != "" {
		clauses = append(clauses, "username = "+arg(c.Username))
	}
	if c.GroupID != "" {
		clauses = append(clauses, arg(c.GroupID)+" = ANY(group_ids)")
	}
	if c.Login != nil {
		clauses = append(clauses, "login = "+arg(*c.Login))
	}
	if c.LastNamePrefix != "" {
		clauses = append(clauses, "last_name ILIKE "+arg(escapeLike(c.LastNamePrefix)+"%"))
	}
	if c.TitlePrefix != "" {
		clauses = append(clauses, "title ILIKE "+arg(escapeLike(c.TitlePrefix)+"%"))
	}

	return strings.Join(clauses, " AND "), args
}

func personOrderBy(sort []model.SortField) (string, error) {
	if len(sort) == 0 {
		sort = model.DefaultPersonSort()
	}
	cols := make([]string, 0, len(sort))
	for _, s := range sort {
		col, ok := personSortColumns[s.Field]
		if !ok {
			return "", fmt.Errorf("storage: unsortable field %q", s.Field)
		}
		if s.Desc {
			col += " DESC"
		}
		cols = append(cols, col)
	}
	return " ORDER BY " + strings.Join(cols, ", "), nil
}

// escapeLike neutralizes LIKE metacharacters so prefixes match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

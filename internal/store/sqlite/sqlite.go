// Package sqlite implements the todo store over a local SQLite file. It is
// the zero-configuration default when DATABASE_URL is not set and creates
// its own schema on open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"todoapp/internal/domain"
	"todoapp/internal/logger"
	"todoapp/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, store.WrapErr("open", err)
	}
	// one writer, matching the single-writer model the API assumes
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, store.WrapErr("ping", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, store.WrapErr("create schema", err)
	}
	logger.Info("sqlite opened", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, detail, completed, created_at FROM todos ORDER BY id`)
	if err != nil {
		return nil, store.WrapErr("list", err)
	}
	defer rows.Close()

	var res []domain.Todo
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Detail, &t.Completed, &t.CreatedAt); err != nil {
			return nil, store.WrapErr("list scan", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.WrapErr("list rows", err)
	}
	return res, nil
}

func (s *Store) Create(ctx context.Context, text, detail string) (domain.Todo, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Todo{}, domain.ErrEmptyText
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (text, detail, completed) VALUES (?, ?, 0)`, text, detail)
	if err != nil {
		return domain.Todo{}, store.WrapErr("create", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Todo{}, store.WrapErr("create id", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Todo, error) {
	var t domain.Todo
	err := s.db.QueryRowContext(ctx,
		`SELECT id, text, detail, completed, created_at FROM todos WHERE id = ?`, id,
	).Scan(&t.ID, &t.Text, &t.Detail, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Todo{}, store.WrapErr("get", err)
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Todo{}, store.WrapErr("update begin", err)
	}
	defer tx.Rollback()

	var t domain.Todo
	err = tx.QueryRowContext(ctx,
		`SELECT id, text, detail, completed, created_at FROM todos WHERE id = ?`, id,
	).Scan(&t.ID, &t.Text, &t.Detail, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Todo{}, store.WrapErr("update select", err)
	}

	t = t.Apply(changes)
	if _, err := tx.ExecContext(ctx,
		`UPDATE todos SET text = ?, detail = ?, completed = ? WHERE id = ?`,
		t.Text, t.Detail, t.Completed, t.ID,
	); err != nil {
		return domain.Todo{}, store.WrapErr("update", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Todo{}, store.WrapErr("update commit", err)
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return 0, store.WrapErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.WrapErr("delete", err)
	}
	if n == 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() {
	_ = s.db.Close()
}

// Package postgres implements the todo store over a pgx connection pool.
// The schema lives in internal/migrations and is applied with
// cmd/migrate_apply.
package postgres

import (
	"context"
	"errors"
	"strings"

	"todoapp/internal/domain"
	"todoapp/internal/logger"
	"todoapp/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

// Connect creates the pool, pings it and returns the store.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, store.WrapErr("connect", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, store.WrapErr("ping", err)
	}
	logger.Info("postgres connected")
	return &Store{db: db}, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Todo, error) {
	rows, err := s.db.Query(ctx, `SELECT id, text, detail, completed, created_at FROM todos ORDER BY id`)
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

	t := domain.Todo{Text: text, Detail: detail}
	err := s.db.QueryRow(ctx,
		`INSERT INTO todos (text, detail, completed) VALUES ($1, $2, false) RETURNING id, created_at`,
		text, detail,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return domain.Todo{}, store.WrapErr("create", err)
	}
	return t, nil
}

func (s *Store) Get(ctx context.Context, id int64) (domain.Todo, error) {
	var t domain.Todo
	err := s.db.QueryRow(ctx,
		`SELECT id, text, detail, completed, created_at FROM todos WHERE id = $1`, id,
	).Scan(&t.ID, &t.Text, &t.Detail, &t.Completed, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Todo{}, store.WrapErr("get", err)
	}
	return t, nil
}

// Update is a read-merge-write inside one transaction so the row the merge
// ran against is the row that gets overwritten.
func (s *Store) Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Todo{}, store.WrapErr("update begin", err)
	}
	defer tx.Rollback(ctx)

	var t domain.Todo
	err = tx.QueryRow(ctx,
		`SELECT id, text, detail, completed, created_at FROM todos WHERE id = $1 FOR UPDATE`, id,
	).Scan(&t.ID, &t.Text, &t.Detail, &t.Completed, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Todo{}, store.WrapErr("update select", err)
	}

	t = t.Apply(changes)
	if _, err := tx.Exec(ctx,
		`UPDATE todos SET text = $1, detail = $2, completed = $3 WHERE id = $4`,
		t.Text, t.Detail, t.Completed, t.ID,
	); err != nil {
		return domain.Todo{}, store.WrapErr("update", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Todo{}, store.WrapErr("update commit", err)
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return 0, store.WrapErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

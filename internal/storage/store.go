package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs every statement against a single DBTX, so the same code
// serves pooled reads and transactional writes.
type Queries struct {
	db  DBTX
	now func() time.Time
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db, now: func() time.Time { return time.Now().UTC() }}
}

type Store struct {
	*Queries
	conn *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{Queries: NewQueries(db), conn: db}
}

// WithTx runs fn inside one transaction, committing only when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := &Queries{db: tx, now: s.now}
	if err := fn(q); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// notFound maps a missing row, and a key Postgres cannot parse as its
// column type (22P02), to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return ErrNotFound
	}
	return err
}

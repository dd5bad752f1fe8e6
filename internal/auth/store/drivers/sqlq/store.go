package sqlq

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
)

// ErrNestedTx is returned when a Tx-scoped store is asked for another transaction.
var ErrNestedTx = errors.New("sqlq: nested transactions are not supported")

// Store implements store.Store on a *sql.DB.
type Store struct {
	db      *sql.DB
	q       *queries
	migrate func(*sql.DB) error
}

// NewStore wraps db. migrate is invoked by ApplyMigrations.
func NewStore(db *sql.DB, d Dialect, migrate func(*sql.DB) error) *Store {
	return &Store{
		db:      db,
		q:       &queries{db: db, d: d},
		migrate: migrate,
	}
}

// DB exposes the pool for driver-specific setup and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.q.d }

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: &queries{db: tx, d: s.q.d}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: s.q} }
func (s *Store) Roles() store.Roles                 { return &rolesRepo{q: s.q} }
func (s *Store) ActionCodes() store.ActionCodes     { return &actionCodesRepo{q: s.q} }

type txStore struct {
	tx *sql.Tx
	q  *queries
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the pool stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, ErrNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return ErrNestedTx }

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.q} }
func (t *txStore) Roles() store.Roles                 { return &rolesRepo{q: t.q} }
func (t *txStore) ActionCodes() store.ActionCodes     { return &actionCodesRepo{q: t.q} }

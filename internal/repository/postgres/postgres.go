package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"aurum-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.OrderRepository
	repository.UserRepository
	repository.LedgerRepository
	repository.CartRepository
	repository.ProductRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		OrderRepository:        NewOrderRepository(db),
		UserRepository:         NewUserRepository(db),
		LedgerRepository:       NewLedgerRepository(db),
		CartRepository:         NewCartRepository(db),
		ProductRepository:      NewProductRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction carried by ctx, falling back to the plain pool.
// Every repository method goes through this so that any call made under
// WithinTx automatically joins the enclosing transaction.
func q(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// WithinTx runs fn inside one database transaction. Nested calls reuse the
// outer transaction instead of opening a second one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}

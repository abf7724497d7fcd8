package postgres

import (
	"context"
	"database/sql"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type ledgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, type, method, amount, balance_type, balance_after, order_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id, created_at`
	return q(ctx, r.db).QueryRowContext(ctx, query,
		tx.UserID, tx.Type, tx.Method, tx.Amount, tx.BalanceType,
		tx.BalanceAfter, tx.OrderID,
	).Scan(&tx.ID, &tx.CreatedAt)
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, user_id, type, method, amount, balance_type, balance_after, order_id, created_at
	          FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE user_id = $1`
	if err := q(ctx, r.db).QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	var txs []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Method, &tx.Amount,
			&tx.BalanceType, &tx.BalanceAfter, &tx.OrderID, &tx.CreatedAt); err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	return txs, count, rows.Err()
}

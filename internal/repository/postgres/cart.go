package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetByUser(ctx context.Context, userID int32) (*domain.Cart, error) {
	query := `SELECT product_id, quantity FROM cart_items WHERE user_id = $1 ORDER BY id`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart := &domain.Cart{UserID: userID}
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, it)
	}
	return cart, rows.Err()
}

func (r *cartRepository) RemoveItems(ctx context.Context, userID int32, productIDs []int32) error {
	if len(productIDs) == 0 {
		return nil
	}
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2)`
	_, err := q(ctx, r.db).ExecContext(ctx, query, userID, pq.Array(productIDs))
	return err
}

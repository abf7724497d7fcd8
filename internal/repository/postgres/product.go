package postgres

import (
	"context"
	"database/sql"
	"errors"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	p := &domain.Product{}
	query := `SELECT id, admin_id, name, price, weight, making_charge FROM products WHERE id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.AdminID, &p.Name, &p.Price, &p.Weight, &p.MakingCharge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

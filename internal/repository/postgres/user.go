package postgres

import (
	"context"
	"database/sql"
	"errors"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// balanceColumn resolves a balance type to its column. A fixed lookup table,
// never string building, so an unknown type can only fail loudly.
var balanceColumn = map[domain.BalanceType]string{
	domain.BalanceTypeCash: "cash_balance",
	domain.BalanceTypeGold: "gold_balance",
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, admin_id, email, COALESCE(phone_number, ''), name, cash_balance, gold_balance, created_at FROM users WHERE id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.AdminID, &u.Email, &u.PhoneNumber, &u.Name,
		&u.CashBalance, &u.GoldBalance, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetAdminByID(ctx context.Context, id int32) (*domain.Admin, error) {
	a := &domain.Admin{}
	query := `SELECT id, email, name FROM admins WHERE id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Email, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *userRepository) GetBalance(ctx context.Context, userID int32, balanceType domain.BalanceType) (float64, error) {
	col, ok := balanceColumn[balanceType]
	if !ok {
		return 0, domain.ErrInvalidAmount
	}
	var balance float64
	// column name comes from the fixed table above, not caller input
	query := `SELECT ` + col + ` FROM users WHERE id = $1 FOR UPDATE`
	err := q(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return balance, err
}

func (r *userRepository) UpdateBalance(ctx context.Context, userID int32, balanceType domain.BalanceType, newBalance float64) error {
	col, ok := balanceColumn[balanceType]
	if !ok {
		return domain.ErrInvalidAmount
	}
	query := `UPDATE users SET ` + col + ` = $1 WHERE id = $2`
	result, err := q(ctx, r.db).ExecContext(ctx, query, newBalance, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) AddDeviceToken(ctx context.Context, userID int32, token string) error {
	query := `INSERT INTO user_device_tokens (user_id, token, created_at) VALUES ($1, $2, NOW())
	          ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id`
	_, err := q(ctx, r.db).ExecContext(ctx, query, userID, token)
	return err
}

func (r *userRepository) ListDeviceTokens(ctx context.Context, userID int32) ([]string, error) {
	query := `SELECT token FROM user_device_tokens WHERE user_id = $1 ORDER BY created_at`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *userRepository) RemoveDeviceToken(ctx context.Context, token string) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM user_device_tokens WHERE token = $1`, token)
	return err
}

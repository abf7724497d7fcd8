package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (admin_id, user_id, total_price, total_weight, payment_method, order_status, order_remark, transaction_id, notification_sent_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING id, created_at`
	err := q(ctx, r.db).QueryRowContext(ctx, query,
		o.AdminID, o.UserID, o.TotalPrice, o.TotalWeight, o.PaymentMethod,
		o.OrderStatus, o.OrderRemark, o.TransactionID, o.NotificationSentAt,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_id, quantity, fixed_price, product_weight, making_charge, item_status, rejection_reason)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	for i := range o.Items {
		it := &o.Items[i]
		err := q(ctx, r.db).QueryRowContext(ctx, itemQuery,
			o.ID, it.ProductID, it.Quantity, it.FixedPrice, it.ProductWeight,
			it.MakingCharge, it.ItemStatus, it.RejectionReason,
		).Scan(&it.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int32) (*domain.Order, error) {
	o := &domain.Order{}
	query := `SELECT id, admin_id, user_id, total_price, total_weight, payment_method, order_status, COALESCE(order_remark, ''), transaction_id, notification_sent_at, settled_at, created_at
	          FROM orders WHERE id = $1`
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.AdminID, &o.UserID, &o.TotalPrice, &o.TotalWeight,
		&o.PaymentMethod, &o.OrderStatus, &o.OrderRemark, &o.TransactionID,
		&o.NotificationSentAt, &o.SettledAt, &o.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID int32) ([]domain.OrderItem, error) {
	query := `SELECT id, product_id, quantity, fixed_price, product_weight, making_charge, item_status, COALESCE(rejection_reason, '')
	          FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.FixedPrice,
			&it.ProductWeight, &it.MakingCharge, &it.ItemStatus, &it.RejectionReason); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update persists the order row and every item row. Item set membership never
// changes after creation, only item fields do.
func (r *orderRepository) Update(ctx context.Context, o *domain.Order) error {
	query := `UPDATE orders SET total_price=$1, total_weight=$2, order_status=$3, order_remark=$4, notification_sent_at=$5, settled_at=$6 WHERE id=$7`
	result, err := q(ctx, r.db).ExecContext(ctx, query,
		o.TotalPrice, o.TotalWeight, o.OrderStatus, o.OrderRemark,
		o.NotificationSentAt, o.SettledAt, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	itemQuery := `UPDATE order_items SET quantity=$1, fixed_price=$2, item_status=$3, rejection_reason=$4 WHERE id=$5 AND order_id=$6`
	for i := range o.Items {
		it := &o.Items[i]
		if _, err := q(ctx, r.db).ExecContext(ctx, itemQuery,
			it.Quantity, it.FixedPrice, it.ItemStatus, it.RejectionReason, it.ID, o.ID); err != nil {
			return fmt.Errorf("update order item %d: %w", it.ID, err)
		}
	}
	return nil
}

func (r *orderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `SELECT id, admin_id, user_id, total_price, total_weight, payment_method, order_status, COALESCE(order_remark, ''), transaction_id, notification_sent_at, settled_at, created_at
	          FROM orders WHERE order_status = $1 ORDER BY created_at`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.AdminID, &o.UserID, &o.TotalPrice, &o.TotalWeight,
			&o.PaymentMethod, &o.OrderStatus, &o.OrderRemark, &o.TransactionID,
			&o.NotificationSentAt, &o.SettledAt, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Order, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, admin_id, user_id, total_price, total_weight, payment_method, order_status, COALESCE(order_remark, ''), transaction_id, notification_sent_at, settled_at, created_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.AdminID, &o.UserID, &o.TotalPrice, &o.TotalWeight,
			&o.PaymentMethod, &o.OrderStatus, &o.OrderRemark, &o.TransactionID,
			&o.NotificationSentAt, &o.SettledAt, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := `SELECT count(*) FROM orders WHERE user_id = $1`
	if err := q(ctx, r.db).QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, count, nil
}

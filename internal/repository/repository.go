package repository

import (
	"context"

	"aurum-backend/internal/domain"
)

// TxRunner executes fn inside one database transaction. Repository calls made
// with the context fn receives join that transaction; fn returning an error
// rolls everything back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int32) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Order, int32, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetAdminByID(ctx context.Context, id int32) (*domain.Admin, error)
	GetBalance(ctx context.Context, userID int32, balanceType domain.BalanceType) (float64, error)
	UpdateBalance(ctx context.Context, userID int32, balanceType domain.BalanceType, newBalance float64) error

	// Device tokens feeding the push channel
	AddDeviceToken(ctx context.Context, userID int32, token string) error
	ListDeviceTokens(ctx context.Context, userID int32) ([]string, error)
	RemoveDeviceToken(ctx context.Context, token string) error
}

type LedgerRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	ListByUser(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error)
}

type CartRepository interface {
	GetByUser(ctx context.Context, userID int32) (*domain.Cart, error)
	RemoveItems(ctx context.Context, userID int32, productIDs []int32) error
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Product, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

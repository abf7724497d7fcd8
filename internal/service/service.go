package service

import (
	"context"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/notify"
)

// Notifier is the dispatch surface the mutation services hand status changes
// to. Satisfied by notify.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, ev notify.Event) notify.Result
}

type LedgerService interface {
	// Post applies delta to the selected balance and appends the matching
	// transaction row as one atomic unit. Delta carries the sign: negative
	// debits, positive credits.
	Post(ctx context.Context, userID int32, balanceType domain.BalanceType, delta float64, method domain.TransactionMethod, orderID *int32) (*domain.Posting, error)
	GetTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error)
}

type OrderService interface {
	GetOrder(ctx context.Context, orderID int32) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Order, int32, error)
	SetItemDecision(ctx context.Context, orderID, itemID int32, approved bool, reason string) (*domain.Order, error)
	ChangeItemQuantity(ctx context.Context, orderID, itemID int32, quantity int32, fixedPrice *float64) (*domain.Order, error)
	AdvanceToApproved(ctx context.Context, orderID int32) (*domain.Order, error)
	// AutoRejectPending rejects every still-pending item on the order; used
	// by the expiry sweep.
	AutoRejectPending(ctx context.Context, orderID int32, reason string) (*domain.Order, error)
}

type BookingService interface {
	PlaceOrder(ctx context.Context, adminID, userID int32, method domain.PaymentMethod) (*domain.Order, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
	RegisterDeviceToken(ctx context.Context, userID int32, token string) error
}

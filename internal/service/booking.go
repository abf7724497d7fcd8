package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/logger"
	"aurum-backend/internal/notify"
	"aurum-backend/internal/repository"
)

type bookingService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	txRunner    repository.TxRunner
	dispatcher  Notifier
}

func NewBookingService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	txRunner repository.TxRunner,
	dispatcher Notifier,
) BookingService {
	return &bookingService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		txRunner:    txRunner,
		dispatcher:  dispatcher,
	}
}

// PlaceOrder builds an order from the user's cart. Price, weight and making
// charge are frozen onto each item at this moment; later catalog edits never
// reach a placed order. The order insert and the cart-line removal share one
// transaction.
func (s *bookingService) PlaceOrder(ctx context.Context, adminID, userID int32, method domain.PaymentMethod) (*domain.Order, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}

	cart, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart for user %d: %w", userID, err)
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	bookedProducts := make([]int32, 0, len(cart.Items))
	for _, line := range cart.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrInvalidProduct)
		}
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, domain.ErrInvalidProduct)
		}
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, err)
		}
		if product.Price <= 0 {
			return nil, fmt.Errorf("product %d has non-positive price: %w", line.ProductID, domain.ErrInvalidProduct)
		}

		items = append(items, domain.OrderItem{
			ProductID:     product.ID,
			Quantity:      line.Quantity,
			FixedPrice:    product.Price,
			ProductWeight: product.Weight,
			MakingCharge:  product.MakingCharge,
			ItemStatus:    domain.ItemStatusPending,
		})
		bookedProducts = append(bookedProducts, product.ID)
	}

	now := time.Now()
	order := &domain.Order{
		AdminID:            adminID,
		UserID:             userID,
		Items:              items,
		PaymentMethod:      method,
		OrderStatus:        domain.OrderStatusPending,
		TransactionID:      uuid.NewString(),
		NotificationSentAt: &now,
	}
	order.RecomputeTotals()

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return s.cartRepo.RemoveItems(ctx, userID, bookedProducts)
	})
	if err != nil {
		return nil, err
	}

	s.notifyPlaced(order, user)
	return order, nil
}

func (s *bookingService) notifyPlaced(order *domain.Order, user *domain.User) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		admin, err := s.userRepo.GetAdminByID(ctx, order.AdminID)
		if err != nil {
			logger.Warn("Admin lookup failed for order-placed notice", "order_id", order.ID, "error", err)
			admin = nil
		}
		result := s.dispatcher.Dispatch(ctx, notify.Event{
			Order: order,
			User:  user,
			Admin: admin,
			Tag:   domain.TagOrderPlaced,
		})
		if !result.Overall {
			logger.Error("Order-placed notification undelivered", "order_id", order.ID)
		}
	}()
}

package service

import (
	"context"
	"fmt"
	"time"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/logger"
	"aurum-backend/internal/notify"
	"aurum-backend/internal/repository"
)

type orderService struct {
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	ledger     LedgerService
	txRunner   repository.TxRunner
	dispatcher Notifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	ledger LedgerService,
	txRunner repository.TxRunner,
	dispatcher Notifier,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		ledger:     ledger,
		txRunner:   txRunner,
		dispatcher: dispatcher,
	}
}

func (s *orderService) GetOrder(ctx context.Context, orderID int32) (*domain.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *orderService) ListUserOrders(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Order, int32, error) {
	return s.orderRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *orderService) SetItemDecision(ctx context.Context, orderID, itemID int32, approved bool, reason string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.Item(itemID)
	if item == nil {
		return nil, fmt.Errorf("item %d on order %d: %w", itemID, orderID, domain.ErrNotFound)
	}

	target := domain.ItemStatusRejected
	if approved {
		target = domain.ItemStatusApproved
	}

	// Re-applying the same decision is an idempotent overwrite. Flipping a
	// finalized item to the opposite decision is only allowed while the
	// order is unsettled; once ledger postings exist the item is locked.
	if item.ItemStatus != target && !domain.CanTransitionItem(item.ItemStatus, target) && order.SettledAt != nil {
		return nil, domain.ErrItemFinalized
	}

	item.ItemStatus = target
	if approved {
		item.RejectionReason = ""
	} else {
		item.RejectionReason = reason
	}

	prev := order.OrderStatus
	order.RecomputeTotals()
	order.OrderStatus = domain.DeriveOrderStatus(order.Items)

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.settleIfApproved(ctx, order, prev); err != nil {
			return err
		}
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	tag := domain.TagItemRejected
	if approved {
		tag = domain.TagItemApproved
	}
	if order.OrderStatus != prev {
		tag = domain.TagForOrderStatus(order.OrderStatus)
	}
	s.notifyAsync(order, tag, map[string]string{"item_id": fmt.Sprintf("%d", itemID)})

	return order, nil
}

func (s *orderService) ChangeItemQuantity(ctx context.Context, orderID, itemID int32, quantity int32, fixedPrice *float64) (*domain.Order, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	item := order.Item(itemID)
	if item == nil {
		return nil, fmt.Errorf("item %d on order %d: %w", itemID, orderID, domain.ErrNotFound)
	}
	if item.ItemStatus != domain.ItemStatusPending {
		return nil, domain.ErrItemFinalized
	}

	item.Quantity = quantity
	if fixedPrice != nil {
		item.FixedPrice = *fixedPrice
	}

	prev := order.OrderStatus
	order.RecomputeTotals()
	order.OrderStatus = domain.DeriveOrderStatus(order.Items)
	if order.OrderStatus != prev && order.OrderStatus == domain.OrderStatusPending {
		now := time.Now()
		order.NotificationSentAt = &now
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) AdvanceToApproved(ctx context.Context, orderID int32) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if domain.DeriveOrderStatus(order.Items) != domain.OrderStatusApproved {
		return nil, domain.ErrOrderNotApprovable
	}

	prev := order.OrderStatus
	order.OrderStatus = domain.OrderStatusApproved
	if prev == domain.OrderStatusApproved && order.SettledAt != nil {
		// already advanced and settled, nothing to do
		return order, nil
	}

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.settleIfApproved(ctx, order, prev); err != nil {
			return err
		}
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(order, domain.TagSuccess, nil)
	return order, nil
}

func (s *orderService) AutoRejectPending(ctx context.Context, orderID int32, reason string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var rejected []int32
	for i := range order.Items {
		if order.Items[i].ItemStatus != domain.ItemStatusPending {
			continue
		}
		order.Items[i].ItemStatus = domain.ItemStatusRejected
		order.Items[i].RejectionReason = reason
		rejected = append(rejected, order.Items[i].ID)
	}
	if len(rejected) == 0 {
		return order, nil
	}

	prev := order.OrderStatus
	order.RecomputeTotals()
	order.OrderStatus = domain.DeriveOrderStatus(order.Items)

	err = s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.settleIfApproved(ctx, order, prev); err != nil {
			return err
		}
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	for _, itemID := range rejected {
		s.notifyAsync(order, domain.TagItemRejected, map[string]string{
			"item_id": fmt.Sprintf("%d", itemID),
			"reason":  reason,
		})
	}
	return order, nil
}

// settleIfApproved applies balance settlement exactly once, on the transition
// into the aggregate Approved status. Runs inside the caller's transaction so
// order status and balances cannot desync: a posting failure rolls the status
// change back too.
func (s *orderService) settleIfApproved(ctx context.Context, order *domain.Order, prev domain.OrderStatus) error {
	if order.OrderStatus != domain.OrderStatusApproved || prev == domain.OrderStatusApproved {
		return nil
	}
	if order.SettledAt != nil {
		return nil
	}

	orderID := order.ID
	switch order.PaymentMethod {
	case domain.PaymentMethodCash:
		if order.TotalPrice > 0 {
			if _, err := s.ledger.Post(ctx, order.UserID, domain.BalanceTypeCash, -order.TotalPrice, domain.MethodCash, &orderID); err != nil {
				return fmt.Errorf("cash settlement for order %d: %w", orderID, err)
			}
		}
	case domain.PaymentMethodGold, domain.PaymentMethodGoldToGold:
		if order.TotalWeight > 0 {
			if _, err := s.ledger.Post(ctx, order.UserID, domain.BalanceTypeGold, -order.TotalWeight, domain.MethodGoldToGold, &orderID); err != nil {
				return fmt.Errorf("gold settlement for order %d: %w", orderID, err)
			}
		}
		if mk := order.MakingCharges(); mk > 0 {
			if _, err := s.ledger.Post(ctx, order.UserID, domain.BalanceTypeCash, -mk, domain.MethodCash, &orderID); err != nil {
				return fmt.Errorf("making charge settlement for order %d: %w", orderID, err)
			}
		}
	default:
		return fmt.Errorf("order %d: unknown payment method %q", orderID, order.PaymentMethod)
	}

	now := time.Now()
	order.SettledAt = &now
	return nil
}

// notifyAsync dispatches after the mutation committed. Best effort: a failed
// dispatch is logged, never surfaced, never rolled back into the mutation.
func (s *orderService) notifyAsync(order *domain.Order, tag domain.StatusTag, extra map[string]string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		user, err := s.userRepo.GetByID(ctx, order.UserID)
		if err != nil {
			logger.Error("Notification skipped, user lookup failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
			return
		}
		admin, err := s.userRepo.GetAdminByID(ctx, order.AdminID)
		if err != nil {
			logger.Warn("Admin lookup failed, notifying user only", "order_id", order.ID, "admin_id", order.AdminID, "error", err)
			admin = nil
		}

		result := s.dispatcher.Dispatch(ctx, notify.Event{
			Order: order,
			User:  user,
			Admin: admin,
			Tag:   tag,
			Extra: extra,
		})
		if !result.Overall {
			logger.Error("Order notification undelivered", "order_id", order.ID, "tag", tag)
		}
	}()
}

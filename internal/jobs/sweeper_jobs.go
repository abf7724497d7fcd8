package jobs

import (
	"context"
	"fmt"
	"time"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/logger"
)

const autoRejectReason = "timeout"

// SweepPendingOrders expires orders stuck in user confirmation. Orders in the
// warning window (elapsed >= warn_after) get a reminder push per pending
// item; orders past reject_after get every still-pending item auto-rejected.
// Each order is processed independently: one order failing never stops the
// rest of the pass.
func (jr *JobRunner) SweepPendingOrders() {
	jr.runWithRecovery("SweepPendingOrders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.config.Sweeper.LockTTL)
		defer cancel()

		acquired, err := jr.lock.TryLock(ctx)
		if err != nil {
			logger.Warn("Sweep lock unavailable, skipping pass", "error", err)
			return
		}
		if !acquired {
			logger.Info("Sweep lock held elsewhere, skipping pass")
			return
		}
		defer func() {
			if err := jr.lock.Unlock(ctx); err != nil {
				logger.Warn("Failed to release sweep lock", "error", err)
			}
		}()

		orders, err := jr.orders.ListByStatus(ctx, domain.OrderStatusPending)
		if err != nil {
			logger.Error("Failed to list pending orders", "error", err)
			return
		}

		now := time.Now()
		var warned, rejected int
		for i := range orders {
			order := &orders[i]
			if !order.HasPendingItems() || order.NotificationSentAt == nil {
				continue
			}

			elapsed := now.Sub(*order.NotificationSentAt)
			switch {
			case elapsed >= jr.config.Sweeper.RejectAfter:
				if _, err := jr.orderSvc.AutoRejectPending(ctx, order.ID, autoRejectReason); err != nil {
					logger.Error("Auto-reject failed", "order_id", order.ID, "error", err)
					continue
				}
				rejected++
				logger.Debug("Auto-rejected pending items", "order_id", order.ID, "elapsed", elapsed)
			case elapsed >= jr.config.Sweeper.WarnAfter:
				jr.warnOrder(ctx, order)
				warned++
			}
		}

		logger.Info("Pending-order sweep finished",
			"scanned", len(orders), "warned", warned, "rejected", rejected)
	})
}

// warnOrder sends one reminder push per pending item to every device token of
// the order's user. Best effort throughout.
func (jr *JobRunner) warnOrder(ctx context.Context, order *domain.Order) {
	tokens, err := jr.users.ListDeviceTokens(ctx, order.UserID)
	if err != nil {
		logger.Warn("Token lookup failed for warning push", "order_id", order.ID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	for _, item := range order.Items {
		if item.ItemStatus != domain.ItemStatusPending {
			continue
		}
		title := "Confirmation Needed"
		body := fmt.Sprintf("An item on order %s is still awaiting your approval and will be cancelled soon.", order.TransactionID)
		data := map[string]string{
			"order_id": fmt.Sprintf("%d", order.ID),
			"item_id":  fmt.Sprintf("%d", item.ID),
			"status":   string(domain.TagApprovalPending),
		}
		results, err := jr.push.Send(ctx, tokens, title, body, data)
		if err != nil {
			logger.Warn("Warning push failed", "order_id", order.ID, "item_id", item.ID, "error", err)
			continue
		}
		for _, tr := range results {
			if !tr.Success {
				logger.Debug("Warning push token failure",
					"order_id", order.ID, "item_id", item.ID, "error_code", tr.ErrorCode)
			}
		}
	}
}

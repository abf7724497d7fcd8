package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/logger"
	"aurum-backend/internal/repository"
)

// Dispatcher fans an order status change out to the email and push channels
// concurrently and persists in-app notification rows. It never returns an
// error: every failure is captured in the Result.
type Dispatcher struct {
	email EmailChannel
	push  PushChannel
	users repository.UserRepository
	notes repository.NotificationRepository

	maxAttempts    int
	baseDelay      time.Duration
	channelTimeout time.Duration
}

func NewDispatcher(
	email EmailChannel,
	push PushChannel,
	users repository.UserRepository,
	notes repository.NotificationRepository,
	maxAttempts int,
	baseDelay, channelTimeout time.Duration,
) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Dispatcher{
		email:          email,
		push:           push,
		users:          users,
		notes:          notes,
		maxAttempts:    maxAttempts,
		baseDelay:      baseDelay,
		channelTimeout: channelTimeout,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Result {
	var res Result
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Email = d.email.Send(ctx, ev)
	}()
	go func() {
		defer wg.Done()
		res.Push = d.sendPush(ctx, ev)
	}()
	wg.Wait()

	res.Overall = res.Email.Success || res.Push.Success
	if !res.Overall {
		logger.Error("Notification dispatch failed on all channels",
			"order_id", ev.Order.ID, "tag", ev.Tag,
			"email_message", res.Email.Message, "push_message", res.Push.Message)
	}

	if !ev.SuppressInApp {
		d.persistInApp(ctx, ev)
	}
	return res
}

// sendPush delivers the push leg, retrying the aggregate send with
// exponential backoff when no token got through.
func (d *Dispatcher) sendPush(ctx context.Context, ev Event) PushResult {
	tokens, err := d.users.ListDeviceTokens(ctx, ev.User.ID)
	if err != nil {
		return PushResult{Message: fmt.Sprintf("list device tokens: %v", err)}
	}
	if len(tokens) == 0 {
		return PushResult{Message: "no registered device tokens"}
	}

	title, body := contentFor(ev)
	data := map[string]string{
		"order_id": fmt.Sprintf("%d", ev.Order.ID),
		"status":   string(ev.Tag),
	}
	for k, v := range ev.Extra {
		data[k] = v
	}

	var out PushResult
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		if attempt > 0 {
			if !d.backoff(ctx, attempt) {
				out.Message = "cancelled during backoff"
				return out
			}
		}
		out.Attempts = attempt + 1

		sendCtx, cancel := context.WithTimeout(ctx, d.channelTimeout)
		results, err := d.push.Send(sendCtx, tokens, title, body, data)
		cancel()
		if err != nil {
			out.Message = err.Error()
			logger.Warn("Push send attempt failed", "order_id", ev.Order.ID, "attempt", attempt+1, "error", err)
			continue
		}

		out.Results = results
		tokens = d.pruneAndCollectRetryable(ctx, results)
		for _, tr := range results {
			if tr.Success {
				out.Success = true
			}
		}
		if out.Success {
			out.Message = ""
			return out
		}
		out.Message = "all tokens failed"
		if len(tokens) == 0 {
			// nothing left worth retrying
			return out
		}
	}
	return out
}

// pruneAndCollectRetryable removes permanently dead tokens from the store and
// returns the tokens still worth another attempt. Pruning failures are logged
// and never fail the dispatch.
func (d *Dispatcher) pruneAndCollectRetryable(ctx context.Context, results []TokenResult) []string {
	var retryable []string
	for _, tr := range results {
		if tr.Success {
			continue
		}
		if isPermanentTokenFailure(tr.ErrorCode) {
			if err := d.users.RemoveDeviceToken(ctx, tr.Token); err != nil {
				logger.Warn("Failed to prune invalid device token", "error", err)
			}
			continue
		}
		retryable = append(retryable, tr.Token)
	}
	return retryable
}

func (d *Dispatcher) persistInApp(ctx context.Context, ev Event) {
	title, body := contentFor(ev)
	attrs := map[string]string{
		"order_id": fmt.Sprintf("%d", ev.Order.ID),
		"status":   string(ev.Tag),
	}

	userNote := &domain.Notification{
		UserID:     ev.User.ID,
		AdminID:    ev.Order.AdminID,
		Title:      title,
		Message:    body,
		Attributes: attrs,
	}
	if err := d.notes.Create(ctx, userNote); err != nil {
		logger.Warn("Failed to persist user notification", "order_id", ev.Order.ID, "error", err)
	}

	if ev.Admin != nil {
		adminNote := &domain.Notification{
			UserID:     ev.Admin.ID,
			AdminID:    ev.Order.AdminID,
			Title:      title,
			Message:    fmt.Sprintf("%s (customer: %s)", body, ev.User.Name),
			Attributes: attrs,
		}
		if err := d.notes.Create(ctx, adminNote); err != nil {
			logger.Warn("Failed to persist admin notification", "order_id", ev.Order.ID, "error", err)
		}
	}
}

// backoff sleeps base * 2^(attempt-1), honoring cancellation. Reports false
// when ctx expired first.
func (d *Dispatcher) backoff(ctx context.Context, attempt int) bool {
	delay := d.baseDelay * time.Duration(1<<(attempt-1))
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

// contentFor turns a status tag into display text. The real template
// rendering lives with the content builders; this is the fallback wording
// both channels and the in-app rows share.
func contentFor(ev Event) (title, body string) {
	switch ev.Tag {
	case domain.TagOrderPlaced:
		return "Order Placed", fmt.Sprintf("Order %s has been placed.", ev.Order.TransactionID)
	case domain.TagApprovalPending:
		return "Action Required", fmt.Sprintf("Order %s is awaiting your confirmation.", ev.Order.TransactionID)
	case domain.TagSuccess, domain.TagApproval:
		return "Order Approved", fmt.Sprintf("Order %s has been approved.", ev.Order.TransactionID)
	case domain.TagItemApproved:
		return "Item Approved", fmt.Sprintf("An item on order %s was approved.", ev.Order.TransactionID)
	case domain.TagItemRejected, domain.TagReject:
		return "Item Rejected", fmt.Sprintf("An item on order %s was rejected.", ev.Order.TransactionID)
	case domain.TagProcessing:
		return "Order Update", fmt.Sprintf("Order %s is partially processed.", ev.Order.TransactionID)
	default:
		return "Order Update", fmt.Sprintf("Order %s status: %s.", ev.Order.TransactionID, ev.Order.OrderStatus)
	}
}

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"aurum-backend/internal/logger"
)

// SendGridChannel delivers status emails through SendGrid with its own retry
// loop: the dispatcher treats the channel as a single best-effort call.
type SendGridChannel struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string

	maxAttempts int
	baseDelay   time.Duration
	timeout     time.Duration
}

func NewSendGridChannel(apiKey, fromEmail, fromName string, maxAttempts int, baseDelay, timeout time.Duration) *SendGridChannel {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &SendGridChannel{
		client:      sendgrid.NewSendClient(apiKey),
		fromEmail:   fromEmail,
		fromName:    fromName,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		timeout:     timeout,
	}
}

func (c *SendGridChannel) Send(ctx context.Context, ev Event) EmailResult {
	title, body := contentFor(ev)

	from := mail.NewEmail(c.fromName, c.fromEmail)
	to := mail.NewEmail(ev.User.Name, ev.User.Email)
	message := mail.NewSingleEmail(from, title, to, body, "")
	if ev.Admin != nil && ev.Admin.Email != "" {
		p := message.Personalizations[0]
		p.AddCCs(mail.NewEmail(ev.Admin.Name, ev.Admin.Email))
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return EmailResult{Message: "cancelled during backoff"}
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, c.timeout)
		response, err := c.client.SendWithContext(sendCtx, message)
		cancel()
		if err != nil {
			lastErr = err
			logger.Warn("Email send attempt failed", "to", ev.User.Email, "attempt", attempt+1, "error", err)
			continue
		}
		if response.StatusCode >= 400 {
			lastErr = fmt.Errorf("sendgrid status %d: %s", response.StatusCode, response.Body)
			logger.Warn("Email send attempt rejected", "to", ev.User.Email, "attempt", attempt+1, "status", response.StatusCode)
			continue
		}

		result := EmailResult{Success: true}
		if ids := response.Headers["X-Message-Id"]; len(ids) > 0 {
			result.MessageID = ids[0]
		}
		return result
	}
	return EmailResult{Message: fmt.Sprintf("email failed after %d attempts: %v", c.maxAttempts, lastErr)}
}

package notify

import (
	"context"

	"aurum-backend/internal/domain"
)

// Event is one order status change to fan out.
type Event struct {
	Order *domain.Order
	User  *domain.User
	Admin *domain.Admin
	Tag   domain.StatusTag
	Extra map[string]string

	// SuppressInApp skips persisting in-app notification rows, for callers
	// that already wrote their own.
	SuppressInApp bool
}

type EmailResult struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID string `json:"message_id,omitempty"`
}

// Error codes the push provider uses to flag a token as permanently dead.
const (
	ErrCodeNotRegistered       = "NotRegistered"
	ErrCodeInvalidRegistration = "InvalidRegistration"
	ErrCodeMismatchSenderID    = "MismatchSenderId"
)

func isPermanentTokenFailure(code string) bool {
	switch code {
	case ErrCodeNotRegistered, ErrCodeInvalidRegistration, ErrCodeMismatchSenderID:
		return true
	}
	return false
}

type TokenResult struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
}

type PushResult struct {
	Success  bool          `json:"success"`
	Attempts int           `json:"attempts"`
	Results  []TokenResult `json:"results,omitempty"`
	Message  string        `json:"message,omitempty"`
}

// Result is the outcome of one dispatch. Overall follows at-least-one-channel
// semantics: true when email or push got through.
type Result struct {
	Email   EmailResult `json:"email"`
	Push    PushResult  `json:"push"`
	Overall bool        `json:"overall"`
}

// EmailChannel delivers one status email. Implementations retry internally
// and report the final outcome; they never return an error.
type EmailChannel interface {
	Send(ctx context.Context, ev Event) EmailResult
}

// PushChannel delivers one push message to a token set. One result per token;
// the returned error covers provider-level failure only.
type PushChannel interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]TokenResult, error)
}

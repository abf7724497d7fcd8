package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMChannel delivers pushes through Firebase Cloud Messaging. Each token in
// a batch is reported independently so the dispatcher can prune dead ones.
type FCMChannel struct {
	client *messaging.Client
}

func NewFCMChannel(ctx context.Context, credentialsFile string) (*FCMChannel, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}
	return &FCMChannel{client: client}, nil
}

func (c *FCMChannel) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]TokenResult, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	br, err := c.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast: %w", err)
	}

	results := make([]TokenResult, len(br.Responses))
	for i, resp := range br.Responses {
		results[i] = TokenResult{
			Token:     tokens[i],
			Success:   resp.Success,
			ErrorCode: classifyFCMError(resp.Error),
		}
	}
	return results, nil
}

// classifyFCMError maps provider errors onto the stable error-code vocabulary.
// Only the permanent-invalidity codes matter to callers; anything else comes
// back as a generic transient code.
func classifyFCMError(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case messaging.IsUnregistered(err):
		return ErrCodeNotRegistered
	case messaging.IsSenderIDMismatch(err):
		return ErrCodeMismatchSenderID
	case errorutils.IsInvalidArgument(err):
		return ErrCodeInvalidRegistration
	default:
		return "Unavailable"
	}
}

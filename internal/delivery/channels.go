// Package delivery sends messages over SMS and email and fans a single
// message out to many recipients with bounded concurrency. Per-recipient
// failures are isolated: one bad number never aborts the batch.
package delivery

import (
	"context"

	"courierbot/internal/models"
)

// SMSChannel sends one text message. to must already be E.164-normalized.
type SMSChannel interface {
	SendSMS(ctx context.Context, to, body string) (*models.SendResult, error)
}

// EmailChannel sends one email.
type EmailChannel interface {
	SendEmail(ctx context.Context, to, subject, body string) (*models.SendResult, error)
}

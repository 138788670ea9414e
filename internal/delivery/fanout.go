package delivery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"courierbot/internal/models"
	"courierbot/internal/recipient"
)

// DefaultConcurrency caps parallel sends per batch.
const DefaultConcurrency = 5

// Fanout delivers one message to many recipients over the right channel for
// each. Work runs on a bounded pool; each recipient's outcome is recorded
// independently and a failure never cancels its siblings.
type Fanout struct {
	sms         SMSChannel
	email       EmailChannel
	concurrency int
	logger      *zap.Logger
}

func NewFanout(sms SMSChannel, email EmailChannel, concurrency int, logger *zap.Logger) *Fanout {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sms: sms, email: email, concurrency: concurrency, logger: logger}
}

// classify splits recipients into phone numbers, email addresses and
// everything else. Order within each class is preserved.
func classify(recipients []string) (phones, emails, others []string) {
	for _, r := range recipients {
		switch {
		case recipient.IsPhoneNumber(r):
			phones = append(phones, r)
		case recipient.IsEmailAddress(r):
			emails = append(emails, r)
		default:
			others = append(others, r)
		}
	}
	return phones, emails, others
}

type sendFunc func(ctx context.Context, target string) (*models.SendResult, error)

// run fans send over targets on the bounded pool and returns one result per
// target. Panics and errors become failed SendResults, never lost entries.
func (f *Fanout) run(ctx context.Context, targets []string, send sendFunc) []models.SendResult {
	results := make([]models.SendResult, 0, len(targets))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, f.concurrency)
	)
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := send(ctx, target)
			if err != nil {
				f.logger.Warn("delivery failed",
					zap.String("recipient", target),
					zap.Error(err))
				res = &models.SendResult{
					Recipient: target,
					Success:   false,
					Error:     err.Error(),
					SentAt:    time.Now(),
				}
			}

			mu.Lock()
			results = append(results, *res)
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	return results
}

// SendSMSMulti texts message to every recipient. Recipients that are not
// phone numbers are recorded as failures, not silently dropped.
func (f *Fanout) SendSMSMulti(ctx context.Context, recipients []string, message string) *models.MultiSendResult {
	phones, emails, others := classify(recipients)
	out := &models.MultiSendResult{
		TotalRecipients: len(recipients),
		PhoneRecipients: len(phones),
		EmailRecipients: len(emails),
		OtherRecipients: len(others),
		OriginalMessage: message,
	}

	out.Results = f.run(ctx, phones, func(ctx context.Context, target string) (*models.SendResult, error) {
		formatted := recipient.FormatPhoneNumber(target)
		res, err := f.sms.SendSMS(ctx, formatted, message)
		if res != nil {
			res.Recipient = target
			res.FormattedRecipient = formatted
		}
		return res, err
	})
	for _, skipped := range append(emails, others...) {
		out.Results = append(out.Results, models.SendResult{
			Recipient: skipped,
			Success:   false,
			Error:     fmt.Sprintf("%q is not a valid phone number", skipped),
			SentAt:    time.Now(),
		})
	}

	out.Tally()
	return out
}

// SendEmailMulti emails message to every recipient under one subject.
func (f *Fanout) SendEmailMulti(ctx context.Context, recipients []string, subject, message string) *models.MultiSendResult {
	phones, emails, others := classify(recipients)
	out := &models.MultiSendResult{
		TotalRecipients: len(recipients),
		PhoneRecipients: len(phones),
		EmailRecipients: len(emails),
		OtherRecipients: len(others),
		OriginalMessage: message,
		Subject:         subject,
	}

	out.Results = f.run(ctx, emails, func(ctx context.Context, target string) (*models.SendResult, error) {
		return f.email.SendEmail(ctx, target, subject, message)
	})
	for _, skipped := range append(phones, others...) {
		out.Results = append(out.Results, models.SendResult{
			Recipient: skipped,
			Success:   false,
			Error:     fmt.Sprintf("%q is not a valid email address", skipped),
			SentAt:    time.Now(),
		})
	}

	out.Tally()
	return out
}

// SendMixed routes each recipient to its channel: phones get SMS, email
// addresses get email, anything else fails with a classification error.
func (f *Fanout) SendMixed(ctx context.Context, recipients []string, subject, message string) *models.MultiSendResult {
	phones, emails, others := classify(recipients)
	out := &models.MultiSendResult{
		TotalRecipients: len(recipients),
		PhoneRecipients: len(phones),
		EmailRecipients: len(emails),
		OtherRecipients: len(others),
		OriginalMessage: message,
		Subject:         subject,
	}

	out.Results = f.run(ctx, recipients, func(ctx context.Context, target string) (*models.SendResult, error) {
		switch {
		case recipient.IsPhoneNumber(target):
			formatted := recipient.FormatPhoneNumber(target)
			res, err := f.sms.SendSMS(ctx, formatted, message)
			if res != nil {
				res.Recipient = target
				res.FormattedRecipient = formatted
			}
			return res, err
		case recipient.IsEmailAddress(target):
			return f.email.SendEmail(ctx, target, subject, message)
		default:
			return nil, fmt.Errorf("%q is neither a phone number nor an email address", target)
		}
	})

	out.Tally()
	return out
}

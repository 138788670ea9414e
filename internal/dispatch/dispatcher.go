// Package dispatch routes parsed commands to their handlers: immediate SMS
// and email sends, multi-recipient fan-outs, and scheduled reminders. Every
// handler returns the user-facing reply text; errors are folded into the
// reply, never propagated to the bot loop.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"courierbot/internal/delivery"
	"courierbot/internal/enhance"
	"courierbot/internal/models"
	"courierbot/internal/recipient"
	"courierbot/internal/scheduler"
	"courierbot/internal/storage"
)

// selfRecipient is the sentinel the grammar emits for "remind me ..." and
// "text me ...". It is swapped for the owner's configured number here.
const selfRecipient = "me"

type Dispatcher struct {
	sms      delivery.SMSChannel
	email    delivery.EmailChannel
	fanout   *delivery.Fanout
	enhancer enhance.Enhancer
	sched    *scheduler.Service
	store    storage.Storage
	log      *zap.Logger

	// ownerNumber receives reminders addressed to "me".
	ownerNumber string

	handlers map[models.Action]func(ctx context.Context, cmd *models.Command) string
}

func New(
	sms delivery.SMSChannel,
	email delivery.EmailChannel,
	fanout *delivery.Fanout,
	enhancer enhance.Enhancer,
	sched *scheduler.Service,
	store storage.Storage,
	ownerNumber string,
	log *zap.Logger,
) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		sms:         sms,
		email:       email,
		fanout:      fanout,
		enhancer:    enhancer,
		sched:       sched,
		store:       store,
		ownerNumber: ownerNumber,
		log:         log,
	}
	d.handlers = map[models.Action]func(ctx context.Context, cmd *models.Command) string{
		models.ActionCreateTask:            d.handleCreateTask,
		models.ActionCreateAppointment:     d.handleCreateAppointment,
		models.ActionSendMessage:           d.handleSendMessage,
		models.ActionSendMessageMulti:      d.handleSendMessageMulti,
		models.ActionSendEmail:             d.handleSendEmail,
		models.ActionSendEmailMulti:        d.handleSendEmailMulti,
		models.ActionScheduleSMSReminder:   d.handleScheduleSMSReminder,
		models.ActionScheduleEmailReminder: d.handleScheduleEmailReminder,
		models.ActionLogConversation:       d.handleLogConversation,
		models.ActionMixedMessaging:        d.handleMixedMessaging,
	}
	return d
}

// Dispatch routes cmd to its handler and returns the reply text.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd *models.Command) string {
	handler, ok := d.handlers[cmd.Action]
	if !ok {
		return fmt.Sprintf("Unknown action: %s", cmd.Action)
	}
	d.log.Info("dispatching command",
		zap.String("action", string(cmd.Action)),
		zap.String("recipient", cmd.Recipient),
		zap.Int("recipients", len(cmd.Recipients)))
	return handler(ctx, cmd)
}

func (d *Dispatcher) handleCreateTask(ctx context.Context, cmd *models.Command) string {
	return fmt.Sprintf("Task '%s' scheduled for %s.", cmd.Title, cmd.DueDate)
}

func (d *Dispatcher) handleCreateAppointment(ctx context.Context, cmd *models.Command) string {
	return fmt.Sprintf("Appointment '%s' booked for %s.", cmd.Title, cmd.DueDate)
}

func (d *Dispatcher) handleSendMessage(ctx context.Context, cmd *models.Command) string {
	target := d.resolveSelf(cmd.Recipient)
	original := cmd.OriginalMessage
	if original == "" {
		original = cmd.Message
	}

	if !recipient.IsPhoneNumber(target) {
		// No deliverable channel; hand back the polished text instead.
		enhanced := d.enhancer.Enhance(ctx, cmd.Message)
		return fmt.Sprintf("Enhanced message for %s:\nOriginal: %s\nEnhanced: %s",
			cmd.Recipient, cmd.Message, enhanced)
	}

	formatted := recipient.FormatPhoneNumber(target)
	enhanced := d.enhancer.Enhance(ctx, original)
	res, err := d.sms.SendSMS(ctx, formatted, enhanced)
	if err != nil {
		return fmt.Sprintf("Failed to send SMS to %s: %v", cmd.Recipient, err)
	}
	return fmt.Sprintf("✅ Professional SMS sent to %s!\n\nOriginal: %s\nEnhanced: %s\n\nMessage ID: %s",
		cmd.Recipient, original, enhanced, res.MessageID)
}

func (d *Dispatcher) handleSendEmail(ctx context.Context, cmd *models.Command) string {
	original := cmd.OriginalMessage
	if original == "" {
		original = cmd.Message
	}

	if !recipient.IsEmailAddress(cmd.Recipient) {
		enhanced := d.enhancer.Enhance(ctx, cmd.Message)
		return fmt.Sprintf("Enhanced message for %s:\nOriginal: %s\nEnhanced: %s\n\nNote: %s is not a valid email address",
			cmd.Recipient, cmd.Message, enhanced, cmd.Recipient)
	}

	enhanced := d.enhancer.Enhance(ctx, original)
	subject := cmd.Subject
	if subject == "" {
		subject = d.enhancer.SuggestSubject(ctx, enhanced)
	}

	res, err := d.email.SendEmail(ctx, cmd.Recipient, subject, enhanced)
	if err != nil {
		return fmt.Sprintf("Failed to send email to %s: %v", cmd.Recipient, err)
	}
	return fmt.Sprintf("✅ Professional email sent to %s!\n\nSubject: %s\nOriginal: %s\nEnhanced: %s\n\nSent at: %s",
		cmd.Recipient, subject, original, enhanced, res.SentAt.Format(time.RFC3339))
}

func (d *Dispatcher) handleSendMessageMulti(ctx context.Context, cmd *models.Command) string {
	if len(cmd.Recipients) == 0 {
		return "❌ No recipients specified"
	}
	enhanced := d.enhancer.Enhance(ctx, cmd.Message)
	res := d.fanout.SendSMSMulti(ctx, cmd.Recipients, enhanced)
	res.OriginalMessage = cmd.Message
	res.EnhancedMessage = enhanced
	return formatMultiResponse(res, "message")
}

func (d *Dispatcher) handleSendEmailMulti(ctx context.Context, cmd *models.Command) string {
	if len(cmd.Recipients) == 0 {
		return "❌ No recipients specified"
	}
	enhanced := d.enhancer.Enhance(ctx, cmd.Message)
	subject := cmd.Subject
	if subject == "" {
		subject = d.enhancer.SuggestSubject(ctx, enhanced)
	}
	res := d.fanout.SendEmailMulti(ctx, cmd.Recipients, subject, enhanced)
	res.OriginalMessage = cmd.Message
	res.EnhancedMessage = enhanced
	return formatMultiResponse(res, "email")
}

func (d *Dispatcher) handleMixedMessaging(ctx context.Context, cmd *models.Command) string {
	if len(cmd.Recipients) == 0 {
		return "❌ No recipients specified"
	}
	enhanced := d.enhancer.Enhance(ctx, cmd.Message)
	subject := cmd.Subject
	if subject == "" {
		subject = d.enhancer.SuggestSubject(ctx, enhanced)
	}
	res := d.fanout.SendMixed(ctx, cmd.Recipients, subject, enhanced)
	res.OriginalMessage = cmd.Message
	res.EnhancedMessage = enhanced
	return formatMultiResponse(res, "message")
}

func (d *Dispatcher) handleScheduleSMSReminder(ctx context.Context, cmd *models.Command) string {
	target := d.resolveSelf(cmd.Recipient)
	if target == "" {
		return "❌ No recipient specified for SMS reminder"
	}
	if !recipient.IsPhoneNumber(target) {
		return fmt.Sprintf("❌ Invalid phone number format: %s", cmd.Recipient)
	}

	formatted := recipient.FormatPhoneNumber(target)
	enhanced := d.enhancer.Enhance(ctx, cmd.Message)

	id, err := d.scheduleReminder(ctx, &models.ReminderRecord{
		ID:        uuid.New().String(),
		Kind:      "sms",
		Recipient: formatted,
		Message:   enhanced,
		RunAt:     cmd.ReminderTime,
		Status:    scheduler.StatusScheduled,
	}, func(jobCtx context.Context) error {
		_, err := d.sms.SendSMS(jobCtx, formatted, enhanced)
		return err
	})
	if err != nil {
		return fmt.Sprintf("❌ Failed to schedule SMS reminder: %v", err)
	}

	return fmt.Sprintf("✅ SMS reminder scheduled!\n\n📱 To: %s\n⏰ When: %s\n💬 Message: %s\n🆔 Reminder ID: %s",
		cmd.Recipient, cmd.ReminderTime.Format("Monday, January 2 at 3:04 PM"), enhanced, id)
}

func (d *Dispatcher) handleScheduleEmailReminder(ctx context.Context, cmd *models.Command) string {
	if cmd.Recipient == "" {
		return "❌ No recipient specified for email reminder"
	}
	if !recipient.IsEmailAddress(cmd.Recipient) {
		return fmt.Sprintf("❌ Invalid email address format: %s", cmd.Recipient)
	}

	target := cmd.Recipient
	enhanced := d.enhancer.Enhance(ctx, cmd.Message)
	subject := cmd.Subject
	if subject == "" {
		subject = fmt.Sprintf("Reminder: %s", d.enhancer.SuggestSubject(ctx, enhanced))
	}

	id, err := d.scheduleReminder(ctx, &models.ReminderRecord{
		ID:        uuid.New().String(),
		Kind:      "email",
		Recipient: target,
		Subject:   subject,
		Message:   enhanced,
		RunAt:     cmd.ReminderTime,
		Status:    scheduler.StatusScheduled,
	}, func(jobCtx context.Context) error {
		_, err := d.email.SendEmail(jobCtx, target, subject, enhanced)
		return err
	})
	if err != nil {
		return fmt.Sprintf("❌ Failed to schedule email reminder: %v", err)
	}

	return fmt.Sprintf("✅ Email reminder scheduled!\n\n📧 To: %s\n⏰ When: %s\n📨 Subject: %s\n💬 Message: %s\n🆔 Reminder ID: %s",
		target, cmd.ReminderTime.Format("Monday, January 2 at 3:04 PM"), subject, enhanced, id)
}

func (d *Dispatcher) handleLogConversation(ctx context.Context, cmd *models.Command) string {
	d.log.Info("conversation note", zap.String("notes", cmd.Notes))
	return "Conversation log saved."
}

// scheduleReminder persists the audit record, then arms the job, and keeps
// the record's status in sync with the outcome. Persist-first: the record
// must exist before the job can possibly fire. The job owns its payload via
// closure; nothing global is consulted at fire time.
func (d *Dispatcher) scheduleReminder(ctx context.Context, rec *models.ReminderRecord, send func(ctx context.Context) error) (string, error) {
	name := fmt.Sprintf("%s-reminder:%s", rec.Kind, rec.Recipient)
	recID := rec.ID

	if serr := d.store.SaveReminder(rec); serr != nil {
		// The reminder still fires; only the audit trail is degraded.
		d.log.Warn("failed to persist reminder", zap.String("id", rec.ID), zap.Error(serr))
	}

	id, err := d.sched.Schedule(rec.ID, name, rec.RunAt, func(jobCtx context.Context) error {
		err := send(jobCtx)
		status, lastError := scheduler.StatusSent, ""
		if err != nil {
			status, lastError = scheduler.StatusFailed, err.Error()
		}
		if uerr := d.store.UpdateReminderStatus(recID, status, lastError); uerr != nil {
			d.log.Warn("failed to update reminder status", zap.String("id", recID), zap.Error(uerr))
		}
		return err
	})
	if err != nil {
		if uerr := d.store.UpdateReminderStatus(recID, scheduler.StatusFailed, err.Error()); uerr != nil {
			d.log.Warn("failed to update reminder status", zap.String("id", recID), zap.Error(uerr))
		}
		return "", err
	}
	return id, nil
}

// resolveSelf swaps the "me" sentinel for the owner's configured number.
func (d *Dispatcher) resolveSelf(target string) string {
	if strings.EqualFold(strings.TrimSpace(target), selfRecipient) {
		return d.ownerNumber
	}
	return target
}

// formatMultiResponse renders a fan-out outcome as reply text: an N-of-M
// summary followed by per-recipient delivery details.
func formatMultiResponse(res *models.MultiSendResult, kind string) string {
	if !res.AnySuccess() {
		return fmt.Sprintf("❌ Failed to send %ss to all %d recipients", kind, res.TotalRecipients)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s sent to %d/%d recipients!",
		titleCase(kind), res.Successful, res.TotalRecipients)
	fmt.Fprintf(&b, "\n\nOriginal: %s", res.OriginalMessage)
	fmt.Fprintf(&b, "\nEnhanced: %s", res.EnhancedMessage)
	if res.Subject != "" {
		fmt.Fprintf(&b, "\nSubject: %s", res.Subject)
	}
	if res.Failed > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ %d %ss failed to send", res.Failed, kind)
	}

	b.WriteString("\n\n📋 Delivery Details:")
	for _, r := range res.Results {
		status := "✅"
		if !r.Success {
			status = "❌"
		}
		fmt.Fprintf(&b, "\n%s %s", status, r.Recipient)
		if !r.Success {
			fmt.Fprintf(&b, " - %s", r.Error)
		}
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

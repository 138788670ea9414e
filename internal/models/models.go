package models

import "time"

// Action identifies the handler a parsed command is routed to.
type Action string

const (
	ActionScheduleSMSReminder   Action = "schedule_sms_reminder"
	ActionScheduleEmailReminder Action = "schedule_email_reminder"
	ActionSendMessage           Action = "send_message"
	ActionSendMessageMulti      Action = "send_message_multi"
	ActionSendEmail             Action = "send_email"
	ActionSendEmailMulti        Action = "send_email_multi"
	ActionCreateTask            Action = "create_task"
	ActionCreateAppointment     Action = "create_appointment"
	ActionLogConversation       Action = "log_conversation"
	ActionMixedMessaging        Action = "mixed_messaging"
)

// Command is the structured result of interpreting one utterance.
//
// Exactly one of Recipient/Recipients is populated for a send-shaped
// command. Subject == "" means "no subject captured; generate one
// downstream". ReminderTime is always set and strictly in the future for
// the reminder actions.
type Command struct {
	Action          Action    `json:"action"`
	Recipient       string    `json:"recipient,omitempty"`
	Recipients      []string  `json:"recipients,omitempty"`
	Message         string    `json:"message,omitempty"`
	OriginalMessage string    `json:"original_message,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	ReminderTime    time.Time `json:"reminder_time,omitempty"`

	// Diagnostic fields, not used for dispatch.
	TimeStr      string `json:"time_str,omitempty"`
	OriginalText string `json:"original_text,omitempty"`

	// Free-form fields the LLM fallback parser may fill.
	Title   string `json:"title,omitempty"`
	DueDate string `json:"due_date,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// SendResult is the outcome of one delivery attempt to one recipient.
type SendResult struct {
	Recipient          string    `json:"recipient"`
	FormattedRecipient string    `json:"formatted_recipient,omitempty"`
	Success            bool      `json:"success"`
	Type               string    `json:"type"` // "sms", "email" or "unknown"
	MessageID          string    `json:"message_id,omitempty"`
	SentAt             time.Time `json:"sent_at,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// MultiSendResult aggregates a fan-out delivery. It is produced only after
// every recipient finished; partial progress is never surfaced.
type MultiSendResult struct {
	TotalRecipients int          `json:"total_recipients"`
	Successful      int          `json:"successful_sends"`
	Failed          int          `json:"failed_sends"`
	PhoneRecipients int          `json:"phone_recipients,omitempty"`
	EmailRecipients int          `json:"email_recipients,omitempty"`
	OtherRecipients int          `json:"other_recipients,omitempty"`
	OriginalMessage string       `json:"original_message"`
	EnhancedMessage string       `json:"enhanced_message"`
	Subject         string       `json:"subject,omitempty"`
	Results         []SendResult `json:"results"`
}

// AnySuccess reports whether at least one recipient was delivered to.
func (r *MultiSendResult) AnySuccess() bool { return r.Successful > 0 }

// Tally recomputes the success and failure counters from Results. Called
// once, after the batch is complete.
func (r *MultiSendResult) Tally() {
	r.Successful, r.Failed = 0, 0
	for _, res := range r.Results {
		if res.Success {
			r.Successful++
		} else {
			r.Failed++
		}
	}
}

// ReminderRecord is the audit row kept for a scheduled reminder.
type ReminderRecord struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // "sms" or "email"
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	RunAt     time.Time `json:"run_at"`
	Status    string    `json:"status"` // "scheduled", "sent", "failed", "cancelled"
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationLog records one interpreted utterance and the reply sent back.
type ConversationLog struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Utterance string    `json:"utterance"`
	Action    string    `json:"action"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

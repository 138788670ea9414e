package storage

import (
	"time"

	"courierbot/internal/models"
)

// Storage persists the audit trail: every interpreted utterance and every
// scheduled reminder. Delivery never blocks on it; a storage error is
// logged and the message still goes out.
type Storage interface {
	SaveConversation(log *models.ConversationLog) error
	RecentConversations(userID int64, limit int) ([]*models.ConversationLog, error)

	SaveReminder(rec *models.ReminderRecord) error
	UpdateReminderStatus(id, status, lastError string) error
	PendingReminders(before time.Time) ([]*models.ReminderRecord, error)

	Close() error
}

package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"courierbot/internal/models"
)

// MemoryStorage keeps the audit trail in process memory. Used when no
// database is configured and in tests.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations []*models.ConversationLog
	reminders     map[string]*models.ReminderRecord
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		reminders: make(map[string]*models.ReminderRecord),
	}
}

func (s *MemoryStorage) SaveConversation(log *models.ConversationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	stored := *log
	s.conversations = append(s.conversations, &stored)
	return nil
}

func (s *MemoryStorage) RecentConversations(userID int64, limit int) ([]*models.ConversationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ConversationLog
	for _, c := range s.conversations {
		if c.UserID == userID {
			entry := *c
			out = append(out, &entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) SaveReminder(rec *models.ReminderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	stored := *rec
	s.reminders[rec.ID] = &stored
	return nil
}

func (s *MemoryStorage) UpdateReminderStatus(id, status, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.reminders[id]
	if !exists {
		return fmt.Errorf("reminder not found")
	}
	rec.Status = status
	rec.LastError = lastError
	return nil
}

func (s *MemoryStorage) PendingReminders(before time.Time) ([]*models.ReminderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ReminderRecord
	for _, rec := range s.reminders {
		if rec.Status == "scheduled" && !rec.RunAt.After(before) {
			entry := *rec
			out = append(out, &entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	return out, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

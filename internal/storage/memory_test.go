package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courierbot/internal/models"
)

func TestMemoryConversations(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	base := time.Date(2025, time.March, 11, 10, 0, 0, 0, time.UTC)
	for i, utterance := range []string{"first", "second", "third"} {
		require.NoError(t, s.SaveConversation(&models.ConversationLog{
			ID:        utterance,
			UserID:    42,
			Utterance: utterance,
			Action:    "send_message",
			Response:  "ok",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.SaveConversation(&models.ConversationLog{
		ID: "other", UserID: 7, Utterance: "other user", Action: "send_email", Response: "ok",
	}))

	logs, err := s.RecentConversations(42, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "third", logs[0].Utterance)
	assert.Equal(t, "second", logs[1].Utterance)
}

func TestMemoryReminderLifecycle(t *testing.T) {
	s := NewMemoryStorage()
	defer s.Close()

	runAt := time.Now().Add(time.Hour)
	rec := &models.ReminderRecord{
		ID:        "r1",
		Kind:      "sms",
		Recipient: "+15550000001",
		Message:   "call mom",
		RunAt:     runAt,
		Status:    "scheduled",
	}
	require.NoError(t, s.SaveReminder(rec))
	assert.False(t, rec.CreatedAt.IsZero())

	pending, err := s.PendingReminders(runAt.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r1", pending[0].ID)

	none, err := s.PendingReminders(runAt.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, s.UpdateReminderStatus("r1", "sent", ""))
	pending, err = s.PendingReminders(runAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Error(t, s.UpdateReminderStatus("missing", "sent", ""))
}

package dispatch

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"courierbot/internal/delivery"
	"courierbot/internal/models"
	"courierbot/internal/scheduler"
	"courierbot/internal/storage"
)

type stubSMS struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *stubSMS) SendSMS(ctx context.Context, to, body string) (*models.SendResult, error) {
	if s.fail {
		return nil, context.DeadlineExceeded
	}
	s.mu.Lock()
	s.sent = append(s.sent, to+": "+body)
	s.mu.Unlock()
	return &models.SendResult{Recipient: to, Success: true, Type: "sms", MessageID: "SM123", SentAt: time.Now()}, nil
}

func (s *stubSMS) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type stubEmail struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubEmail) SendEmail(ctx context.Context, to, subject, body string) (*models.SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, to+"|"+subject+"|"+body)
	s.mu.Unlock()
	return &models.SendResult{Recipient: to, Success: true, Type: "email", SentAt: time.Now()}, nil
}

// passthroughEnhancer leaves messages untouched so assertions stay literal.
type passthroughEnhancer struct{}

func (passthroughEnhancer) Enhance(ctx context.Context, message string) string { return message }
func (passthroughEnhancer) SuggestSubject(ctx context.Context, message string) string {
	return "Quick update"
}
func (passthroughEnhancer) ParseCommand(ctx context.Context, text string) (*models.Command, error) {
	return nil, context.Canceled
}

type fixture struct {
	d     *Dispatcher
	sms   *stubSMS
	email *stubEmail
	store *storage.MemoryStorage
	sched *scheduler.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sms := &stubSMS{}
	email := &stubEmail{}
	store := storage.NewMemoryStorage()
	sched := scheduler.New(scheduler.Config{Workers: 1}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sched.Start(ctx)
	t.Cleanup(sched.Stop)

	fanout := delivery.NewFanout(sms, email, 2, nil)
	d := New(sms, email, fanout, passthroughEnhancer{}, sched, store, "+15559990000", zap.NewNop())
	return &fixture{d: d, sms: sms, email: email, store: store, sched: sched}
}

func TestDispatchUnknownAction(t *testing.T) {
	f := newFixture(t)
	out := f.d.Dispatch(context.Background(), &models.Command{Action: "make_coffee"})
	assert.Equal(t, "Unknown action: make_coffee", out)
}

func TestSendMessageToPhone(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:    models.ActionSendMessage,
		Recipient: "+15550000001",
		Message:   "running late",
	})

	assert.Contains(t, out, "Professional SMS sent to +15550000001")
	assert.Contains(t, out, "Message ID: SM123")
	require.Len(t, f.sms.sent, 1)
}

func TestSendMessageToNameFallsBackToEnhancement(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:    models.ActionSendMessage,
		Recipient: "john",
		Message:   "running late",
	})

	assert.Contains(t, out, "Enhanced message for john")
	assert.Empty(t, f.sms.sent)
}

func TestSendEmailGeneratesSubject(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:    models.ActionSendEmail,
		Recipient: "ana@example.com",
		Message:   "the report is ready",
	})

	assert.Contains(t, out, "Professional email sent to ana@example.com")
	assert.Contains(t, out, "Subject: Quick update")
	require.Len(t, f.email.sent, 1)
	assert.True(t, strings.HasPrefix(f.email.sent[0], "ana@example.com|Quick update|"))
}

func TestSendMessageMultiSummarizes(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:     models.ActionSendMessageMulti,
		Recipients: []string{"+15550000001", "+15550000002", "bob"},
		Message:    "meeting moved",
	})

	assert.Contains(t, out, "sent to 2/3 recipients")
	assert.Contains(t, out, "1 messages failed to send")
	assert.Contains(t, out, "bob")
}

func TestScheduleSMSReminderPersistsAndFires(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:       models.ActionScheduleSMSReminder,
		Recipient:    "me",
		Message:      "take out the trash",
		ReminderTime: time.Now().Add(40 * time.Millisecond),
	})

	assert.Contains(t, out, "SMS reminder scheduled!")
	assert.Contains(t, out, "To: me")

	require.Eventually(t, func() bool { return f.sms.sentCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, f.sms.sent[0], "+15559990000")

	// Audit record flips to sent once the job runs.
	require.Eventually(t, func() bool {
		pending, err := f.store.PendingReminders(time.Now().Add(time.Hour))
		return err == nil && len(pending) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleSMSReminderRejectsPast(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:       models.ActionScheduleSMSReminder,
		Recipient:    "+15550000001",
		Message:      "too late",
		ReminderTime: time.Now().Add(-time.Minute),
	})

	assert.Contains(t, out, "Failed to schedule SMS reminder")
	assert.Empty(t, f.sms.sent)
}

func TestScheduleEmailReminderValidatesAddress(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:       models.ActionScheduleEmailReminder,
		Recipient:    "not-an-address",
		Message:      "pay rent",
		ReminderTime: time.Now().Add(time.Hour),
	})

	assert.Equal(t, "❌ Invalid email address format: not-an-address", out)
}

func TestMixedMessagingRoutes(t *testing.T) {
	f := newFixture(t)

	out := f.d.Dispatch(context.Background(), &models.Command{
		Action:     models.ActionMixedMessaging,
		Recipients: []string{"+15550000001", "ana@example.com"},
		Message:    "server is back",
	})

	assert.Contains(t, out, "sent to 2/2 recipients")
	assert.Len(t, f.sms.sent, 1)
	assert.Len(t, f.email.sent, 1)
}

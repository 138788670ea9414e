package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courierbot/internal/models"
	"courierbot/internal/timeparse"
)

func newTestParser(t *testing.T) (*Parser, time.Time) {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	now := time.Date(2025, time.March, 11, 10, 30, 0, 0, loc)
	p := New(timeparse.New(loc), nil)
	p.now = func() time.Time { return now }
	return p, now
}

func TestInterpretReminder(t *testing.T) {
	p, now := newTestParser(t)

	cmd, ok := p.Interpret("Remind me to call John in 30 minutes")
	require.True(t, ok)
	assert.Equal(t, models.ActionScheduleSMSReminder, cmd.Action)
	assert.Equal(t, "me", cmd.Recipient)
	assert.Equal(t, "call john", cmd.Message)
	assert.Equal(t, "30 minutes", cmd.TimeStr)
	assert.Equal(t, now.Add(30*time.Minute), cmd.ReminderTime)
}

func TestInterpretReminderExplicitRecipient(t *testing.T) {
	p, now := newTestParser(t)

	cmd, ok := p.Interpret("text John at 3pm saying don't forget the keys")
	require.True(t, ok)
	assert.Equal(t, models.ActionScheduleSMSReminder, cmd.Action)
	assert.Equal(t, "john", cmd.Recipient)
	assert.Equal(t, "don't forget the keys", cmd.Message)

	loc := now.Location()
	assert.Equal(t, time.Date(2025, time.March, 11, 15, 0, 0, 0, loc), cmd.ReminderTime)
}

func TestInterpretReminderTomorrow(t *testing.T) {
	p, now := newTestParser(t)

	cmd, ok := p.Interpret("remind me to submit the report tomorrow")
	require.True(t, ok)
	assert.Equal(t, models.ActionScheduleSMSReminder, cmd.Action)
	assert.Equal(t, "submit the report", cmd.Message)
	assert.Equal(t, time.Date(2025, time.March, 12, 9, 0, 0, 0, now.Location()), cmd.ReminderTime)
}

func TestInterpretEmailReminder(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("text john@example.com in 2 hours saying invoice is due")
	require.True(t, ok)
	assert.Equal(t, models.ActionScheduleEmailReminder, cmd.Action)
	assert.Equal(t, "john@example.com", cmd.Recipient)
}

func TestInterpretSingleSMS(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("Text John saying hello period how are you question mark")
	require.True(t, ok)
	assert.Equal(t, models.ActionSendMessage, cmd.Action)
	assert.Equal(t, "john", cmd.Recipient)
	assert.Equal(t, "hello. how are you?", cmd.Message)
}

func TestInterpretMultiSMSKeepsTimingInBody(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("text John and Mary saying the meeting moved to 3pm")
	require.True(t, ok)
	assert.Equal(t, models.ActionSendMessageMulti, cmd.Action)
	assert.Equal(t, []string{"john", "mary"}, cmd.Recipients)
	assert.Equal(t, "the meeting moved to 3pm", cmd.Message)
}

func TestInterpretSingleEmail(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("email john@example.com saying the report is ready")
	require.True(t, ok)
	assert.Equal(t, models.ActionSendEmail, cmd.Action)
	assert.Equal(t, "john@example.com", cmd.Recipient)
	assert.Equal(t, "the report is ready", cmd.Message)
	assert.Empty(t, cmd.Subject)
}

func TestInterpretEmailWithSubject(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("email john@example.com with subject weekly update saying numbers attached")
	require.True(t, ok)
	assert.Equal(t, models.ActionSendEmail, cmd.Action)
	assert.Equal(t, "weekly update", cmd.Subject)
	assert.Equal(t, "numbers attached", cmd.Message)
}

func TestInterpretMultiEmail(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("email john@x.com and mary@y.com saying status update")
	require.True(t, ok)
	assert.Equal(t, models.ActionSendEmailMulti, cmd.Action)
	assert.Equal(t, []string{"john@x.com", "mary@y.com"}, cmd.Recipients)
}

func TestMultiEmailDemotesToSingle(t *testing.T) {
	p, _ := newTestParser(t)

	cmd := p.ExtractEmailMulti("email john@example.com saying hi")
	require.NotNil(t, cmd)
	assert.Equal(t, models.ActionSendEmail, cmd.Action)
	assert.Equal(t, "john@example.com", cmd.Recipient)
	assert.Empty(t, cmd.Recipients)
}

func TestInterpretMixedChannels(t *testing.T) {
	p, _ := newTestParser(t)

	cmd, ok := p.Interpret("text john@example.com and +15551234567 saying server is back up")
	require.True(t, ok)
	assert.Equal(t, models.ActionMixedMessaging, cmd.Action)
	assert.Len(t, cmd.Recipients, 2)
}

func TestSMSSuppressedByTimingLanguage(t *testing.T) {
	p, _ := newTestParser(t)

	// Timing in the preamble means "schedule", not "send now".
	assert.Nil(t, p.ExtractSMS("text john tomorrow saying happy birthday"))
	assert.Nil(t, p.ExtractSMS("text john at 5pm saying wrap it up"))

	// Timing inside the message body does not suppress.
	assert.NotNil(t, p.ExtractSMS("text john saying lunch moved to 1pm"))
}

func TestInterpretUnrecognized(t *testing.T) {
	p, _ := newTestParser(t)

	for _, text := range []string{
		"what's the weather like",
		"",
		"hello there",
	} {
		cmd, ok := p.Interpret(text)
		assert.False(t, ok, "text %q", text)
		assert.Nil(t, cmd)
	}
}

func TestCleanVoiceMessage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello period", "hello."},
		{"one comma two", "one, two"},
		{"really question mark", "really?"},
		{"wow exclamation mark", "wow!"},
		{"call John period then go home comma ok", "call John. then go home, ok"},
		{"no artifacts here", "no artifacts here"},
		{"  padded period  ", "padded."},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CleanVoiceMessage(tc.in), "input %q", tc.in)
	}
}

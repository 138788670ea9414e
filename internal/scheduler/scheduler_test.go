package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRunningService(t *testing.T) *Service {
	t.Helper()
	s := New(Config{Workers: 2}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	s.Start(ctx)
	t.Cleanup(s.Stop)
	return s
}

func TestScheduleFiresOnce(t *testing.T) {
	s := newRunningService(t)

	var fired atomic.Int32
	id, err := s.Schedule("", "ping", time.Now().Add(30*time.Millisecond), func(ctx context.Context) error {
		fired.Add(1)
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		e, ok := s.Lookup(id)
		return ok && e.Status == StatusSent
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestScheduleRejectsPast(t *testing.T) {
	s := newRunningService(t)

	_, err := s.Schedule("", "late", time.Now().Add(-time.Minute), func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in the future")
}

func TestScheduleRequiresStart(t *testing.T) {
	s := New(Config{}, zap.NewNop())
	_, err := s.Schedule("", "early", time.Now().Add(time.Hour), func(ctx context.Context) error { return nil })
	require.Error(t, err)
}

func TestScheduleRejectsDuplicateID(t *testing.T) {
	s := newRunningService(t)

	noop := func(ctx context.Context) error { return nil }
	_, err := s.Schedule("job-1", "first", time.Now().Add(time.Hour), noop)
	require.NoError(t, err)
	_, err = s.Schedule("job-1", "second", time.Now().Add(time.Hour), noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already scheduled")
}

func TestCancelPendingJob(t *testing.T) {
	s := newRunningService(t)

	var fired atomic.Int32
	id, err := s.Schedule("", "cancel-me", time.Now().Add(time.Hour), func(ctx context.Context) error {
		fired.Add(1)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, s.Cancel(id))
	assert.False(t, s.Cancel(id), "second cancel must report false")

	e, ok := s.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, e.Status)
	assert.Zero(t, fired.Load())
	assert.Empty(t, s.Pending())
}

func TestFailedJobRecordsError(t *testing.T) {
	s := newRunningService(t)

	id, err := s.Schedule("", "boom", time.Now().Add(20*time.Millisecond), func(ctx context.Context) error {
		return context.DeadlineExceeded
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		e, ok := s.Lookup(id)
		return ok && e.Status == StatusFailed
	}, 2*time.Second, 10*time.Millisecond)

	e, _ := s.Lookup(id)
	assert.Contains(t, e.Error, "deadline exceeded")
}

func TestPendingSortedBySoonest(t *testing.T) {
	s := newRunningService(t)

	noop := func(ctx context.Context) error { return nil }
	_, err := s.Schedule("", "later", time.Now().Add(2*time.Hour), noop)
	require.NoError(t, err)
	_, err = s.Schedule("", "sooner", time.Now().Add(time.Hour), noop)
	require.NoError(t, err)

	pending := s.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "sooner", pending[0].Name)
	assert.Equal(t, "later", pending[1].Name)
}

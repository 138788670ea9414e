// Package scheduler runs one-shot jobs at a wall-clock instant. Each job is
// armed with a timer and executed on a small worker pool, so a slow delivery
// never delays another reminder firing at the same moment.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	Workers   int
	QueueSize int
	Timezone  string // IANA TZ, e.g. "America/Chicago"
}

// Entry statuses.
const (
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Entry is the observable state of one scheduled job.
type Entry struct {
	ID      string
	Name    string
	RunAt   time.Time
	Status  string
	Error   string
	Created time.Time
}

type task struct {
	id   string
	name string
	run  func(ctx context.Context) error
}

type Service struct {
	mu  sync.Mutex
	log *zap.Logger
	cfg Config
	loc *time.Location

	queue  chan task
	stopCh chan struct{}

	tmu    sync.Mutex
	timers map[string]*time.Timer

	emu     sync.Mutex
	entries map[string]*Entry
}

func New(cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:     cfg,
		log:     log,
		timers:  map[string]*time.Timer{},
		entries: map[string]*Entry{},
	}
}

// Location returns the scheduler's timezone, resolving it on first use.
func (s *Service) Location() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocationLocked()
}

func (s *Service) loadLocationLocked() *time.Location {
	if s.loc != nil {
		return s.loc
	}
	if s.cfg.Timezone == "" {
		s.loc = time.Local
		return s.loc
	}
	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		s.log.Warn("invalid timezone, falling back to Local", zap.String("tz", s.cfg.Timezone), zap.Error(err))
		loc = time.Local
	}
	s.loc = loc
	return s.loc
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 2
	}
	size := s.cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	s.queue = make(chan task, size)

	for i := 0; i < workers; i++ {
		go s.worker(ctx, s.stopCh, s.queue)
	}
	s.log.Info("scheduler started",
		zap.Int("workers", workers),
		zap.String("tz", s.loadLocationLocked().String()))
}

func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	s.queue = nil
	s.mu.Unlock()

	s.tmu.Lock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = map[string]*time.Timer{}
	s.tmu.Unlock()

	s.log.Info("scheduler stopped")
}

// Schedule arms job to run once at runAt. runAt must be strictly in the
// future; the job owns everything it needs via its closure. An empty id
// gets a generated one; the id doubles as the cancellation handle, so
// callers that persist the job pass their record's id.
func (s *Service) Schedule(id, name string, runAt time.Time, job func(ctx context.Context) error) (string, error) {
	s.mu.Lock()
	running := s.stopCh != nil
	s.mu.Unlock()
	if !running {
		return "", errors.New("scheduler not started")
	}

	delay := time.Until(runAt)
	if delay <= 0 {
		return "", fmt.Errorf("run time %s is not in the future", runAt.Format(time.RFC3339))
	}

	if id == "" {
		id = uuid.New().String()
	}
	s.emu.Lock()
	if _, exists := s.entries[id]; exists {
		s.emu.Unlock()
		return "", fmt.Errorf("job %s already scheduled", id)
	}
	s.entries[id] = &Entry{
		ID:      id,
		Name:    name,
		RunAt:   runAt,
		Status:  StatusScheduled,
		Created: time.Now(),
	}
	s.emu.Unlock()

	s.tmu.Lock()
	s.timers[id] = time.AfterFunc(delay, func() {
		s.tmu.Lock()
		delete(s.timers, id)
		s.tmu.Unlock()
		s.enqueue(task{id: id, name: name, run: job})
	})
	s.tmu.Unlock()

	s.log.Info("job scheduled",
		zap.String("id", id),
		zap.String("name", name),
		zap.Time("run_at", runAt))
	return id, nil
}

// Cancel stops a pending job. It reports false when the job already fired,
// finished or never existed.
func (s *Service) Cancel(id string) bool {
	s.tmu.Lock()
	t, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
	}
	s.tmu.Unlock()
	if !ok || !t.Stop() {
		return false
	}

	s.emu.Lock()
	if e := s.entries[id]; e != nil {
		e.Status = StatusCancelled
	}
	s.emu.Unlock()

	s.log.Info("job cancelled", zap.String("id", id))
	return true
}

// Pending returns the entries still waiting to fire, soonest first.
func (s *Service) Pending() []Entry {
	s.emu.Lock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Status == StatusScheduled {
			out = append(out, *e)
		}
	}
	s.emu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RunAt.Before(out[j].RunAt) })
	return out
}

// Lookup returns a copy of the entry for id.
func (s *Service) Lookup(id string) (Entry, bool) {
	s.emu.Lock()
	defer s.emu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (s *Service) enqueue(t task) {
	s.mu.Lock()
	q := s.queue
	s.mu.Unlock()
	if q == nil {
		s.log.Debug("scheduler not running, dropping job", zap.String("job", t.name))
		return
	}
	select {
	case q <- t:
	default:
		s.log.Warn("scheduler queue full, dropping job",
			zap.String("job", t.name),
			zap.Int("queue_cap", cap(q)))
		s.finish(t.id, errors.New("scheduler queue full"))
	}
}

func (s *Service) worker(ctx context.Context, stopCh <-chan struct{}, queue <-chan task) {
	for {
		// Fast-exit check so a closed stopCh wins over queued work.
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case t := <-queue:
			s.execOne(ctx, t)
		}
	}
}

func (s *Service) execOne(ctx context.Context, t task) {
	start := time.Now()
	err := t.run(ctx)
	s.finish(t.id, err)

	if err != nil {
		s.log.Warn("job failed",
			zap.String("job", t.name),
			zap.Duration("dur", time.Since(start)),
			zap.Error(err))
		return
	}
	s.log.Info("job completed",
		zap.String("job", t.name),
		zap.Duration("dur", time.Since(start)))
}

func (s *Service) finish(id string, err error) {
	s.emu.Lock()
	defer s.emu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
		return
	}
	e.Status = StatusSent
}

// Package reminder polls the task collection and raises notifications for
// tasks whose due instant is close to now.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ticklite/internal/notify"
	"ticklite/internal/task"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultWindow   = 60 * time.Second

	titlePrefix = "Task due soon: "
)

// Source yields a consistent copy of the task collection.
type Source interface {
	Snapshot() []task.Task
}

// Scheduler checks Source every interval. A task fires while its due instant
// lies in (now-window, now+window]. With the default settings the same due
// event fires on several consecutive ticks; WithDedupe suppresses repeats.
type Scheduler struct {
	src      Source
	sink     notify.Sink
	interval time.Duration
	window   time.Duration
	now      func() time.Time
	log      *slog.Logger

	dedupe bool
	fired  map[string]time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Scheduler)

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithWindow(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDedupe makes each (task, due) pair fire at most once.
func WithDedupe(on bool) Option {
	return func(s *Scheduler) { s.dedupe = on }
}

func New(src Source, sink notify.Sink, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:      src,
		sink:     sink,
		interval: DefaultInterval,
		window:   DefaultWindow,
		now:      time.Now,
		log:      slog.Default(),
		fired:    map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick runs one check at now and returns how many notifications were sent.
func (s *Scheduler) Tick(now time.Time) int {
	sent := 0
	open := make(map[string]struct{})
	for _, t := range s.src.Snapshot() {
		if t.Completed || t.Due == nil {
			continue
		}
		open[t.ID] = struct{}{}
		delta := t.Due.Sub(now)
		if delta <= -s.window || delta > s.window {
			continue
		}
		if s.dedupe {
			if prev, ok := s.fired[t.ID]; ok && prev.Equal(*t.Due) {
				continue
			}
			s.fired[t.ID] = *t.Due
		}
		s.sink.Notify(titlePrefix+t.Title, t.Notes)
		sent++
	}
	// Forget tasks that were deleted, completed or lost their due date.
	for id := range s.fired {
		if _, ok := open[id]; !ok {
			delete(s.fired, id)
		}
	}
	if sent > 0 {
		s.log.Debug("reminders sent", "count", sent)
	}
	return sent
}

// Run ticks until ctx is cancelled. The first check happens one interval
// after Run starts.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info("reminder scheduler started", "interval", s.interval, "window", s.window)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				continue
			}
			s.Tick(s.now())
		}
	}
}

// Start runs the scheduler in the background. Calling Start on a running
// scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		s.Run(ctx)
	}(s.done)
}

// Stop cancels the background loop and waits for it to exit. No tick runs
// after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

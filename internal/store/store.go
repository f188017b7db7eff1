package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ticklite/internal/task"
)

var (
	// ErrNoState is returned by a Repository that has never saved anything.
	ErrNoState = errors.New("no saved state")
	// ErrMalformed is returned by a Repository whose saved state cannot be
	// decoded.
	ErrMalformed = errors.New("malformed saved task")

	ErrNotFound  = errors.New("task not found")
	ErrAmbiguous = errors.New("ambiguous task id")
)

// Repository is the durable side of the store. Load returns ErrNoState when
// nothing was ever saved and wraps ErrMalformed when the saved state cannot
// be decoded. Any other Load error is treated as the state being
// unavailable, not lost.
type Repository interface {
	Load(ctx context.Context) ([]task.Task, error)
	Save(ctx context.Context, tasks []task.Task) error
}

// Store owns the task collection. All mutations are serialised and each one
// schedules a save of the full collection in the background.
type Store struct {
	mu    sync.RWMutex
	tasks []task.Task
	seq   uint64

	repo  Repository
	saver *saver
	now   func() time.Time
	newID func() string
	seed  []task.Draft
	log   *slog.Logger

	subMu sync.Mutex
	subs  map[chan struct{}]struct{}
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSeed sets the drafts used when the repository holds no usable state.
func WithSeed(drafts []task.Draft) Option {
	return func(s *Store) { s.seed = drafts }
}

// Open builds a store and loads its initial state from repo. A nil repo
// keeps everything in memory. Missing or malformed state falls back to the
// seed (or an empty collection). Any other load failure is returned and
// nothing is written to repo.
func Open(ctx context.Context, repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
		log:   slog.Default(),
		subs:  map[chan struct{}]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	if repo != nil {
		s.saver = newSaver(repo, s.log)
		if s.seq > 0 {
			s.saver.submit(s.seq, s.cloneLocked())
		}
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	if s.repo == nil {
		s.applySeed()
		return nil
	}
	loaded, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		s.log.Debug("no saved tasks, starting fresh", "seed", len(s.seed))
		s.applySeed()
		return nil
	case errors.Is(err, ErrMalformed):
		s.log.Warn("discarding unreadable saved tasks", "error", err)
		s.applySeed()
		return nil
	case err != nil:
		return fmt.Errorf("load tasks: %w", err)
	}

	seen := make(map[string]struct{}, len(loaded))
	s.tasks = make([]task.Task, 0, len(loaded))
	for _, t := range loaded {
		if _, dup := seen[t.ID]; dup || t.ID == "" {
			s.log.Warn("dropping saved task with duplicate or empty id", "id", t.ID, "title", t.Title)
			continue
		}
		seen[t.ID] = struct{}{}
		s.tasks = append(s.tasks, t.Clone())
	}
	s.log.Debug("loaded tasks", "count", len(s.tasks))
	return nil
}

func (s *Store) applySeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.tasks = make([]task.Task, 0, len(s.seed))
	for _, d := range s.seed {
		if t, ok := s.build(d, now); ok {
			s.tasks = append(s.tasks, t)
		}
	}
	if len(s.seed) > 0 {
		s.commitLocked()
	}
}

// build turns a draft into a task; the caller holds the lock.
func (s *Store) build(d task.Draft, now time.Time) (task.Task, bool) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return task.Task{}, false
	}
	t := task.Task{
		ID:        s.freshIDLocked(),
		Title:     title,
		Notes:     strings.TrimSpace(d.Notes),
		Priority:  d.Priority,
		Tags:      append([]string{}, d.Tags...),
		Repeat:    d.Repeat,
		CreatedAt: now,
	}
	if d.Due != nil {
		due := *d.Due
		t.Due = &due
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.Repeat == "" {
		t.Repeat = task.RepeatNone
	}
	return t, true
}

func (s *Store) freshIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// commitLocked records a new revision and hands it to the saver.
func (s *Store) commitLocked() {
	s.seq++
	if s.saver != nil {
		s.saver.submit(s.seq, s.cloneLocked())
	}
	s.broadcast()
}

func (s *Store) cloneLocked() []task.Task {
	out := make([]task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) prependLocked(t task.Task) {
	s.tasks = append([]task.Task{t}, s.tasks...)
}

// Add creates a task from d and puts it first. Drafts with a blank title are
// rejected.
func (s *Store) Add(d task.Draft) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.build(d, s.now())
	if !ok {
		s.log.Debug("rejected task with empty title")
		return task.Task{}, false
	}
	s.prependLocked(t)
	s.commitLocked()
	return t.Clone(), true
}

// ToggleComplete flips the completion state of id. Completing a repeating
// task with a due date also inserts its next open occurrence, in the same
// revision. Un-completing never touches siblings already spawned.
func (s *Store) ToggleComplete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	now := s.now()
	t := &s.tasks[i]
	if t.Completed {
		t.Completed = false
		t.CompletedAt = nil
		s.commitLocked()
		return true
	}

	// Only draw an id when a sibling will actually be created.
	var sibling task.Task
	spawn := task.NextDue(t.Due, t.Repeat) != nil
	if spawn {
		sibling, _ = t.Recur(s.freshIDLocked(), now)
	}
	completedAt := now
	t.Completed = true
	t.CompletedAt = &completedAt
	if spawn {
		s.prependLocked(sibling)
		s.log.Debug("spawned next occurrence", "from", id, "id", sibling.ID, "due", sibling.Due)
	}
	s.commitLocked()
	return true
}

// Snooze pushes the due date of id forward by days fixed 24h periods. A task
// without a due date becomes due days from now.
func (s *Store) Snooze(id string, days int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	base := s.now()
	if s.tasks[i].Due != nil {
		base = *s.tasks[i].Due
	}
	due := task.AddDays(base, days)
	s.tasks[i].Due = &due
	s.commitLocked()
	return true
}

// Edit merges p into id.
func (s *Store) Edit(id string, p task.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	p.Apply(&s.tasks[i], s.now())
	s.commitLocked()
	return true
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.commitLocked()
	return true
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = []task.Task{}
	s.commitLocked()
}

// Snapshot returns a deep copy of the collection in presentation order.
func (s *Store) Snapshot() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneLocked()
}

func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Resolve expands a unique id prefix to the full id.
func (s *Store) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := ""
	for _, t := range s.tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %q", ErrAmbiguous, prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFound, prefix)
	}
	return match, nil
}

type Stats struct {
	Total     int
	Pending   int
	Completed int
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// Revision is the sequence number of the latest mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Subscribe returns a channel that receives a value after mutations. Bursts
// coalesce into a single wake-up. Call cancel to stop receiving.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
	}
}

func (s *Store) broadcast() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Flush waits until the latest revision has been handed to the repository.
func (s *Store) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.wait(ctx, s.Revision())
}

// Close flushes pending saves and stops the background saver.
func (s *Store) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	err := s.Flush(ctx)
	s.saver.stop()
	return err
}

package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ticklite/internal/task"
)

const saveTimeout = 10 * time.Second

type revision struct {
	seq   uint64
	tasks []task.Task
}

// saver writes revisions on its own goroutine. Only the newest pending
// revision is kept, and a revision older than one already written is
// dropped, so the repository always converges on the latest mutation.
type saver struct {
	repo Repository
	log  *slog.Logger

	mu       sync.Mutex
	pending  *revision
	written  uint64
	progress chan struct{}

	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newSaver(repo Repository, log *slog.Logger) *saver {
	sv := &saver{
		repo:     repo,
		log:      log,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go sv.run()
	return sv
}

func (sv *saver) submit(seq uint64, tasks []task.Task) {
	sv.mu.Lock()
	if seq > sv.written && (sv.pending == nil || seq > sv.pending.seq) {
		sv.pending = &revision{seq: seq, tasks: tasks}
	}
	sv.mu.Unlock()
	select {
	case sv.wake <- struct{}{}:
	default:
	}
}

func (sv *saver) run() {
	defer close(sv.stopped)
	for {
		select {
		case <-sv.wake:
			sv.drain()
		case <-sv.quit:
			sv.drain()
			return
		}
	}
}

func (sv *saver) drain() {
	for {
		sv.mu.Lock()
		rev := sv.pending
		sv.pending = nil
		sv.mu.Unlock()
		if rev == nil {
			return
		}
		sv.write(rev)
	}
}

func (sv *saver) write(rev *revision) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := sv.repo.Save(ctx, rev.tasks); err != nil {
		sv.log.Error("failed to save tasks", "revision", rev.seq, "error", err)
	} else {
		sv.log.Debug("saved tasks", "revision", rev.seq, "count", len(rev.tasks))
	}

	sv.mu.Lock()
	if rev.seq > sv.written {
		sv.written = rev.seq
	}
	close(sv.progress)
	sv.progress = make(chan struct{})
	sv.mu.Unlock()
}

// wait blocks until revision seq (or a newer one) has been attempted.
func (sv *saver) wait(ctx context.Context, seq uint64) error {
	for {
		sv.mu.Lock()
		if sv.written >= seq {
			sv.mu.Unlock()
			return nil
		}
		ch := sv.progress
		sv.mu.Unlock()

		select {
		case <-ch:
		case <-sv.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (sv *saver) stop() {
	sv.once.Do(func() { close(sv.quit) })
	<-sv.stopped
}

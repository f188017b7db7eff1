// Package notify delivers reminder notifications.
package notify

import (
	"log/slog"
	"sync"
)

// Sink receives notifications. Implementations must not block for long;
// delivery is best effort.
type Sink interface {
	Notify(title, body string)
}

type SinkFunc func(title, body string)

func (f SinkFunc) Notify(title, body string) { f(title, body) }

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(title, body string) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("reminder", "title", title, "body", body)
}

// Gate forwards notifications only while permission is granted.
type Gate struct {
	mu      sync.RWMutex
	sink    Sink
	granted bool
}

func NewGate(sink Sink, granted bool) *Gate {
	return &Gate{sink: sink, granted: granted}
}

func (g *Gate) SetGranted(granted bool) {
	g.mu.Lock()
	g.granted = granted
	g.mu.Unlock()
}

func (g *Gate) Granted() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.granted
}

func (g *Gate) Notify(title, body string) {
	if g.sink == nil || !g.Granted() {
		return
	}
	g.sink.Notify(title, body)
}

// Fanout sends each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(title, body string) {
	for _, s := range f {
		if s != nil {
			s.Notify(title, body)
		}
	}
}

package activity

import (
	"sync"
	"time"

	"github.com/mcules/motor-speed/internal/artifact"
)

type EventType string

const (
	EventArtifactLoaded   EventType = "artifact_loaded"
	EventArtifactMissing  EventType = "artifact_missing"
	EventArtifactInvalid  EventType = "artifact_invalid"
	EventSchemaMismatch   EventType = "schema_mismatch"
	EventPredictBlocked   EventType = "prediction_blocked"
	EventArtifactsCleared EventType = "artifacts_cleared"
)

type Event struct {
	At       time.Time
	Type     EventType
	Artifact string
	Path     string
	Note     string
}

// Log keeps the most recent events in a fixed-size ring.
type Log struct {
	mu   sync.RWMutex
	buf  []Event
	next int
	full bool
}

func New(size int) *Log {
	if size <= 0 {
		size = 200
	}
	return &Log{
		buf: make([]Event, size),
	}
}

func (l *Log) Add(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf[l.next] = e
	l.next++
	if l.next >= len(l.buf) {
		l.next = 0
		l.full = true
	}
}

// AddLoad records an artifact load attempt. It matches artifact.Loader.Notify.
func (l *Log) AddLoad(r artifact.Result) {
	if r.Status == artifact.StatusSkipped {
		return
	}
	l.Add(Event{
		At:       r.At,
		Type:     loadEventType(r.Status),
		Artifact: r.Kind.String(),
		Path:     r.Path,
		Note:     r.Message,
	})
}

func loadEventType(s artifact.Status) EventType {
	switch s {
	case artifact.StatusLoaded:
		return EventArtifactLoaded
	case artifact.StatusMissing:
		return EventArtifactMissing
	case artifact.StatusMismatch:
		return EventSchemaMismatch
	default:
		return EventArtifactInvalid
	}
}

// List returns the buffered events, newest first.
func (l *Log) List() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.full && l.next == 0 {
		return nil
	}

	var out []Event
	if l.full {
		out = make([]Event, 0, len(l.buf))
		out = append(out, l.buf[l.next:]...)
		out = append(out, l.buf[:l.next]...)
	} else {
		out = append([]Event(nil), l.buf[:l.next]...)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

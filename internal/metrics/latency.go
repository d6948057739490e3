package metrics

import (
	"sync"
	"time"
)

// Pipeline stages tracked by the server.
const (
	StagePredict = "predict"
	StageMemoHit = "memo_hit"
)

type StageLatency struct {
	// EWMA of duration in microseconds.
	EWMAus float64

	// Counters (rolling since start).
	OK    uint64
	Error uint64

	// Last observed duration.
	Last time.Duration

	// Timestamp of last observation.
	LastAt time.Time
}

type LatencyTracker struct {
	mu     sync.RWMutex
	alpha  float64
	stages map[string]*StageLatency
}

// NewLatencyTracker creates a tracker with EWMA smoothing factor alpha.
// Typical alpha: 0.1..0.3 (higher reacts faster).
func NewLatencyTracker(alpha float64) *LatencyTracker {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.2
	}
	return &LatencyTracker{
		alpha:  alpha,
		stages: map[string]*StageLatency{},
	}
}

// Since records the time elapsed since start for stage.
func (t *LatencyTracker) Since(stage string, start time.Time, err error) {
	t.observe(stage, time.Since(start), err == nil)
}

func (t *LatencyTracker) observe(stage string, d time.Duration, ok bool) {
	if t == nil {
		return
	}
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stages[stage]
	if s == nil {
		s = &StageLatency{}
		t.stages[stage] = s
	}

	us := float64(d.Microseconds())
	if us < 0 {
		us = 0
	}

	if s.OK+s.Error == 0 {
		s.EWMAus = us
	} else {
		s.EWMAus = (t.alpha * us) + ((1.0 - t.alpha) * s.EWMAus)
	}

	s.Last = d
	s.LastAt = now
	if ok {
		s.OK++
	} else {
		s.Error++
	}
}

// Snapshot copies every stage; nil when the tracker is nil.
func (t *LatencyTracker) Snapshot() map[string]StageLatency {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]StageLatency, len(t.stages))
	for k, v := range t.stages {
		out[k] = *v
	}
	return out
}

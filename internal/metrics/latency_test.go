package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyTrackerEWMA(t *testing.T) {
	tr := NewLatencyTracker(0.5)

	tr.observe(StagePredict, 100*time.Microsecond, true)
	s := tr.Snapshot()[StagePredict]
	assert.Equal(t, 100.0, s.EWMAus)

	tr.observe(StagePredict, 300*time.Microsecond, true)
	s = tr.Snapshot()[StagePredict]
	assert.Equal(t, 200.0, s.EWMAus)
	assert.Equal(t, uint64(2), s.OK)
	assert.Equal(t, 300*time.Microsecond, s.Last)

	tr.observe(StagePredict, 0, false)
	s = tr.Snapshot()[StagePredict]
	assert.Equal(t, 100.0, s.EWMAus)
	assert.Equal(t, uint64(1), s.Error)
}

func TestLatencyTrackerAlphaDefault(t *testing.T) {
	assert.Equal(t, 0.2, NewLatencyTracker(0).alpha)
	assert.Equal(t, 0.2, NewLatencyTracker(1).alpha)
}

func TestLatencyTrackerSince(t *testing.T) {
	tr := NewLatencyTracker(0.2)
	tr.Since(StageMemoHit, time.Now(), nil)
	tr.Since(StageMemoHit, time.Now(), errors.New("boom"))

	snap := tr.Snapshot()
	require.Contains(t, snap, StageMemoHit)
	assert.Equal(t, uint64(1), snap[StageMemoHit].OK)
	assert.Equal(t, uint64(1), snap[StageMemoHit].Error)
	assert.NotContains(t, snap, StagePredict)
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewLatencyTracker(0.2)
	tr.Since(StagePredict, time.Now(), nil)
	snap := tr.Snapshot()
	tr.Since(StagePredict, time.Now(), nil)
	assert.Equal(t, uint64(1), snap[StagePredict].OK)
}

func TestNilTrackerIsNoop(t *testing.T) {
	var tr *LatencyTracker
	tr.Since(StagePredict, time.Now(), nil)
	assert.Nil(t, tr.Snapshot())
}

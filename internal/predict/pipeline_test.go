package predict_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcules/motor-speed/internal/activity"
	"github.com/mcules/motor-speed/internal/artifact"
	"github.com/mcules/motor-speed/internal/artifact/artifacttest"
	"github.com/mcules/motor-speed/internal/metrics"
	"github.com/mcules/motor-speed/internal/params"
	"github.com/mcules/motor-speed/internal/predict"
)

func load(t *testing.T, files artifacttest.Files) (*artifact.Loader, *artifact.Bundle) {
	t.Helper()
	l := artifact.NewLoader(artifacttest.Write(t, files))
	return l, l.Bundle()
}

func TestRunDefaultsEndToEnd(t *testing.T) {
	_, b := load(t, artifacttest.Complete)

	pr, err := predict.Run(params.Defaults(), b.Model, b.Scaler, b.TargetScaler)
	require.NoError(t, err)
	assert.Equal(t, artifacttest.RPM, pr.Value)
	assert.Equal(t, predict.UnitsPhysical, pr.Units)
	assert.False(t, math.IsNaN(pr.Value) || math.IsInf(pr.Value, 0))
	assert.Equal(t, "1750.00 RPM", pr.Format())
}

func TestRunWithoutTargetScalerReturnsRaw(t *testing.T) {
	_, b := load(t, artifacttest.Complete)

	pr, err := predict.Run(params.Defaults(), b.Model, b.Scaler, nil)
	require.NoError(t, err)
	assert.Equal(t, predict.UnitsRaw, pr.Units)

	scaled := b.Scaler.Transform(params.Defaults().Slice())
	assert.Equal(t, b.Model.Predict(scaled), pr.Value)
	assert.Equal(t, artifacttest.Raw, pr.Value)
}

func TestRunRequiresModelAndScaler(t *testing.T) {
	_, b := load(t, artifacttest.Complete)

	_, err := predict.Run(params.Defaults(), nil, b.Scaler, b.TargetScaler)
	assert.ErrorIs(t, err, predict.ErrIncompleteArtifacts)

	_, err = predict.Run(params.Defaults(), b.Model, nil, b.TargetScaler)
	assert.ErrorIs(t, err, predict.ErrIncompleteArtifacts)
}

func TestRunIsDeterministic(t *testing.T) {
	_, b := load(t, artifacttest.Complete)
	v := params.Vector{1, 20, 3, 4, 50, -6, 7, 80, 90, 100, 110}

	a, err := predict.Run(v, b.Model, b.Scaler, b.TargetScaler)
	require.NoError(t, err)
	c, err := predict.Run(v, b.Model, b.Scaler, b.TargetScaler)
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(a.Value), math.Float64bits(c.Value))
}

func TestRunAcceptsBounds(t *testing.T) {
	_, b := load(t, artifacttest.Complete)

	var lo, hi params.Vector
	for i, p := range params.All() {
		lo[i], hi[i] = p.Min, p.Max
	}
	require.NoError(t, lo.Check())
	require.NoError(t, hi.Check())

	pr, err := predict.Run(lo, b.Model, b.Scaler, b.TargetScaler)
	require.NoError(t, err)
	assert.Equal(t, 1750.0, pr.Value)

	pr, err = predict.Run(hi, b.Model, b.Scaler, b.TargetScaler)
	require.NoError(t, err)
	assert.Equal(t, 3250.0, pr.Value)
}

func TestPipelineMemoizes(t *testing.T) {
	_, b := load(t, artifacttest.Complete)
	p := predict.NewPipeline(b, 0)
	p.Latency = metrics.NewLatencyTracker(0.2)

	first, err := p.Predict(params.Defaults())
	require.NoError(t, err)
	second, err := p.Predict(params.Defaults())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	snap := p.Latency.Snapshot()
	assert.Equal(t, uint64(1), snap[metrics.StagePredict].OK)
	assert.Equal(t, uint64(1), snap[metrics.StageMemoHit].OK)

	_, entries := p.MemoStats()
	assert.Equal(t, int64(1), entries)
}

func TestPipelineBlockedByMissingArtifacts(t *testing.T) {
	for _, files := range []artifacttest.Files{
		{Scaler: artifacttest.ScalerJSON, TargetScaler: artifacttest.TargetScalerJSON},
		{Model: artifacttest.ModelJSON, TargetScaler: artifacttest.TargetScalerJSON},
	} {
		_, b := load(t, files)
		p := predict.NewPipeline(b, 0)
		p.Activity = activity.New(10)

		_, err := p.Predict(params.Defaults())
		require.ErrorIs(t, err, predict.ErrIncompleteArtifacts)

		var ie *predict.IncompleteError
		require.True(t, errors.As(err, &ie))
		require.Len(t, ie.Problems, 1)
		assert.Contains(t, err.Error(), "file not found")

		ev := p.Activity.List()
		require.Len(t, ev, 1)
		assert.Equal(t, activity.EventPredictBlocked, ev[0].Type)
	}
}

func TestPipelineReloadSwapsBundle(t *testing.T) {
	files := artifacttest.Complete
	files.TargetScaler = ""
	l, b := load(t, files)
	p := predict.NewPipeline(b, 0)
	p.Activity = activity.New(10)

	raw, err := p.Predict(params.Defaults())
	require.NoError(t, err)
	assert.Equal(t, artifacttest.Raw, raw.Value)

	path := filepath.Join(l.Paths.Dir, l.Paths.TargetScaler)
	require.NoError(t, os.WriteFile(path, []byte(artifacttest.TargetScalerJSON), 0o644))

	nb := p.Reload(l)
	assert.Same(t, nb, p.Bundle())
	assert.NotEqual(t, b.Fingerprint, nb.Fingerprint)

	phys, err := p.Predict(params.Defaults())
	require.NoError(t, err)
	assert.Equal(t, artifacttest.RPM, phys.Value)
	assert.Equal(t, predict.UnitsPhysical, phys.Units)
	assert.Equal(t, activity.EventArtifactsCleared, p.Activity.List()[0].Type)
}

func TestUnitsString(t *testing.T) {
	assert.Equal(t, "raw", predict.UnitsRaw.String())
	assert.Equal(t, "physical", predict.UnitsPhysical.String())
	assert.Equal(t, "-3.14 RPM", predict.Prediction{Value: -3.14159}.Format())
}

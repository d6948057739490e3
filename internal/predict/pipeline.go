package predict

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coocood/freecache"
	"github.com/rs/zerolog/log"

	"github.com/mcules/motor-speed/internal/activity"
	"github.com/mcules/motor-speed/internal/artifact"
	"github.com/mcules/motor-speed/internal/metrics"
	"github.com/mcules/motor-speed/internal/params"
)

// ErrIncompleteArtifacts is returned when the model or the feature scaler is
// absent, or the artifacts do not match the form.
var ErrIncompleteArtifacts = errors.New("incomplete artifact set")

// IncompleteError carries the load results that block prediction.
type IncompleteError struct {
	Problems []artifact.Result
}

func (e *IncompleteError) Error() string {
	if len(e.Problems) == 0 {
		return ErrIncompleteArtifacts.Error()
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	return ErrIncompleteArtifacts.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *IncompleteError) Unwrap() error { return ErrIncompleteArtifacts }

// Run scales v, predicts, and maps the output back to physical units when a
// target scaler is present. Without one the model output is returned as-is.
func Run(v params.Vector, model artifact.Regressor, scaler artifact.Transformer, target artifact.Transformer) (Prediction, error) {
	if model == nil || scaler == nil {
		return Prediction{}, &IncompleteError{}
	}
	scaled := scaler.Transform(v.Slice())
	raw := model.Predict(scaled)
	if target == nil {
		return Prediction{Value: raw, Units: UnitsRaw}, nil
	}
	return Prediction{Value: target.InverseTransform([]float64{raw})[0], Units: UnitsPhysical}, nil
}

const (
	keySize   = 32 + params.Count*8
	valueSize = 9
	// freecache enforces its own floor of 512 KiB.
	minMemoBytes = 512 * 1024
)

// Pipeline runs predictions against the current bundle and memoizes results
// by artifact fingerprint and input vector.
type Pipeline struct {
	Activity *activity.Log
	Latency  *metrics.LatencyTracker

	bundle atomic.Pointer[artifact.Bundle]
	memo   *freecache.Cache
}

func NewPipeline(b *artifact.Bundle, memoBytes int) *Pipeline {
	if memoBytes < minMemoBytes {
		memoBytes = minMemoBytes
	}
	p := &Pipeline{memo: freecache.NewCache(memoBytes)}
	p.bundle.Store(b)
	return p
}

// Bundle returns the artifact set currently in use.
func (p *Pipeline) Bundle() *artifact.Bundle {
	return p.bundle.Load()
}

// Reload clears the loader cache and swaps in a freshly loaded bundle.
// Memoized results stay valid because their keys carry the fingerprint.
func (p *Pipeline) Reload(l *artifact.Loader) *artifact.Bundle {
	l.Reset()
	b := l.Bundle()
	p.bundle.Store(b)
	if p.Activity != nil {
		p.Activity.Add(activity.Event{Type: activity.EventArtifactsCleared, Note: fmt.Sprintf("ready=%t", b.Ready())})
	}
	return b
}

// Predict validates the artifact set, then returns the memoized or freshly
// computed prediction for v.
func (p *Pipeline) Predict(v params.Vector) (Prediction, error) {
	start := time.Now()
	b := p.Bundle()
	if !b.Ready() {
		err := &IncompleteError{Problems: b.Blocking()}
		log.Warn().Err(err).Msg("prediction blocked")
		if p.Activity != nil {
			p.Activity.Add(activity.Event{Type: activity.EventPredictBlocked, Note: err.Error()})
		}
		p.Latency.Since(metrics.StagePredict, start, err)
		return Prediction{}, err
	}

	key := memoKey(b.Fingerprint, v)
	if raw, err := p.memo.Get(key); err == nil && len(raw) == valueSize {
		pr := decodeValue(raw)
		p.Latency.Since(metrics.StageMemoHit, start, nil)
		return pr, nil
	}

	pr, err := Run(v, b.Model, b.Scaler, b.TargetScaler)
	p.Latency.Since(metrics.StagePredict, start, err)
	if err != nil {
		return Prediction{}, err
	}
	if err := p.memo.Set(key, encodeValue(pr), 0); err != nil {
		log.Debug().Err(err).Msg("prediction not memoized")
	}
	log.Debug().Float64("rpm", pr.Value).Str("units", pr.Units.String()).Msg("prediction computed")
	return pr, nil
}

// MemoStats reports memo hit rate and entry count.
func (p *Pipeline) MemoStats() (hitRate float64, entries int64) {
	return p.memo.HitRate(), p.memo.EntryCount()
}

func memoKey(fp [32]byte, v params.Vector) []byte {
	key := make([]byte, keySize)
	copy(key, fp[:])
	for i, x := range v {
		binary.LittleEndian.PutUint64(key[32+i*8:], math.Float64bits(x))
	}
	return key
}

func encodeValue(pr Prediction) []byte {
	buf := make([]byte, valueSize)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(pr.Value))
	buf[8] = byte(pr.Units)
	return buf
}

func decodeValue(buf []byte) Prediction {
	return Prediction{
		Value: math.Float64frombits(binary.LittleEndian.Uint64(buf)),
		Units: Units(buf[8]),
	}
}

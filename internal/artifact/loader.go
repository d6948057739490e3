package artifact

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/mcules/motor-speed/internal/params"
)

// Paths locates the artifact files. Relative paths resolve against Dir.
type Paths struct {
	Dir          string
	Model        string
	Scaler       string
	TargetScaler string
	Schema       string
}

func (p Paths) path(k Kind) string {
	var name string
	switch k {
	case KindModel:
		name = p.Model
	case KindScaler:
		name = p.Scaler
	case KindTargetScaler:
		name = p.TargetScaler
	case KindSchema:
		name = p.Schema
	}
	if name == "" || filepath.IsAbs(name) || p.Dir == "" {
		return name
	}
	return filepath.Join(p.Dir, name)
}

type entry struct {
	once   sync.Once
	value  any
	result Result
}

// Loader reads each artifact at most once and keeps it until Reset.
// Failures never escape Load: they become a Result and a nil artifact.
type Loader struct {
	Paths Paths

	// Notify, when set, is called once per load attempt.
	Notify func(Result)

	mu      sync.RWMutex
	entries map[Kind]*entry
}

func NewLoader(paths Paths) *Loader {
	return &Loader{Paths: paths, entries: newEntries()}
}

func newEntries() map[Kind]*entry {
	return map[Kind]*entry{
		KindModel:        {},
		KindScaler:       {},
		KindTargetScaler: {},
		KindSchema:       {},
	}
}

// Load returns the cached artifact of the given kind, reading it on first
// use. The returned value is nil when the artifact is absent.
func (l *Loader) Load(k Kind) (any, Result) {
	l.mu.RLock()
	e := l.entries[k]
	l.mu.RUnlock()
	if e == nil {
		return nil, Result{Kind: k, Status: StatusInvalid, Message: fmt.Sprintf("unknown artifact %s", k), At: time.Now()}
	}
	e.once.Do(func() {
		e.value, e.result = l.read(k)
		l.report(e.result)
	})
	return e.value, e.result
}

func (l *Loader) Model() Regressor {
	v, _ := l.Load(KindModel)
	m, _ := v.(Regressor)
	return m
}

func (l *Loader) Scaler() Transformer {
	v, _ := l.Load(KindScaler)
	s, _ := v.(Transformer)
	return s
}

func (l *Loader) TargetScaler() Transformer {
	v, _ := l.Load(KindTargetScaler)
	s, _ := v.(Transformer)
	return s
}

func (l *Loader) Schema() *Schema {
	v, _ := l.Load(KindSchema)
	s, _ := v.(*Schema)
	return s
}

// Reset drops every cached artifact; the next Load reads from disk again.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.entries = newEntries()
	l.mu.Unlock()
	log.Info().Msg("artifact cache cleared")
}

func (l *Loader) read(k Kind) (any, Result) {
	res := Result{Kind: k, Path: l.Paths.path(k), At: time.Now()}

	if res.Path == "" {
		if k == KindSchema {
			res.Status = StatusSkipped
			return nil, res
		}
		res.Status = StatusMissing
		res.Message = missingMessage(k)
		return nil, res
	}

	data, err := os.ReadFile(res.Path)
	if errors.Is(err, fs.ErrNotExist) {
		if k == KindSchema {
			res.Status = StatusSkipped
			return nil, res
		}
		res.Status = StatusMissing
		res.Message = missingMessage(k)
		return nil, res
	}
	if err != nil {
		res.Status = StatusInvalid
		res.Message = fmt.Sprintf("%s file could not be read: %v", k.Title(), err)
		return nil, res
	}
	sum := blake2b.Sum256(data)
	res.Digest = hex.EncodeToString(sum[:])

	v, err := decode(k, data)
	if err != nil {
		res.Status = StatusInvalid
		res.Message = fmt.Sprintf("%s file is not usable: %v", k.Title(), err)
		return nil, res
	}
	res.Status = StatusLoaded
	return v, res
}

func decode(k Kind, data []byte) (any, error) {
	switch k {
	case KindModel:
		m, err := DecodeModel(data)
		if err != nil {
			return nil, err
		}
		if m.NumFeatures() != params.Count {
			return nil, fmt.Errorf("model expects %d features, form has %d", m.NumFeatures(), params.Count)
		}
		return m, nil
	case KindScaler:
		s, err := DecodeScaler(data)
		if err != nil {
			return nil, err
		}
		if s.NumFeatures() != params.Count {
			return nil, fmt.Errorf("scaler has %d columns, form has %d", s.NumFeatures(), params.Count)
		}
		return s, nil
	case KindTargetScaler:
		s, err := DecodeScaler(data)
		if err != nil {
			return nil, err
		}
		if s.NumFeatures() != 1 {
			return nil, fmt.Errorf("target scaler has %d columns, want 1", s.NumFeatures())
		}
		return s, nil
	case KindSchema:
		return DecodeSchema(data)
	}
	return nil, fmt.Errorf("unknown artifact %s", k)
}

func missingMessage(k Kind) string {
	return fmt.Sprintf("%s file not found. Please train and save the %s first.", k.Title(), k)
}

func (l *Loader) report(r Result) {
	ev := log.Info()
	if r.Problem() {
		ev = log.Error()
	}
	ev.Str("artifact", r.Kind.String()).
		Str("path", r.Path).
		Str("status", string(r.Status)).
		Str("digest", r.Digest).
		Msg(loadLogMessage(r))
	if l.Notify != nil {
		l.Notify(r)
	}
}

func loadLogMessage(r Result) string {
	if r.Message != "" {
		return r.Message
	}
	return r.Kind.Title() + " " + string(r.Status)
}

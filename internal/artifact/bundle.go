package artifact

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/mcules/motor-speed/internal/params"
)

// Bundle is the read-only artifact set handed to the prediction pipeline.
// Model and Scaler are nil when absent; TargetScaler is optional.
type Bundle struct {
	Model        Regressor
	Scaler       Transformer
	TargetScaler Transformer

	// Results holds one entry per artifact kind, in Kind order.
	Results []Result

	// Fingerprint identifies the exact artifact files in use.
	Fingerprint [32]byte

	schemaErr error
}

// Bundle loads every artifact (from cache when already loaded) and checks
// the optional feature schema against the parameter table.
func (l *Loader) Bundle() *Bundle {
	b := &Bundle{
		Model:        l.Model(),
		Scaler:       l.Scaler(),
		TargetScaler: l.TargetScaler(),
	}
	for _, k := range []Kind{KindModel, KindScaler, KindTargetScaler, KindSchema} {
		_, r := l.Load(k)
		b.Results = append(b.Results, r)
	}

	// An unreadable manifest blocks like a mismatch.
	if r := b.Results[KindSchema]; r.Status == StatusInvalid {
		b.schemaErr = fmt.Errorf("feature schema unreadable: %s", r.Message)
	}
	if s := l.Schema(); s != nil {
		if err := s.Check(params.Names()); err != nil {
			b.schemaErr = err
			r := &b.Results[KindSchema]
			r.Status = StatusMismatch
			r.Message = fmt.Sprintf("Feature schema does not match the form: %v. Retrain or fix the form order.", err)
			l.report(*r)
		}
	}

	h, _ := blake2b.New256(nil)
	for _, r := range b.Results[:KindSchema] {
		d, _ := hex.DecodeString(r.Digest)
		h.Write([]byte{byte(r.Kind)})
		h.Write(d)
	}
	copy(b.Fingerprint[:], h.Sum(nil))
	return b
}

// Ready reports whether a prediction can run.
func (b *Bundle) Ready() bool {
	return b.Model != nil && b.Scaler != nil && b.schemaErr == nil
}

// Problems returns the results that need a banner.
func (b *Bundle) Problems() []Result {
	var out []Result
	for _, r := range b.Results {
		if r.Problem() {
			out = append(out, r)
		}
	}
	return out
}

// Blocking returns the problems that prevent prediction.
func (b *Bundle) Blocking() []Result {
	var out []Result
	for _, r := range b.Results {
		if r.Blocks() {
			out = append(out, r)
		}
	}
	return out
}

package artifact

import (
	"fmt"
	"time"
)

// Kind identifies one of the files produced by the training step.
type Kind int

const (
	KindModel Kind = iota
	KindScaler
	KindTargetScaler
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindScaler:
		return "scaler"
	case KindTargetScaler:
		return "target scaler"
	case KindSchema:
		return "feature schema"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Title is String with the first letter upper-cased, for banners.
func (k Kind) Title() string {
	s := k.String()
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

type Status string

const (
	StatusLoaded   Status = "loaded"
	StatusMissing  Status = "missing"
	StatusInvalid  Status = "invalid"
	StatusMismatch Status = "mismatch"
	// StatusSkipped marks an optional file that is not present.
	StatusSkipped Status = "skipped"
)

// Result describes one load attempt.
type Result struct {
	Kind    Kind
	Path    string
	Status  Status
	Digest  string
	Message string
	At      time.Time
}

// Problem reports whether the result should be shown to the user.
func (r Result) Problem() bool {
	return r.Status != StatusLoaded && r.Status != StatusSkipped
}

// Blocks reports whether the problem prevents prediction. Only the target
// scaler is optional.
func (r Result) Blocks() bool {
	return r.Problem() && r.Kind != KindTargetScaler
}

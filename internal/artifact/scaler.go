package artifact

import (
	"encoding/json"
	"fmt"
)

// Transformer is a fitted column-wise scaler.
type Transformer interface {
	NumFeatures() int
	Transform(row []float64) []float64
	InverseTransform(row []float64) []float64
}

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

type scalerFile struct {
	Type  string    `json:"type"`
	Mean  []float64 `json:"mean"`
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

// StandardScaler applies (x - mean) / scale.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = (x - s.Mean[i]) / s.Scale[i]
	}
	return out
}

func (s *StandardScaler) InverseTransform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x*s.Scale[i] + s.Mean[i]
	}
	return out
}

// MinMaxScaler applies x*scale + min, where min and scale are the fitted
// offset and factor mapping the training range onto the feature range.
type MinMaxScaler struct {
	Min   []float64
	Scale []float64
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.Min) }

func (s *MinMaxScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = x*s.Scale[i] + s.Min[i]
	}
	return out
}

func (s *MinMaxScaler) InverseTransform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, x := range row {
		out[i] = (x - s.Min[i]) / s.Scale[i]
	}
	return out
}

// DecodeScaler parses a scaler document.
func DecodeScaler(data []byte) (Transformer, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	switch f.Type {
	case ScalerStandard:
		if len(f.Mean) == 0 || len(f.Mean) != len(f.Scale) {
			return nil, fmt.Errorf("standard scaler: mean has %d columns, scale has %d", len(f.Mean), len(f.Scale))
		}
		return &StandardScaler{Mean: f.Mean, Scale: nonZero(f.Scale)}, nil
	case ScalerMinMax:
		if len(f.Min) == 0 || len(f.Min) != len(f.Scale) {
			return nil, fmt.Errorf("minmax scaler: min has %d columns, scale has %d", len(f.Min), len(f.Scale))
		}
		return &MinMaxScaler{Min: f.Min, Scale: nonZero(f.Scale)}, nil
	default:
		return nil, fmt.Errorf("unknown scaler type %q", f.Type)
	}
}

// constant training columns are stored with a zero scale
func nonZero(scale []float64) []float64 {
	out := make([]float64, len(scale))
	for i, s := range scale {
		if s == 0 {
			s = 1
		}
		out[i] = s
	}
	return out
}

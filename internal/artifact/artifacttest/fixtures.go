// Package artifacttest writes small, hand-checkable artifact sets for tests.
package artifacttest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcules/motor-speed/internal/artifact"
)

// ScalerJSON centres every feature on its form default with unit scale, so
// the default vector scales to all zeros.
const ScalerJSON = `{
  "type": "standard",
  "mean": [19.85, 18.80, -0.35, -0.45, 0.19, 0.0, 0.0, 24.55, 18.31, 18.29, 19.08],
  "scale": [1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1]
}`

// ModelJSON is a two-tree forest. Tree 0 splits on ambient at 0 (0.5 | 1.5),
// tree 1 splits on torque at 10 (0.25 | 0.75). The default vector predicts
// (0.5+0.25)/2 = 0.375.
const ModelJSON = `{
  "type": "random_forest",
  "n_features": 11,
  "trees": [
    {"children_left": [1, -1, -1], "children_right": [2, -1, -1], "feature": [0, -2, -2],
     "threshold": [0, -2, -2], "value": [1.0, 0.5, 1.5]},
    {"children_left": [1, -1, -1], "children_right": [2, -1, -1], "feature": [4, -2, -2],
     "threshold": [10, -2, -2], "value": [0.5, 0.25, 0.75]}
  ]
}`

// TargetScalerJSON maps the model output y to y*2000 + 1000 RPM.
const TargetScalerJSON = `{"type": "standard", "mean": [1000], "scale": [2000]}`

const SchemaYAML = `version: 1
target: motor_speed
features: [ambient, coolant, u_d, u_q, torque, i_d, i_q, pm, stator_yoke, stator_tooth, stator_winding]
`

// Raw and RPM are the expected outputs for the default vector.
const (
	Raw = 0.375
	RPM = 1750.0
)

// Files holds the document for each artifact; empty means not written.
type Files struct {
	Model        string
	Scaler       string
	TargetScaler string
	Schema       string
}

// Complete is the full artifact set including the schema.
var Complete = Files{Model: ModelJSON, Scaler: ScalerJSON, TargetScaler: TargetScalerJSON, Schema: SchemaYAML}

// Write stores files under a fresh temp dir and returns matching paths.
func Write(t testing.TB, f Files) artifact.Paths {
	t.Helper()
	p := artifact.Paths{
		Dir:          t.TempDir(),
		Model:        "model.json",
		Scaler:       "scaler.json",
		TargetScaler: "target_scaler.json",
		Schema:       "schema.yaml",
	}
	write(t, p.Dir, p.Model, f.Model)
	write(t, p.Dir, p.Scaler, f.Scaler)
	write(t, p.Dir, p.TargetScaler, f.TargetScaler)
	write(t, p.Dir, p.Schema, f.Schema)
	return p
}

func write(t testing.TB, dir, name, content string) {
	t.Helper()
	if content == "" {
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

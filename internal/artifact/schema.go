package artifact

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is the feature manifest shipped next to the artifacts. It pins the
// column order the model and scaler were fitted on.
type Schema struct {
	Version  int      `yaml:"version"`
	Target   string   `yaml:"target"`
	Features []string `yaml:"features"`
}

// DecodeSchema parses a YAML feature manifest.
func DecodeSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	if len(s.Features) == 0 {
		return nil, fmt.Errorf("decode schema: no features listed")
	}
	return &s, nil
}

// Check compares the manifest against the expected feature order.
func (s *Schema) Check(want []string) error {
	if len(s.Features) != len(want) {
		return fmt.Errorf("schema v%d lists %d features, form has %d", s.Version, len(s.Features), len(want))
	}
	var diffs []string
	for i := range want {
		if s.Features[i] != want[i] {
			diffs = append(diffs, fmt.Sprintf("#%d %s!=%s", i, s.Features[i], want[i]))
		}
	}
	if len(diffs) > 0 {
		return fmt.Errorf("schema v%d feature order differs: %s", s.Version, strings.Join(diffs, ", "))
	}
	return nil
}

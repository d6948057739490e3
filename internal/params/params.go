package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Parameter is one bounded model input. Min and Max are inclusive.
type Parameter struct {
	Name    string
	Label   string
	Unit    string
	Help    string
	Min     float64
	Max     float64
	Default float64
	// Column is the form column (1 or 2). Layout only.
	Column int
}

// Count is the number of model inputs.
const Count = 11

// Vector holds one value per parameter, in table order.
type Vector [Count]float64

// table order is the column order the artifacts were trained on.
var table = [Count]Parameter{
	{Name: "ambient", Label: "Ambient Temperature", Unit: "°C", Min: -25.29, Max: 30.71, Default: 19.85, Column: 1,
		Help: "Temperature of the surrounding environment."},
	{Name: "coolant", Label: "Coolant Temperature", Unit: "°C", Min: 13.76, Max: 101.60, Default: 18.80, Column: 1,
		Help: "Temperature of the cooling liquid in the system."},
	{Name: "u_d", Label: "Voltage D-component", Unit: "V", Min: -131.53, Max: 131.47, Default: -0.35, Column: 1,
		Help: "Direct-axis voltage component of the motor."},
	{Name: "u_q", Label: "Voltage Q-component", Unit: "V", Min: -278.00, Max: 133.03, Default: -0.45, Column: 1,
		Help: "Quadrature-axis voltage component of the motor."},
	{Name: "torque", Label: "Torque", Unit: "Nm", Min: -246.47, Max: 261.01, Default: 0.19, Column: 1,
		Help: "Rotational force applied to the motor shaft in Newton-meters."},
	{Name: "i_d", Label: "Current D-component", Unit: "A", Min: -278.00, Max: 0.05, Default: 0.0, Column: 1,
		Help: "Direct-axis current component related to motor efficiency."},
	{Name: "i_q", Label: "Current Q-component", Unit: "A", Min: -293.43, Max: 301.71, Default: 0.0, Column: 2,
		Help: "Quadrature-axis current component affecting torque production."},
	{Name: "pm", Label: "Permanent Magnet Temp", Unit: "°C", Min: 20.86, Max: 113.61, Default: 24.55, Column: 2,
		Help: "Temperature of the permanent magnets inside the motor."},
	{Name: "stator_yoke", Label: "Stator Yoke Temp", Unit: "°C", Min: 18.08, Max: 99.86, Default: 18.31, Column: 2,
		Help: "Heat level in the motor's stator yoke component."},
	{Name: "stator_tooth", Label: "Stator Tooth Temp", Unit: "°C", Min: 18.13, Max: 111.95, Default: 18.29, Column: 2,
		Help: "Temperature of the stator teeth, affecting efficiency."},
	{Name: "stator_winding", Label: "Stator Winding Temp", Unit: "°C", Min: 18.59, Max: 141.36, Default: 19.08, Column: 2,
		Help: "Heat level in the stator windings, impacting performance."},
}

// All returns a copy of the range table in feature order.
func All() []Parameter {
	out := make([]Parameter, Count)
	copy(out, table[:])
	return out
}

// Names returns the parameter names in feature order.
func Names() []string {
	out := make([]string, Count)
	for i, p := range table {
		out[i] = p.Name
	}
	return out
}

// Lookup returns the parameter with the given name and its feature index.
func Lookup(name string) (Parameter, int, bool) {
	for i, p := range table {
		if p.Name == name {
			return p, i, true
		}
	}
	return Parameter{}, -1, false
}

// Defaults returns the vector built from every parameter's default value.
func Defaults() Vector {
	var v Vector
	for i, p := range table {
		v[i] = p.Default
	}
	return v
}

// Contains reports whether x lies within [Min, Max].
func (p Parameter) Contains(x float64) bool {
	return x >= p.Min && x <= p.Max
}

// RangeError is returned for a value outside a parameter's bounds.
type RangeError struct {
	Param Parameter
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%s outside [%s, %s]", e.Param.Name,
		Format(e.Value), Format(e.Param.Min), Format(e.Param.Max))
}

// Check validates every component of v against its bounds.
func (v Vector) Check() error {
	for i, p := range table {
		if !p.Contains(v[i]) {
			return &RangeError{Param: p, Value: v[i]}
		}
	}
	return nil
}

// Slice returns the vector as a one-row matrix row.
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// Map returns the vector keyed by parameter name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, Count)
	for i, p := range table {
		out[p.Name] = v[i]
	}
	return out
}

// Format renders x with the shortest representation that round-trips.
func Format(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Parse builds a vector from string form values, one per parameter name.
// Every field is required and must lie within its bounds.
func Parse(get func(name string) string) (Vector, error) {
	var v Vector
	for i, p := range table {
		raw := strings.TrimSpace(get(p.Name))
		if raw == "" {
			return Vector{}, fmt.Errorf("missing value for %s", p.Name)
		}
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Vector{}, fmt.Errorf("invalid value for %s: %w", p.Name, err)
		}
		v[i] = x
	}
	return v, v.Check()
}

// FromMap builds a vector from named values. Absent names take their
// default; unknown names are rejected.
func FromMap(m map[string]float64) (Vector, error) {
	v := Defaults()
	for name, x := range m {
		_, i, ok := Lookup(name)
		if !ok {
			return Vector{}, fmt.Errorf("unknown parameter %q", name)
		}
		v[i] = x
	}
	return v, v.Check()
}

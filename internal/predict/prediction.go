package predict

import "fmt"

// Units records whether the value went through the target scaler.
type Units uint8

const (
	// UnitsRaw is the model output used directly. Models shipped without a
	// target scaler are trained on RPM, so the value is still RPM.
	UnitsRaw Units = iota
	// UnitsPhysical is the model output mapped back through the target scaler.
	UnitsPhysical
)

func (u Units) String() string {
	switch u {
	case UnitsRaw:
		return "raw"
	case UnitsPhysical:
		return "physical"
	default:
		return fmt.Sprintf("units(%d)", uint8(u))
	}
}

// Prediction is one predicted motor speed in RPM.
type Prediction struct {
	Value float64
	Units Units
}

// Format renders the value with two decimals and the RPM label.
func (p Prediction) Format() string {
	return fmt.Sprintf("%.2f RPM", p.Value)
}

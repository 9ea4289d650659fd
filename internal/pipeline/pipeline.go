// Package pipeline chains the physics formulas from uncertain sensor
// readings to a lift estimate.
//
// One run draws a single sample of each uncertain input and evaluates the
// formulas once. [Ensemble] repeats that over many independently seeded
// runs and summarizes the spread.
package pipeline

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/liftsim/internal/physics"
	"github.com/san-kum/liftsim/internal/uncertain"
)

// Sample is one draw of the four uncertain inputs.
type Sample struct {
	Altitude         float64
	Temperature      float64
	DeltaPressure    float64
	RelativeHumidity float64
}

func (s Sample) String() string {
	return fmt.Sprintf("altitude=%.4g m, temperature=%.4g °C, dp=%.4g Pa, rh=%.4g",
		s.Altitude, s.Temperature, s.DeltaPressure, s.RelativeHumidity)
}

// Result holds one run's sampled inputs and every derived quantity.
type Result struct {
	Sample Sample

	SaturationVaporPressure float64 // Pa
	VaporPressure           float64 // Pa
	TotalPressure           float64 // Pa
	Density                 float64 // kg/m³
	Velocity                float64 // m/s
	LiftForce               float64 // N
}

// Quantity is a named derived value with its unit.
type Quantity struct {
	Key   string
	Label string
	Unit  string
	Value float64
}

// Quantity keys, in reporting order.
const (
	KeySaturationVaporPressure = "es"
	KeyVaporPressure           = "pv"
	KeyTotalPressure           = "ptotal"
	KeyDensity                 = "rho"
	KeyVelocity                = "velocity"
	KeyLiftForce               = "lift"
)

// QuantityKeys lists the derived quantities in reporting order.
var QuantityKeys = []string{
	KeySaturationVaporPressure,
	KeyVaporPressure,
	KeyTotalPressure,
	KeyDensity,
	KeyVelocity,
	KeyLiftForce,
}

var quantityMeta = map[string]struct{ label, unit string }{
	KeySaturationVaporPressure: {"Es", "Pa"},
	KeyVaporPressure:           {"Pv", "Pa"},
	KeyTotalPressure:           {"Ptotal", "Pa"},
	KeyDensity:                 {"Rho", "kg/m³"},
	KeyVelocity:                {"Velocity", "m/s"},
	KeyLiftForce:               {"Lift Force", "N"},
}

// Describe returns the label and unit of a quantity key.
func Describe(key string) (label, unit string, ok bool) {
	m, ok := quantityMeta[key]
	return m.label, m.unit, ok
}

// Quantities returns the derived values in reporting order.
func (r *Result) Quantities() []Quantity {
	out := make([]Quantity, 0, len(QuantityKeys))
	for _, k := range QuantityKeys {
		m := quantityMeta[k]
		out = append(out, Quantity{Key: k, Label: m.label, Unit: m.unit, Value: r.Value(k)})
	}
	return out
}

// Value returns the derived quantity named by key, or NaN for an unknown key.
func (r *Result) Value(key string) float64 {
	switch key {
	case KeySaturationVaporPressure:
		return r.SaturationVaporPressure
	case KeyVaporPressure:
		return r.VaporPressure
	case KeyTotalPressure:
		return r.TotalPressure
	case KeyDensity:
		return r.Density
	case KeyVelocity:
		return r.Velocity
	case KeyLiftForce:
		return r.LiftForce
	}
	return math.NaN()
}

// Draw samples each uncertain input once, in the order altitude, relative
// humidity, temperature, differential pressure.
func Draw(in Inputs, src uncertain.Source) Sample {
	var s Sample
	s.Altitude = in.Altitude.Uncertain().Sample(src)
	s.RelativeHumidity = in.RelativeHumidity.Uncertain().Sample(src)
	s.Temperature = in.Temperature.Uncertain().Sample(src)
	s.DeltaPressure = in.DeltaPressure.Uncertain().Sample(src)
	return s
}

// Evaluate runs the formula chain on an already drawn sample. It is
// deterministic: the same inputs and sample always give the same result.
func Evaluate(in Inputs, s Sample) (*Result, error) {
	atm, err := physics.ComputeAtmosphere(s.Temperature, s.RelativeHumidity, s.Altitude)
	if err != nil {
		return nil, &StageError{Stage: StageAtmosphere, Sample: s, Wrapped: err}
	}

	rho, err := physics.Density(atm, s.Temperature)
	if err != nil {
		return nil, &StageError{Stage: StageDensity, Sample: s, Wrapped: err}
	}

	v, err := physics.FlowVelocity(s.DeltaPressure, rho)
	if err != nil {
		return nil, &StageError{Stage: StageVelocity, Sample: s, Wrapped: err}
	}

	lift := physics.LiftForce(in.LiftCoefficient, rho, v, in.WingArea)
	if math.IsNaN(lift) || math.IsInf(lift, 0) {
		return nil, &StageError{
			Stage:   StageLift,
			Sample:  s,
			Wrapped: &physics.FormulaError{Formula: "lift force", Detail: fmt.Sprintf("lift=%v", lift), Wrapped: physics.ErrNonFinite},
		}
	}

	return &Result{
		Sample:                  s,
		SaturationVaporPressure: atm.SaturationVaporPressure,
		VaporPressure:           atm.VaporPressure,
		TotalPressure:           atm.TotalPressure,
		Density:                 rho,
		Velocity:                v,
		LiftForce:               lift,
	}, nil
}

// Run draws one sample from src and evaluates it.
func Run(in Inputs, src uncertain.Source) (*Result, error) {
	return Evaluate(in, Draw(in, src))
}

// RunSeeded evaluates one run with a private source seeded by seed.
func RunSeeded(in Inputs, seed int64) (*Result, error) {
	return Run(in, rand.New(rand.NewSource(seed)))
}

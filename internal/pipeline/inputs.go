package pipeline

import (
	"fmt"

	"github.com/san-kum/liftsim/internal/uncertain"
)

// Measurement is a nominal reading with its relative error fraction.
type Measurement struct {
	Nominal float64
	RelErr  float64
}

// Uncertain returns the sampling interval of the measurement.
func (m Measurement) Uncertain() uncertain.Value {
	return uncertain.New(m.Nominal, m.RelErr)
}

// Inputs is the fixed set of readings and design constants for one
// airfoil. It is a plain value: build it once and pass it explicitly.
type Inputs struct {
	Altitude         Measurement // m
	Temperature      Measurement // °C
	DeltaPressure    Measurement // Pa
	RelativeHumidity Measurement // fraction, 0..1

	LiftCoefficient float64
	WingArea        float64 // m²
}

const (
	DefaultAltitude         = 1000.0
	DefaultAltitudeErr      = 0.01
	DefaultTemperature      = 15.0
	DefaultTemperatureErr   = 0.01
	DefaultDeltaPressure    = 1000.0
	DefaultDeltaPressureErr = 0.05
	DefaultHumidity         = 0.7
	DefaultHumidityErr      = 0.01
	DefaultLiftCoefficient  = 0.1
	DefaultWingArea         = 37.0
)

// DefaultInputs returns the reference airfoil readings.
func DefaultInputs() Inputs {
	return Inputs{
		Altitude:         Measurement{DefaultAltitude, DefaultAltitudeErr},
		Temperature:      Measurement{DefaultTemperature, DefaultTemperatureErr},
		DeltaPressure:    Measurement{DefaultDeltaPressure, DefaultDeltaPressureErr},
		RelativeHumidity: Measurement{DefaultHumidity, DefaultHumidityErr},
		LiftCoefficient:  DefaultLiftCoefficient,
		WingArea:         DefaultWingArea,
	}
}

// Exact returns a copy of in with every error fraction set to zero.
func (in Inputs) Exact() Inputs {
	in.Altitude.RelErr = 0
	in.Temperature.RelErr = 0
	in.DeltaPressure.RelErr = 0
	in.RelativeHumidity.RelErr = 0
	return in
}

// Warning reports an input that is accepted but physically suspect.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Warnings lists non-fatal range problems: relative humidity outside
// [0, 1] and error fractions that are negative or >= 1.
func (in Inputs) Warnings() []Warning {
	var out []Warning

	rh := in.RelativeHumidity.Uncertain()
	lo, hi := rh.Bounds()
	if lo < 0 || hi > 1 {
		out = append(out, Warning{
			Field:   "relative_humidity",
			Message: fmt.Sprintf("sampling range [%.4g, %.4g] leaves [0, 1]", lo, hi),
		})
	}

	fields := []struct {
		name string
		m    Measurement
	}{
		{"altitude", in.Altitude},
		{"temperature", in.Temperature},
		{"delta_pressure", in.DeltaPressure},
		{"relative_humidity", in.RelativeHumidity},
	}
	for _, f := range fields {
		switch {
		case f.m.RelErr < 0:
			out = append(out, Warning{
				Field:   f.name,
				Message: fmt.Sprintf("negative error fraction %g inverts the interval", f.m.RelErr),
			})
		case f.m.RelErr >= 1:
			out = append(out, Warning{
				Field:   f.name,
				Message: fmt.Sprintf("error fraction %g spans zero", f.m.RelErr),
			})
		}
	}

	if in.WingArea <= 0 {
		out = append(out, Warning{Field: "wing_area", Message: fmt.Sprintf("non-positive area %g", in.WingArea)})
	}

	return out
}

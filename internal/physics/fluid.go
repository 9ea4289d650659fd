package physics

import "math"

const (
	// GasConstantDryAir is the specific gas constant of dry air, J/(kg·K).
	GasConstantDryAir = 287.05

	// 1 - Mv/Md for water vapor in air.
	vaporDensityFactor = 0.378
)

// Density returns moist-air density in kg/m³ from precomputed atmosphere
// pressures and tempC.
func Density(atm Atmosphere, tempC float64) (float64, error) {
	kelvin := tempC + CelsiusToKelvin
	switch {
	case kelvin == 0:
		return 0, formulaErr("air density", ErrSingularity, "temperature at absolute zero")
	case kelvin < 0:
		return 0, formulaErr("air density", ErrDomain, "temperature below absolute zero (tempC=%v)", tempC)
	case atm.TotalPressure == 0:
		return 0, formulaErr("air density", ErrSingularity, "total pressure is zero")
	}
	p := atm.TotalPressure
	rho := (p / (kelvin * GasConstantDryAir)) * (1 - vaporDensityFactor*atm.VaporPressure/p)
	if math.IsNaN(rho) || math.IsInf(rho, 0) {
		return 0, formulaErr("air density", ErrNonFinite, "rho=%v", rho)
	}
	return rho, nil
}

// AirDensity returns moist-air density in kg/m³ for the given temperature,
// relative humidity and altitude.
func AirDensity(tempC, rh, altitudeM float64) (float64, error) {
	atm, err := ComputeAtmosphere(tempC, rh, altitudeM)
	if err != nil {
		return 0, err
	}
	return Density(atm, tempC)
}

// FlowVelocity returns the free-stream velocity in m/s measured by a pitot
// tube reading deltaPressure Pa in fluid of density rho.
func FlowVelocity(deltaPressure, rho float64) (float64, error) {
	if err := checkFinite("flow velocity", []string{"deltaPressure", "rho"}, deltaPressure, rho); err != nil {
		return 0, err
	}
	if rho == 0 {
		return 0, formulaErr("flow velocity", ErrSingularity, "density is zero")
	}
	ratio := deltaPressure / rho
	if ratio < 0 {
		return 0, formulaErr("flow velocity", ErrDomain, "negative dynamic pressure ratio %v", ratio)
	}
	return math.Sqrt(2 * ratio), nil
}

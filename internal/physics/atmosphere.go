package physics

import "math"

const (
	// Tetens' coefficients; tetensA is in hPa.
	tetensA = 6.1078
	tetensB = 7.5
	tetensC = 237.3

	hPaToPa = 100.0

	// SeaLevelPressure is the ISA sea-level pressure in Pa.
	SeaLevelPressure = 101325.0
	// LapseRate is the tropospheric temperature lapse rate in K/m.
	LapseRate = 0.0065
	// CelsiusToKelvin offsets °C to K.
	CelsiusToKelvin = 273.15

	hypsometricExponent = 5.257
)

// Atmosphere holds the pressures derived from one temperature, humidity and
// altitude reading. All values are in Pa.
type Atmosphere struct {
	SaturationVaporPressure float64
	VaporPressure           float64
	TotalPressure           float64
}

// SaturationVaporPressure returns the saturation vapor pressure of water in
// Pa at tempC, using Tetens' formula.
func SaturationVaporPressure(tempC float64) (float64, error) {
	if err := checkFinite("saturation vapor pressure", []string{"tempC"}, tempC); err != nil {
		return 0, err
	}
	denom := tetensC + tempC
	if denom == 0 {
		return 0, formulaErr("saturation vapor pressure", ErrSingularity, "tempC=%v", tempC)
	}
	es := tetensA * math.Pow(10, tetensB*tempC/denom) * hPaToPa
	if math.IsInf(es, 0) {
		return 0, formulaErr("saturation vapor pressure", ErrNonFinite, "tempC=%v", tempC)
	}
	return es, nil
}

// PartialVaporPressure returns rh*es. Humidity is not clamped to [0, 1].
func PartialVaporPressure(rh, es float64) float64 {
	return rh * es
}

// TotalPressure returns the barometric pressure in Pa at altitudeM meters
// and tempC, using the hypsometric formula. Valid below 11 km.
func TotalPressure(tempC, altitudeM float64) (float64, error) {
	if err := checkFinite("total pressure", []string{"tempC", "altitude"}, tempC, altitudeM); err != nil {
		return 0, err
	}
	lapse := LapseRate * altitudeM
	denom := tempC + CelsiusToKelvin + lapse
	if denom == 0 {
		return 0, formulaErr("total pressure", ErrSingularity, "tempC=%v altitude=%v", tempC, altitudeM)
	}
	base := 1 - lapse/denom
	if base < 0 {
		return 0, formulaErr("total pressure", ErrDomain, "negative base %v (tempC=%v altitude=%v)", base, tempC, altitudeM)
	}
	return SeaLevelPressure * math.Pow(base, hypsometricExponent), nil
}

// ComputeAtmosphere evaluates saturation vapor pressure, partial vapor
// pressure and total pressure for one reading.
func ComputeAtmosphere(tempC, rh, altitudeM float64) (Atmosphere, error) {
	if err := checkFinite("atmosphere", []string{"relative humidity"}, rh); err != nil {
		return Atmosphere{}, err
	}
	es, err := SaturationVaporPressure(tempC)
	if err != nil {
		return Atmosphere{}, err
	}
	p, err := TotalPressure(tempC, altitudeM)
	if err != nil {
		return Atmosphere{}, err
	}
	return Atmosphere{
		SaturationVaporPressure: es,
		VaporPressure:           PartialVaporPressure(rh, es),
		TotalPressure:           p,
	}, nil
}

package config

import "sort"

// Presets are named input regimes. Fields left zero take the defaults in
// GetPreset.
var Presets = map[string]*Config{
	"standard": DefaultConfig(),
	"exact": {
		Inputs: InputsConfig{
			Altitude:         MeasurementConfig{1000, 0},
			Temperature:      MeasurementConfig{15, 0},
			DeltaPressure:    MeasurementConfig{1000, 0},
			RelativeHumidity: MeasurementConfig{0.7, 0},
			LiftCoefficient:  0.1,
			WingArea:         37,
		},
	},
	"sea_level": {
		Inputs: InputsConfig{
			Altitude:         MeasurementConfig{0, 0},
			Temperature:      MeasurementConfig{15, 0.02},
			DeltaPressure:    MeasurementConfig{1200, 0.03},
			RelativeHumidity: MeasurementConfig{0.6, 0.05},
			LiftCoefficient:  0.4,
			WingArea:         16.2,
		},
	},
	"high_altitude": {
		Inputs: InputsConfig{
			Altitude:         MeasurementConfig{8000, 0.01},
			Temperature:      MeasurementConfig{-37, 0.02},
			DeltaPressure:    MeasurementConfig{9000, 0.02},
			RelativeHumidity: MeasurementConfig{0.2, 0.1},
			LiftCoefficient:  0.5,
			WingArea:         122.6,
		},
	},
	"humid": {
		Inputs: InputsConfig{
			Altitude:         MeasurementConfig{200, 0.01},
			Temperature:      MeasurementConfig{32, 0.01},
			DeltaPressure:    MeasurementConfig{1000, 0.05},
			RelativeHumidity: MeasurementConfig{0.95, 0.02},
			LiftCoefficient:  0.1,
			WingArea:         37,
		},
	},
	"cold": {
		Inputs: InputsConfig{
			Altitude:         MeasurementConfig{1500, 0.01},
			Temperature:      MeasurementConfig{-25, 0.02},
			DeltaPressure:    MeasurementConfig{1000, 0.05},
			RelativeHumidity: MeasurementConfig{0.5, 0.02},
			LiftCoefficient:  0.1,
			WingArea:         37,
		},
	},
}

// GetPreset returns a copy of the named preset with run settings filled
// from the defaults, or nil if the name is unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	if cfg.Trials == 0 {
		cfg.Trials = def.Trials
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Bins == 0 {
		cfg.Bins = def.Bins
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/liftsim/internal/pipeline"
)

const (
	DefaultTrials  = 1000
	DefaultSeed    = 1
	DefaultWorkers = 4
	DefaultBins    = 20
)

type Config struct {
	Inputs  InputsConfig `yaml:"inputs"`
	Trials  int          `yaml:"trials"`
	Seed    int64        `yaml:"seed"`
	Workers int          `yaml:"workers"`
	Bins    int          `yaml:"bins"`
}

// MeasurementConfig is a nominal reading and its relative error fraction.
type MeasurementConfig struct {
	Nominal float64 `yaml:"nominal"`
	Error   float64 `yaml:"error"`
}

type InputsConfig struct {
	Altitude         MeasurementConfig `yaml:"altitude"`
	Temperature      MeasurementConfig `yaml:"temperature"`
	DeltaPressure    MeasurementConfig `yaml:"delta_pressure"`
	RelativeHumidity MeasurementConfig `yaml:"relative_humidity"`
	LiftCoefficient  float64           `yaml:"lift_coefficient"`
	WingArea         float64           `yaml:"wing_area"`
}

func DefaultConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			Altitude:         MeasurementConfig{pipeline.DefaultAltitude, pipeline.DefaultAltitudeErr},
			Temperature:      MeasurementConfig{pipeline.DefaultTemperature, pipeline.DefaultTemperatureErr},
			DeltaPressure:    MeasurementConfig{pipeline.DefaultDeltaPressure, pipeline.DefaultDeltaPressureErr},
			RelativeHumidity: MeasurementConfig{pipeline.DefaultHumidity, pipeline.DefaultHumidityErr},
			LiftCoefficient:  pipeline.DefaultLiftCoefficient,
			WingArea:         pipeline.DefaultWingArea,
		},
		Trials:  DefaultTrials,
		Seed:    DefaultSeed,
		Workers: DefaultWorkers,
		Bins:    DefaultBins,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings no run can use. Suspect physical inputs are
// left to pipeline.Inputs.Warnings.
func (c *Config) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Bins <= 0 {
		return fmt.Errorf("bins must be positive, got %d", c.Bins)
	}
	return nil
}

func (m MeasurementConfig) measurement() pipeline.Measurement {
	return pipeline.Measurement{Nominal: m.Nominal, RelErr: m.Error}
}

func (c *Config) PipelineInputs() pipeline.Inputs {
	return pipeline.Inputs{
		Altitude:         c.Inputs.Altitude.measurement(),
		Temperature:      c.Inputs.Temperature.measurement(),
		DeltaPressure:    c.Inputs.DeltaPressure.measurement(),
		RelativeHumidity: c.Inputs.RelativeHumidity.measurement(),
		LiftCoefficient:  c.Inputs.LiftCoefficient,
		WingArea:         c.Inputs.WingArea,
	}
}

func (c *Config) EnsembleConfig() pipeline.EnsembleConfig {
	return pipeline.EnsembleConfig{
		Trials:  c.Trials,
		Seed:    c.Seed,
		Workers: c.Workers,
	}
}

// Clone returns an independent copy, so presets are never mutated.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

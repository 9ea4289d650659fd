package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/liftsim/internal/metrics"
	"github.com/san-kum/liftsim/internal/pipeline"
)

const (
	metadataFile = "metadata.json"
	trialsFile   = "trials.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type MeasurementRecord struct {
	Nominal float64 `json:"nominal"`
	Error   float64 `json:"error"`
}

type InputsRecord struct {
	Altitude         MeasurementRecord `json:"altitude"`
	Temperature      MeasurementRecord `json:"temperature"`
	DeltaPressure    MeasurementRecord `json:"delta_pressure"`
	RelativeHumidity MeasurementRecord `json:"relative_humidity"`
	LiftCoefficient  float64           `json:"lift_coefficient"`
	WingArea         float64           `json:"wing_area"`
}

func inputsRecord(in pipeline.Inputs) InputsRecord {
	rec := func(m pipeline.Measurement) MeasurementRecord {
		return MeasurementRecord{Nominal: m.Nominal, Error: m.RelErr}
	}
	return InputsRecord{
		Altitude:         rec(in.Altitude),
		Temperature:      rec(in.Temperature),
		DeltaPressure:    rec(in.DeltaPressure),
		RelativeHumidity: rec(in.RelativeHumidity),
		LiftCoefficient:  in.LiftCoefficient,
		WingArea:         in.WingArea,
	}
}

type RunMetadata struct {
	ID        string                     `json:"id"`
	Preset    string                     `json:"preset,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
	Seed      int64                      `json:"seed"`
	Trials    int                        `json:"trials"`
	Failures  int                        `json:"failures"`
	Inputs    InputsRecord               `json:"inputs"`
	Summary   map[string]metrics.Summary `json:"summary"`
}

var trialHeader = append(
	[]string{"trial", "altitude", "temperature", "delta_pressure", "relative_humidity"},
	pipeline.QuantityKeys...,
)

// Save writes metadata.json and trials.csv for a Monte Carlo run and
// returns the new run id.
func (s *Store) Save(preset string, in pipeline.Inputs, res *pipeline.EnsembleResult) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("mc_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: now,
		Seed:      res.Config.Seed,
		Trials:    res.Config.Trials,
		Failures:  len(res.Failures),
		Inputs:    inputsRecord(in),
		Summary:   res.Summary,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trialsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(trialHeader); err != nil {
		return "", err
	}

	// trial index is the seed offset; failed trials leave gaps
	idx := 0
	failed := make(map[int]bool, len(res.Failures))
	for _, f := range res.Failures {
		failed[f.Trial] = true
	}
	for _, t := range res.Trials {
		for failed[idx] {
			idx++
		}
		row := []string{
			strconv.Itoa(idx),
			formatFloat(t.Sample.Altitude),
			formatFloat(t.Sample.Temperature),
			formatFloat(t.Sample.DeltaPressure),
			formatFloat(t.Sample.RelativeHumidity),
		}
		for _, k := range pipeline.QuantityKeys {
			row = append(row, formatFloat(t.Value(k)))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
		idx++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrials reads back the successful trials of a run.
func (s *Store) LoadTrials(runID string) ([]*pipeline.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trialsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []*pipeline.Result{}, nil
	}

	results := make([]*pipeline.Result, 0, len(records)-1)
	for line, record := range records[1:] {
		if len(record) != len(trialHeader) {
			return nil, fmt.Errorf("%s line %d: expected %d columns, got %d", trialsFile, line+2, len(trialHeader), len(record))
		}
		vals := make([]float64, len(record)-1)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %s: %w", trialsFile, line+2, trialHeader[j], err)
			}
			vals[j-1] = v
		}

		results = append(results, &pipeline.Result{
			Sample: pipeline.Sample{
				Altitude:         vals[0],
				Temperature:      vals[1],
				DeltaPressure:    vals[2],
				RelativeHumidity: vals[3],
			},
			SaturationVaporPressure: vals[4],
			VaporPressure:           vals[5],
			TotalPressure:           vals[6],
			Density:                 vals[7],
			Velocity:                vals[8],
			LiftForce:               vals[9],
		})
	}

	return results, nil
}

package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/liftsim/internal/pipeline"
)

type TrialData struct {
	Sample     map[string]float64 `json:"sample"`
	Quantities map[string]float64 `json:"quantities"`
}

type ExportData struct {
	RunMetadata
	Results []TrialData `json:"results,omitempty"`
}

func exportData(meta *RunMetadata, trials []*pipeline.Result) ExportData {
	data := ExportData{
		RunMetadata: *meta,
		Results:     make([]TrialData, len(trials)),
	}
	for i, t := range trials {
		q := make(map[string]float64, len(pipeline.QuantityKeys))
		for _, k := range pipeline.QuantityKeys {
			q[k] = t.Value(k)
		}
		data.Results[i] = TrialData{
			Sample: map[string]float64{
				"altitude":          t.Sample.Altitude,
				"temperature":       t.Sample.Temperature,
				"delta_pressure":    t.Sample.DeltaPressure,
				"relative_humidity": t.Sample.RelativeHumidity,
			},
			Quantities: q,
		}
	}
	return data
}

// ExportJSON writes run metadata, and the trials when given, as indented
// JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, trials []*pipeline.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, trials))
}

func ExportJSONFile(path string, meta *RunMetadata, trials []*pipeline.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return ExportJSON(file, meta, trials)
}

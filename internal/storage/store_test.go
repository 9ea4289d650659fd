package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/liftsim/internal/pipeline"
)

func runEnsemble(t *testing.T, in pipeline.Inputs, trials int) *pipeline.EnsembleResult {
	t.Helper()
	res, err := pipeline.NewEnsemble(in, pipeline.EnsembleConfig{Trials: trials, Seed: 42, Workers: 2}).Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	in := pipeline.DefaultInputs()
	res := runEnsemble(t, in, 20)

	runID, err := st.Save("standard", in, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "standard" {
		t.Errorf("expected preset 'standard', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 || meta.Trials != 20 || meta.Failures != 0 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Inputs.DeltaPressure.Error != 0.05 {
		t.Errorf("expected dp error 0.05, got %f", meta.Inputs.DeltaPressure.Error)
	}
	if meta.Summary[pipeline.KeyLiftForce] != res.Summary[pipeline.KeyLiftForce] {
		t.Errorf("lift summary mismatch: %+v vs %+v", meta.Summary[pipeline.KeyLiftForce], res.Summary[pipeline.KeyLiftForce])
	}

	trials, err := st.LoadTrials(runID)
	if err != nil {
		t.Fatalf("load trials failed: %v", err)
	}
	if len(trials) != 20 {
		t.Fatalf("expected 20 trials, got %d", len(trials))
	}
	for i := range trials {
		if *trials[i] != *res.Trials[i] {
			t.Errorf("trial %d mismatch:\n got %+v\nwant %+v", i, trials[i], res.Trials[i])
		}
	}
}

func TestStoreSaveWithFailures(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	in := pipeline.DefaultInputs()
	in.DeltaPressure = pipeline.Measurement{Nominal: 10, RelErr: 2}
	res := runEnsemble(t, in, 50)
	if len(res.Failures) == 0 {
		t.Fatal("expected some failed trials")
	}

	runID, err := st.Save("", in, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Failures != len(res.Failures) {
		t.Errorf("expected %d failures, got %d", len(res.Failures), meta.Failures)
	}

	trials, err := st.LoadTrials(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trials) != len(res.Trials) {
		t.Errorf("expected %d trials, got %d", len(res.Trials), len(trials))
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	in := pipeline.DefaultInputs()
	res := runEnsemble(t, in, 5)
	first, err := st.Save("a", in, res)
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save("b", in, res)
	if err != nil {
		t.Fatal(err)
	}

	// stray files and broken run dirs are skipped
	if err := os.WriteFile(filepath.Join(st.baseDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(st.baseDir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadTrials("nope"); err == nil {
		t.Error("expected error for missing trials")
	}
}

func TestLoadTrialsMalformed(t *testing.T) {
	header := "trial,altitude,temperature,delta_pressure,relative_humidity,es,pv,ptotal,rho,velocity,lift"
	tests := []struct {
		name string
		csv  string
	}{
		{"extra column", header + ",extra\n0,1000,15,1000,0.7,1705,1193,90113,1.08,42.9,3700,oops\n"},
		{"missing column", "trial,altitude\n0,1000\n"},
		{"non-numeric value", header + "\n0,1000,15,1000,0.7,1705,1193,90113,bad,42.9,3700\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(dir, "broken"), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, "broken", trialsFile), []byte(tt.csv), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := New(dir).LoadTrials("broken"); err == nil {
				t.Error("expected error for malformed trials file")
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	in := pipeline.DefaultInputs()
	res := runEnsemble(t, in, 3)
	runID, err := st.Save("standard", in, res)
	if err != nil {
		t.Fatal(err)
	}
	meta, err := st.Load(runID)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, res.Trials); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded ExportData
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, decoded.ID)
	}
	if len(decoded.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(decoded.Results))
	}
	if decoded.Results[0].Quantities[pipeline.KeyLiftForce] != res.Trials[0].LiftForce {
		t.Error("exported lift does not match trial")
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSONFile(path, meta, nil); err != nil {
		t.Fatalf("file export failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

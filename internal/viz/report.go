package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/liftsim/internal/metrics"
	"github.com/san-kum/liftsim/internal/pipeline"
)

// FormatQuantity renders one quantity as "Label = 1.2345E+03 Unit".
func FormatQuantity(q pipeline.Quantity) string {
	return fmt.Sprintf("%-10s = %.4E  %s", q.Label, q.Value, q.Unit)
}

// RenderResult renders the six derived quantities of a single run, one
// per line.
func RenderResult(r *pipeline.Result, s Styles) string {
	var b strings.Builder
	for _, q := range r.Quantities() {
		b.WriteString(s.Label.Render(q.Label) + "= " +
			s.Value.Render(fmt.Sprintf("%.4E", q.Value)) + "  " +
			s.Unit.Render(q.Unit) + "\n")
	}
	return b.String()
}

// RenderSample renders the drawn input values of a run.
func RenderSample(smp pipeline.Sample, s Styles) string {
	rows := []struct {
		label string
		value float64
		unit  string
	}{
		{"Altitude", smp.Altitude, "m"},
		{"Temperature", smp.Temperature, "°C"},
		{"Delta P", smp.DeltaPressure, "Pa"},
		{"Humidity", smp.RelativeHumidity, ""},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(s.Label.Render(r.label) + "= " + s.Value.Render(fmt.Sprintf("%.4f", r.value)))
		if r.unit != "" {
			b.WriteString("  " + s.Unit.Render(r.unit))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderInputs renders the configured nominal readings and error bands.
func RenderInputs(in pipeline.Inputs, s Styles) string {
	rows := []struct {
		label string
		m     pipeline.Measurement
		unit  string
	}{
		{"Altitude", in.Altitude, "m"},
		{"Temperature", in.Temperature, "°C"},
		{"Delta P", in.DeltaPressure, "Pa"},
		{"Humidity", in.RelativeHumidity, ""},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(s.Label.Render(r.label) +
			s.Value.Render(fmt.Sprintf("%g ± %g%%", r.m.Nominal, r.m.RelErr*100)))
		if r.unit != "" {
			b.WriteString(" " + s.Unit.Render(r.unit))
		}
		b.WriteString("\n")
	}
	b.WriteString(s.Label.Render("Cl") + s.Value.Render(fmt.Sprintf("%g", in.LiftCoefficient)) + "\n")
	b.WriteString(s.Label.Render("Wing area") + s.Value.Render(fmt.Sprintf("%g", in.WingArea)) + " " + s.Unit.Render("m²") + "\n")
	return b.String()
}

func RenderWarnings(ws []pipeline.Warning, s Styles) string {
	var b strings.Builder
	for _, w := range ws {
		b.WriteString(s.Warning.Render("warning: ") + w.String() + "\n")
	}
	return b.String()
}

// RenderSummary renders a per-quantity table of ensemble statistics.
func RenderSummary(summary map[string]metrics.Summary, trials, failures int, s Styles) string {
	var b strings.Builder
	b.WriteString(s.Header.Render(fmt.Sprintf("Monte Carlo: %d trials, %d failed", trials, failures)) + "\n")
	b.WriteString(s.Subtle.Render(fmt.Sprintf("%-11s %12s %12s %8s %12s %12s %12s  %s",
		"quantity", "mean", "stddev", "spread", "p05", "p50", "p95", "unit")) + "\n")

	for _, k := range orderedKeys(summary) {
		sm := summary[k]
		label, unit, ok := pipeline.Describe(k)
		if !ok {
			label = k
		}
		line := fmt.Sprintf("%-11s %12.4E %12.4E %7.3f%% %12.4E %12.4E %12.4E  %s",
			label, sm.Mean, sm.StdDev, sm.RelativeSpread()*100, sm.P05, sm.P50, sm.P95, unit)
		if k == pipeline.KeyLiftForce {
			b.WriteString(s.Value.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// orderedKeys returns the known quantity keys first, in reporting order,
// then any others sorted.
func orderedKeys(summary map[string]metrics.Summary) []string {
	keys := make([]string, 0, len(summary))
	seen := make(map[string]bool, len(summary))
	for _, k := range pipeline.QuantityKeys {
		if _, ok := summary[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range summary {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// RenderHistogram plots the distribution of values as an ascii graph of
// bin counts.
func RenderHistogram(values []float64, bins int, caption string) string {
	counts, _ := metrics.Histogram(values, bins)
	if len(counts) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	width := bins * 3
	if width < 30 {
		width = 30
	}
	graph := asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s  [%.4g .. %.4g]", caption, lo, hi)),
	)
	return graph + "\n"
}

// RenderConvergence plots a running statistic against trial count.
func RenderConvergence(series []float64, caption string, height, width int) string {
	if len(series) < 2 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

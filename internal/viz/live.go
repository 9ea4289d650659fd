package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/liftsim/internal/metrics"
	"github.com/san-kum/liftsim/internal/pipeline"
)

const (
	historyCapacity = 600
	sampleCapacity  = 5000
	tickInterval    = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// LiveModel streams Monte Carlo trials into running statistics, a
// convergence plot of the mean lift and a lift histogram.
type LiveModel struct {
	inputs pipeline.Inputs
	seed   int64
	limit  int
	batch  int
	bins   int

	next     int
	failures int
	lastErr  error
	running  bool
	showHelp bool
	theme    Theme

	stats       map[string]*metrics.Running
	meanHistory []float64
	lifts       []float64
}

// NewLiveModel runs trials seed, seed+1, ... in batches per frame, stopping
// after limit trials (0 runs until quit).
func NewLiveModel(in pipeline.Inputs, seed int64, limit, batch, bins int) LiveModel {
	if batch <= 0 {
		batch = 1
	}
	if bins <= 0 {
		bins = 20
	}
	m := LiveModel{
		inputs:  in,
		seed:    seed,
		limit:   limit,
		batch:   batch,
		bins:    bins,
		running: true,
		theme:   CurrentTheme,
	}
	m.reset()
	return m
}

func (m *LiveModel) reset() {
	m.next = 0
	m.failures = 0
	m.lastErr = nil
	m.stats = make(map[string]*metrics.Running, len(pipeline.QuantityKeys))
	for _, k := range pipeline.QuantityKeys {
		m.stats[k] = metrics.NewRunning()
	}
	m.meanHistory = make([]float64, 0, historyCapacity)
	m.lifts = make([]float64, 0, 256)
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.Done() {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step runs one batch of trials.
func (m *LiveModel) step() {
	for i := 0; i < m.batch && !m.Done(); i++ {
		res, err := pipeline.RunSeeded(m.inputs, m.seed+int64(m.next))
		m.next++
		if err != nil {
			m.failures++
			m.lastErr = err
			continue
		}
		for _, k := range pipeline.QuantityKeys {
			m.stats[k].Observe(res.Value(k))
		}
		if len(m.lifts) < sampleCapacity {
			m.lifts = append(m.lifts, res.LiftForce)
		}
	}

	lift := m.stats[pipeline.KeyLiftForce]
	if lift.Count() > 0 {
		m.meanHistory = append(m.meanHistory, lift.Values()["mean"])
		if len(m.meanHistory) > historyCapacity {
			m.meanHistory = m.meanHistory[1:]
		}
	}
}

// Trials is the number of trials run so far, failed ones included.
func (m LiveModel) Trials() int { return m.next }

func (m LiveModel) Failures() int { return m.failures }

func (m LiveModel) Running() bool { return m.running }

// Done reports whether the trial limit has been reached.
func (m LiveModel) Done() bool { return m.limit > 0 && m.next >= m.limit }

// Stats returns the running statistics of a quantity.
func (m LiveModel) Stats(key string) map[string]float64 {
	r, ok := m.stats[key]
	if !ok {
		return nil
	}
	return r.Values()
}

func (m LiveModel) View() string {
	s := NewStyles(m.theme)

	status := s.Success.Render("RUNNING")
	switch {
	case m.Done():
		status = s.Success.Render("DONE")
	case !m.running:
		status = s.Warning.Render("PAUSED")
	}

	var left strings.Builder
	left.WriteString(s.Title.Render("LIFT MONTE CARLO") + "  " + status + "\n\n")
	left.WriteString(s.Label.Render("Trials") + s.Value.Render(fmt.Sprintf("%d", m.next)) + "\n")
	left.WriteString(s.Label.Render("Failed") + s.Value.Render(fmt.Sprintf("%d", m.failures)) + "\n")
	if m.limit > 0 {
		left.WriteString(ProgressBar(float64(m.next)/float64(m.limit), 30, s) + "\n")
	}
	left.WriteString("\n")

	for _, k := range pipeline.QuantityKeys {
		label, unit, _ := pipeline.Describe(k)
		v := m.stats[k].Values()
		left.WriteString(s.Label.Render(label) +
			s.Value.Render(fmt.Sprintf("%.4E ± %.2E", v["mean"], v["stddev"])) + " " +
			s.Unit.Render(unit) + "\n")
	}
	if m.lastErr != nil {
		left.WriteString("\n" + s.Error.Render("last failure: ") + m.lastErr.Error() + "\n")
	}
	left.WriteString("\n" + Separator(40, s) + "\n")
	left.WriteString(s.Subtle.Render("SP:Pause R:Reset T:Theme ?:Help Q:Quit"))

	var right strings.Builder
	if chart := RenderConvergence(m.meanHistory, "mean lift (N) per frame", 6, 50); chart != "" {
		right.WriteString(chart + "\n\n")
	}
	right.WriteString(RenderHistogram(m.lifts, m.bins, "lift distribution (N)"))

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		s.Panel.Render(left.String()),
		lipgloss.NewStyle().Padding(0, 2).Render(right.String()),
	)
	if m.showHelp {
		help := s.Panel.Render(strings.Join([]string{
			"Space  pause/resume trials",
			"R      discard statistics and restart at the first seed",
			"T      cycle color theme",
			"?      toggle this help",
			"Q      quit",
		}, "\n"))
		return help + "\n\n" + view
	}
	return view
}

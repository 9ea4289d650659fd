package metrics

import "math"

// Metric accumulates observations of one scalar quantity.
type Metric interface {
	Name() string
	Observe(v float64)
	Value() float64
	Reset()
}

type Mean struct {
	sum     float64
	samples int
}

func NewMean() *Mean { return &Mean{} }

func (m *Mean) Name() string { return "mean" }

func (m *Mean) Observe(v float64) {
	m.sum += v
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// StdDev is the sample standard deviation, accumulated with Welford's
// update.
type StdDev struct {
	samples int
	mean    float64
	m2      float64
}

func NewStdDev() *StdDev { return &StdDev{} }

func (s *StdDev) Name() string { return "stddev" }

func (s *StdDev) Observe(v float64) {
	s.samples++
	delta := v - s.mean
	s.mean += delta / float64(s.samples)
	s.m2 += delta * (v - s.mean)
}

func (s *StdDev) Value() float64 {
	if s.samples < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.samples-1))
}

func (s *StdDev) Reset() {
	s.samples = 0
	s.mean = 0
	s.m2 = 0
}

type Min struct {
	min     float64
	samples int
}

func NewMin() *Min { return &Min{} }

func (m *Min) Name() string { return "min" }

func (m *Min) Observe(v float64) {
	if m.samples == 0 || v < m.min {
		m.min = v
	}
	m.samples++
}

func (m *Min) Value() float64 { return m.min }

func (m *Min) Reset() {
	m.min = 0
	m.samples = 0
}

type Max struct {
	max     float64
	samples int
}

func NewMax() *Max { return &Max{} }

func (m *Max) Name() string { return "max" }

func (m *Max) Observe(v float64) {
	if m.samples == 0 || v > m.max {
		m.max = v
	}
	m.samples++
}

func (m *Max) Value() float64 { return m.max }

func (m *Max) Reset() {
	m.max = 0
	m.samples = 0
}

// Running tracks count, mean, stddev, min and max of a stream without
// retaining the values.
type Running struct {
	count   int
	metrics []Metric
}

func NewRunning() *Running {
	return &Running{
		metrics: []Metric{NewMean(), NewStdDev(), NewMin(), NewMax()},
	}
}

func (r *Running) Observe(v float64) {
	r.count++
	for _, m := range r.metrics {
		m.Observe(v)
	}
}

func (r *Running) Count() int { return r.count }

// Values returns the current value of each tracked metric keyed by name.
func (r *Running) Values() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Running) Reset() {
	r.count = 0
	for _, m := range r.metrics {
		m.Reset()
	}
}

// Package uncertain represents measurements known only within a bounded
// relative error.
//
// A [Value] is an interval [lo, hi] around a nominal reading. Consumers do
// not carry the interval through their computations; they call
// [Value.Sample] once per evaluation and work with the drawn scalar.
//
//	alt := uncertain.New(1000, 0.01) // 1000 m ± 1%
//	h := alt.Sample(rand.New(rand.NewSource(seed)))
package uncertain

// Source yields uniformly distributed values in [0, 1). *rand.Rand
// satisfies it.
type Source interface {
	Float64() float64
}

// Value is an immutable interval built from a nominal reading and a
// relative error fraction.
type Value struct {
	nominal float64
	relErr  float64
	lo, hi  float64
}

// New builds the interval [nominal*(1-relErr), nominal*(1+relErr)].
// The endpoints are stored ordered, so a negative nominal or a negative
// error fraction still yields lo <= hi. No validation is done.
func New(nominal, relErr float64) Value {
	a := nominal * (1 - relErr)
	b := nominal * (1 + relErr)
	if a > b {
		a, b = b, a
	}
	return Value{nominal: nominal, relErr: relErr, lo: a, hi: b}
}

// Sample draws one value uniformly from [lo, hi]. Every call is an
// independent draw.
func (v Value) Sample(src Source) float64 {
	if v.lo == v.hi {
		return v.lo
	}
	return v.lo + src.Float64()*(v.hi-v.lo)
}

// Bounds returns the interval endpoints, lo <= hi.
func (v Value) Bounds() (lo, hi float64) { return v.lo, v.hi }

// Nominal returns the reading the interval was built around.
func (v Value) Nominal() float64 { return v.nominal }

// RelErr returns the relative error fraction as given to New.
func (v Value) RelErr() float64 { return v.relErr }

// Width is hi - lo.
func (v Value) Width() float64 { return v.hi - v.lo }

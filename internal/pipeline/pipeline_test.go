package pipeline_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/liftsim/internal/physics"
	"github.com/san-kum/liftsim/internal/pipeline"
)

var _ = Describe("Pipeline", func() {
	var in pipeline.Inputs

	BeforeEach(func() {
		in = pipeline.DefaultInputs()
	})

	Context("with zero error fractions", func() {
		var res *pipeline.Result

		BeforeEach(func() {
			var err error
			res, err = pipeline.Run(in.Exact(), rand.New(rand.NewSource(1)))
			Expect(err).NotTo(HaveOccurred())
		})

		It("samples the nominal values", func() {
			Expect(res.Sample).To(Equal(pipeline.Sample{
				Altitude:         1000,
				Temperature:      15,
				DeltaPressure:    1000,
				RelativeHumidity: 0.7,
			}))
		})

		It("reproduces the reference atmosphere", func() {
			Expect(res.SaturationVaporPressure).To(BeNumerically("~", 1705.23, 0.1))
			Expect(res.VaporPressure).To(BeNumerically("~", 1193.66, 0.1))
			Expect(res.TotalPressure).To(BeNumerically("~", 90113.06, 90))
		})

		It("reproduces the reference flow and lift", func() {
			Expect(res.Density).To(BeNumerically("~", 1.08401, 0.001))
			Expect(res.Velocity).To(BeNumerically("~", 42.954, 0.05))
			Expect(res.LiftForce).To(BeNumerically("~", 3700, 0.01))
		})

		It("is bit-identical across evaluations", func() {
			again, err := pipeline.Evaluate(in, res.Sample)
			Expect(err).NotTo(HaveOccurred())
			Expect(math.Float64bits(again.LiftForce)).To(Equal(math.Float64bits(res.LiftForce)))
			Expect(*again).To(Equal(*res))
		})

		It("lists quantities in reporting order with units", func() {
			qs := res.Quantities()
			Expect(qs).To(HaveLen(6))

			keys := make([]string, len(qs))
			units := make([]string, len(qs))
			for i, q := range qs {
				keys[i] = q.Key
				units[i] = q.Unit
			}
			Expect(keys).To(Equal(pipeline.QuantityKeys))
			Expect(units).To(Equal([]string{"Pa", "Pa", "Pa", "kg/m³", "m/s", "N"}))
			Expect(qs[5].Value).To(Equal(res.LiftForce))
		})

		It("returns NaN for an unknown quantity", func() {
			Expect(math.IsNaN(res.Value("nope"))).To(BeTrue())
		})
	})

	Describe("Draw", func() {
		It("keeps every input inside its interval", func() {
			rng := rand.New(rand.NewSource(9))
			for i := 0; i < 500; i++ {
				s := pipeline.Draw(in, rng)
				Expect(s.Altitude).To(BeNumerically(">=", 990))
				Expect(s.Altitude).To(BeNumerically("<=", 1010))
				Expect(s.Temperature).To(BeNumerically(">=", 14.85))
				Expect(s.Temperature).To(BeNumerically("<=", 15.15))
				Expect(s.DeltaPressure).To(BeNumerically(">=", 950))
				Expect(s.DeltaPressure).To(BeNumerically("<=", 1050))
				Expect(s.RelativeHumidity).To(BeNumerically(">=", 0.693))
				Expect(s.RelativeHumidity).To(BeNumerically("<=", 0.707))
			}
		})

		It("is reproducible for a fixed seed", func() {
			a, err := pipeline.RunSeeded(in, 42)
			Expect(err).NotTo(HaveOccurred())
			b, err := pipeline.RunSeeded(in, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(*a).To(Equal(*b))
		})
	})

	Describe("Evaluate", func() {
		It("increases lift with differential pressure", func() {
			s := pipeline.Sample{Altitude: 1000, Temperature: 15, RelativeHumidity: 0.7}
			prev := -1.0
			for dp := 100.0; dp <= 3000; dp += 100 {
				s.DeltaPressure = dp
				res, err := pipeline.Evaluate(in, s)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.LiftForce).To(BeNumerically(">", prev))
				prev = res.LiftForce
			}
		})

		It("returns zero velocity for zero differential pressure", func() {
			res, err := pipeline.Evaluate(in, pipeline.Sample{Altitude: 1000, Temperature: 15, RelativeHumidity: 0.7})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Velocity).To(BeZero())
			Expect(res.LiftForce).To(BeZero())
		})

		It("surfaces negative differential pressure as a domain error", func() {
			s := pipeline.Sample{Altitude: 1000, Temperature: 15, DeltaPressure: -50, RelativeHumidity: 0.7}
			res, err := pipeline.Evaluate(in, s)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(physics.ErrDomain))

			var se *pipeline.StageError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Stage).To(Equal(pipeline.StageVelocity))
			Expect(se.Sample).To(Equal(s))
		})

		It("surfaces absolute zero as a singularity", func() {
			_, err := pipeline.Evaluate(in, pipeline.Sample{Altitude: 0, Temperature: -273.15, DeltaPressure: 100, RelativeHumidity: 0.5})
			Expect(err).To(MatchError(physics.ErrSingularity))
		})

		It("surfaces non-finite lift", func() {
			in.LiftCoefficient = math.Inf(1)
			_, err := pipeline.Evaluate(in, pipeline.Sample{Altitude: 1000, Temperature: 15, DeltaPressure: 100, RelativeHumidity: 0.5})
			Expect(err).To(MatchError(physics.ErrNonFinite))
		})
	})

	Describe("Warnings", func() {
		It("accepts the defaults silently", func() {
			Expect(in.Warnings()).To(BeEmpty())
		})

		It("flags humidity outside [0, 1]", func() {
			in.RelativeHumidity = pipeline.Measurement{Nominal: 0.99, RelErr: 0.05}
			ws := in.Warnings()
			Expect(ws).To(HaveLen(1))
			Expect(ws[0].Field).To(Equal("relative_humidity"))
		})

		It("flags negative and oversized error fractions", func() {
			in.Altitude.RelErr = -0.1
			in.DeltaPressure.RelErr = 1.5

			fields := []string{}
			for _, w := range in.Warnings() {
				fields = append(fields, w.Field)
			}
			Expect(fields).To(ContainElements("altitude", "delta_pressure"))
		})

		It("formats a warning with its field", func() {
			w := pipeline.Warning{Field: "altitude", Message: "bad"}
			Expect(w.String()).To(Equal("altitude: bad"))
		})
	})
})

package pipeline_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/liftsim/internal/physics"
	"github.com/san-kum/liftsim/internal/pipeline"
)

type countingObserver struct {
	mu       sync.Mutex
	seen     map[int]bool
	failures int
}

func (c *countingObserver) OnTrial(trial int, res *pipeline.Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen[trial] = true
	if err != nil {
		c.failures++
	}
}

var _ = Describe("Ensemble", func() {
	var (
		in  pipeline.Inputs
		cfg pipeline.EnsembleConfig
	)

	BeforeEach(func() {
		in = pipeline.DefaultInputs()
		cfg = pipeline.EnsembleConfig{Trials: 400, Seed: 7, Workers: 4}
	})

	It("summarizes lift around Cl*dp*A", func() {
		res, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trials).To(HaveLen(400))
		Expect(res.Failures).To(BeEmpty())

		lift := res.Summary[pipeline.KeyLiftForce]
		Expect(lift.Count).To(Equal(400))
		// dp is uniform on [950, 1050], so lift is uniform on [3515, 3885]
		Expect(lift.Mean).To(BeNumerically("~", 3700, 25))
		Expect(lift.Min).To(BeNumerically(">=", 3515-1e-6))
		Expect(lift.Max).To(BeNumerically("<=", 3885+1e-6))
		Expect(lift.P05).To(BeNumerically("<", lift.P50))
		Expect(lift.P50).To(BeNumerically("<", lift.P95))
		Expect(lift.StdDev).To(BeNumerically(">", 0))
	})

	It("covers every derived quantity", func() {
		res, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		for _, k := range pipeline.QuantityKeys {
			Expect(res.Summary).To(HaveKey(k))
		}
		Expect(res.Values(pipeline.KeyDensity)).To(HaveLen(400))
	})

	It("gives identical trials for any worker count", func() {
		cfg.Workers = 1
		serial, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		cfg.Workers = 7
		parallel, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel.Values(pipeline.KeyLiftForce)).To(Equal(serial.Values(pipeline.KeyLiftForce)))
		Expect(parallel.Summary).To(Equal(serial.Summary))
	})

	It("matches a single seeded run for each trial", func() {
		cfg.Trials = 3
		res, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		one, err := pipeline.RunSeeded(in, cfg.Seed+2)
		Expect(err).NotTo(HaveOccurred())
		Expect(*res.Trials[2]).To(Equal(*one))
	})

	It("collects failed trials and summarizes the rest", func() {
		in.DeltaPressure = pipeline.Measurement{Nominal: 10, RelErr: 2}
		obs := &countingObserver{seen: map[int]bool{}}

		e := pipeline.NewEnsemble(in, cfg)
		e.AddObserver(obs)
		res, err := e.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Failures).NotTo(BeEmpty())
		Expect(res.Trials).NotTo(BeEmpty())
		Expect(len(res.Failures) + len(res.Trials)).To(Equal(cfg.Trials))
		Expect(res.Summary[pipeline.KeyLiftForce].Count).To(Equal(len(res.Trials)))
		Expect(res.Summary[pipeline.KeyLiftForce].Min).To(BeNumerically(">=", 0))

		causes := res.FailureCauses(physics.ErrDomain, physics.ErrSingularity)
		Expect(causes[physics.ErrDomain]).To(Equal(len(res.Failures)))
		Expect(res.Failures[0]).To(MatchError(physics.ErrDomain))

		Expect(obs.seen).To(HaveLen(cfg.Trials))
		Expect(obs.failures).To(Equal(len(res.Failures)))
	})

	It("reports when no trial succeeds", func() {
		in.DeltaPressure = pipeline.Measurement{Nominal: -100, RelErr: 0.01}
		res, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).To(MatchError(pipeline.ErrNoValidTrials))
		Expect(err).To(MatchError(physics.ErrDomain))
		Expect(res.Failures).To(HaveLen(cfg.Trials))
	})

	It("stops on a canceled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pipeline.NewEnsemble(in, cfg).Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})

	DescribeTable("rejects invalid configurations",
		func(c pipeline.EnsembleConfig) {
			_, err := pipeline.NewEnsemble(in, c).Run(context.Background())
			Expect(err).To(HaveOccurred())
		},
		Entry("zero trials", pipeline.EnsembleConfig{Trials: 0, Workers: 1}),
		Entry("negative trials", pipeline.EnsembleConfig{Trials: -5, Workers: 1}),
		Entry("negative workers", pipeline.EnsembleConfig{Trials: 10, Workers: -1}),
	)

	It("treats zero workers as serial", func() {
		cfg.Workers = 0
		cfg.Trials = 5
		res, err := pipeline.NewEnsemble(in, cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Trials).To(HaveLen(5))
	})
})

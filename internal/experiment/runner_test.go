package experiment_test

import (
	"bytes"
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/history"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/scenario"
)

const startYear = 2023

var defaultIC = experiment.InitialConditions{
	RenewableCapacity: 26200,
	Investment:        2.9,
	Infrastructure:    50.0,
	TotalCapacity:     95400,
}

func newRunner(reg *scenario.Registry, opts ...experiment.Option) *experiment.Runner {
	r, err := experiment.NewRunner(reg, startYear, opts...)
	Expect(err).NotTo(HaveOccurred())
	return r
}

func capacities(res *projection.Result) []float64 {
	c, err := res.Column("renewable_capacity")
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Runner", func() {
	var (
		ctx    context.Context
		runner *experiment.Runner
	)

	BeforeEach(func() {
		ctx = context.Background()
		runner = newRunner(scenario.Default())
	})

	Describe("RunOne", func() {
		It("emits the contiguous year sequence for every registered scenario", func() {
			for _, id := range scenario.Default().IDs() {
				res, err := runner.RunOne(ctx, id, defaultIC, 2040)
				Expect(err).NotTo(HaveOccurred(), id)

				want := make([]int, 0, 18)
				for y := startYear; y <= 2040; y++ {
					want = append(want, y)
				}
				Expect(res.Years()).To(Equal(want), id)
				Expect(res.Scenario).To(Equal(id))
				for _, row := range res.Rows {
					Expect(row.Scenario).To(Equal(id))
				}
			}
		})

		It("is idempotent", func() {
			a, err := runner.RunOne(ctx, scenario.CombinedPolicy, defaultIC, 2050)
			Expect(err).NotTo(HaveOccurred())
			b, err := runner.RunOne(ctx, scenario.CombinedPolicy, defaultIC, 2050)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Rows).To(Equal(b.Rows))
		})

		It("keeps the denominator independent of the scenario", func() {
			a, err := runner.RunOne(ctx, scenario.BusinessAsUsual, defaultIC, 2045)
			Expect(err).NotTo(HaveOccurred())
			b, err := runner.RunOne(ctx, scenario.CombinedPolicy, defaultIC, 2045)
			Expect(err).NotTo(HaveOccurred())

			ta, _ := a.Column("total_capacity")
			tb, _ := b.Column("total_capacity")
			Expect(ta).To(Equal(tb))
			Expect(ta[0]).To(Equal(95400.0))
			Expect(ta[1]).To(BeNumerically("~", 95400*math.Exp(0.05), 1e-9))
		})

		It("projects the three-year baseline example", func() {
			res, err := runner.RunOne(ctx, scenario.BusinessAsUsual, defaultIC, 2025)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Years()).To(Equal([]int{2023, 2024, 2025}))
			first := res.First()
			Expect(float64(first.RenewableCapacity)).To(Equal(26200.0))
			Expect(float64(first.Investment)).To(Equal(2.9))
			Expect(float64(first.Infrastructure)).To(Equal(50.0))
			Expect(float64(first.RenewableShare)).To(BeNumerically("~", 26200.0/95400*100, 1e-12))

			// δ·C (≈524 MW/yr) dominates the build term (≈3 MW/yr) at
			// these initial conditions, so capacity depreciates.
			c := capacities(res)
			Expect(c[1]).To(BeNumerically("<", c[0]))
			Expect(c[2]).To(BeNumerically("<", c[1]))
			Expect(c[1]).To(BeNumerically("~", 25684, 1))
		})

		It("grows baseline capacity when investment outweighs depreciation", func() {
			ic := defaultIC
			ic.Investment = 600

			res, err := runner.RunOne(ctx, scenario.BusinessAsUsual, ic, 2040)
			Expect(err).NotTo(HaveOccurred())

			c := capacities(res)
			for i := 1; i < len(c); i++ {
				Expect(c[i]).To(BeNumerically(">", c[i-1]), "year %d", startYear+i)
			}
			Expect(c[len(c)-1]).To(BeNumerically("<", scenario.DefaultMaxCapacity))
		})

		It("does not clamp the renewable share", func() {
			aggressive := scenario.Scenario{
				ID:                  "aggressive",
				InvestmentGrowth:    0.2,
				TechImprovement:     0.5,
				InfrastructureCoeff: 0.5,
				Depreciation:        0.02,
				PolicyEffectiveness: 2.0,
				MaxCapacity:         1e7,
			}
			reg, err := scenario.NewRegistry(aggressive)
			Expect(err).NotTo(HaveOccurred())

			ic := defaultIC
			ic.Investment = 1000
			ic.Infrastructure = 500

			res, err := newRunner(reg).RunOne(ctx, "aggressive", ic, 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(res.Last().RenewableShare)).To(BeNumerically(">", 100))
		})

		It("fails with ErrNotFound for an unknown scenario", func() {
			_, err := runner.RunOne(ctx, "nonexistent_scenario", defaultIC, 2040)
			Expect(err).To(MatchError(scenario.ErrNotFound))
		})

		It("fails with ErrInvalidHorizon when the end year is not after the start year", func() {
			_, err := runner.RunOne(ctx, scenario.BusinessAsUsual, defaultIC, startYear)
			Expect(err).To(MatchError(experiment.ErrInvalidHorizon))

			_, err = runner.RunOne(ctx, scenario.BusinessAsUsual, defaultIC, startYear-5)
			Expect(err).To(MatchError(experiment.ErrInvalidHorizon))
		})

		It("fails with ErrInvalidScenario for a non-positive ceiling", func() {
			reg, err := scenario.Default().Override(scenario.StrictRegulation, func(s *scenario.Scenario) {
				s.MaxCapacity = -1
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = newRunner(reg).RunOne(ctx, scenario.StrictRegulation, defaultIC, 2030)
			Expect(err).To(MatchError(scenario.ErrInvalidScenario))
		})

		It("agrees across integrators", func() {
			adaptive, err := runner.RunOne(ctx, scenario.CombinedPolicy, defaultIC, 2050)
			Expect(err).NotTo(HaveOccurred())

			fixed, err := newRunner(scenario.Default(), experiment.WithIntegrator("rk4")).
				RunOne(ctx, scenario.CombinedPolicy, defaultIC, 2050)
			Expect(err).NotTo(HaveOccurred())

			a, f := capacities(adaptive), capacities(fixed)
			for i := range a {
				Expect(a[i]).To(BeNumerically("~", f[i], 1e-4*math.Abs(f[i])))
			}
		})
	})

	Describe("RunAll", func() {
		It("returns one outcome per scenario in registry order", func() {
			batch, err := runner.RunAll(ctx, defaultIC, 2030)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, len(batch.Outcomes))
			for i, o := range batch.Outcomes {
				Expect(o.OK()).To(BeTrue())
				ids[i] = o.Scenario
			}
			Expect(ids).To(Equal(scenario.Default().IDs()))
			Expect(batch.Rows()).To(HaveLen(4 * 8))
			Expect(batch.Failures()).To(BeEmpty())
		})

		It("matches RunOne regardless of worker count", func() {
			serial, err := newRunner(scenario.Default(), experiment.WithWorkers(1)).RunAll(ctx, defaultIC, 2040)
			Expect(err).NotTo(HaveOccurred())
			parallel, err := newRunner(scenario.Default(), experiment.WithWorkers(4)).RunAll(ctx, defaultIC, 2040)
			Expect(err).NotTo(HaveOccurred())

			Expect(parallel.Rows()).To(Equal(serial.Rows()))

			one, err := runner.RunOne(ctx, scenario.StrictRegulation, defaultIC, 2040)
			Expect(err).NotTo(HaveOccurred())
			got, ok := parallel.Get(scenario.StrictRegulation)
			Expect(ok).To(BeTrue())
			Expect(got.Rows).To(Equal(one.Rows))
		})

		It("skips a corrupted scenario and logs it", func() {
			reg, err := scenario.Default().Override(scenario.InvestmentIncentive, func(s *scenario.Scenario) {
				s.MaxCapacity = 0
			})
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			r := newRunner(reg, experiment.WithLogger(zerolog.New(&buf)))

			batch, err := r.RunAll(ctx, defaultIC, 2040)
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Results()).To(HaveLen(3))

			failures := batch.Failures()
			Expect(failures).To(HaveLen(1))
			Expect(failures[0].Scenario).To(Equal(scenario.InvestmentIncentive))
			Expect(failures[0].Err).To(MatchError(scenario.ErrInvalidScenario))

			_, ok := batch.Get(scenario.InvestmentIncentive)
			Expect(ok).To(BeFalse())
			Expect(buf.String()).To(ContainSubstring("scenario skipped"))
			Expect(buf.String()).To(ContainSubstring(scenario.InvestmentIncentive))
		})

		It("fails with ErrNoScenarioSucceeded when every scenario fails", func() {
			reg := scenario.Default()
			for _, id := range reg.IDs() {
				var err error
				reg, err = reg.Override(id, func(s *scenario.Scenario) { s.MaxCapacity = 0 })
				Expect(err).NotTo(HaveOccurred())
			}

			batch, err := newRunner(reg).RunAll(ctx, defaultIC, 2040)
			Expect(err).To(MatchError(experiment.ErrNoScenarioSucceeded))
			Expect(err).To(MatchError(scenario.ErrInvalidScenario))
			Expect(batch.Failures()).To(HaveLen(4))
		})

		It("rejects an invalid horizon before running anything", func() {
			batch, err := runner.RunAll(ctx, defaultIC, startYear)
			Expect(err).To(MatchError(experiment.ErrInvalidHorizon))
			Expect(batch).To(BeNil())
		})

		It("stops when the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := runner.RunAll(canceled, defaultIC, 2040)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("NewRunner", func() {
		It("rejects an unknown integrator", func() {
			_, err := experiment.NewRunner(scenario.Default(), startYear, experiment.WithIntegrator("leapfrog"))
			Expect(err).To(HaveOccurred())
		})

		It("rejects a nil registry", func() {
			_, err := experiment.NewRunner(nil, startYear)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("FromHistory", func() {
		It("takes capacity from the last record and keeps the fixed defaults", func() {
			ic := experiment.FromHistory(history.Proxy(), experiment.DefaultInvestment, experiment.DefaultInfrastructure)
			Expect(ic).To(Equal(defaultIC))
		})

		It("substitutes the default total capacity", func() {
			d, err := history.New([]history.Record{{Year: 2023, RenewableCapacity: 100}})
			Expect(err).NotTo(HaveOccurred())

			ic := experiment.FromHistory(d, 1, 2)
			Expect(ic.TotalCapacity).To(Equal(history.DefaultTotalCapacity))
		})
	})
})

package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/clbench/exemplar-planner/internal/sweep"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingComputer struct {
	calls atomic.Int32
	err   error
}

func (c *countingComputer) Compute(cfg budget.ExperimentConfig) (budget.BudgetResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return budget.BudgetResult{}, c.err
	}
	return budget.BudgetResult{TotalExemplars: int64(cfg.InitCls)}, nil
}

var _ = Describe("Runner", func() {
	var (
		planner   *sweep.Planner
		converter *budget.Converter
		opts      sweep.Options
	)

	BeforeEach(func() {
		converter = budget.NewConverter()
		planner = sweep.NewPlanner(budget.NewParamTable(convnet.Default()))
		opts = sweep.Options{InitCls: 10, Increment: 10, MemorySize: budget.DefaultMemorySize}
	})

	It("returns rows in plan order matching sequential computation", func() {
		jobs, err := planner.Plan(budget.ProtocolAUC, opts, sweep.Filter{})
		Expect(err).To(BeNil())

		rows, err := sweep.NewRunner(converter, sweep.WithWorkers(8)).Run(context.Background(), jobs)
		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(len(jobs)))

		for i, row := range rows {
			Expect(row.Job).To(Equal(jobs[i]))
			want, err := converter.Compute(jobs[i].Config)
			Expect(err).To(BeNil())
			Expect(row.Result).To(Equal(want))
		}
	})

	It("computes the fair sweep", func() {
		jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{})
		Expect(err).To(BeNil())

		rows, err := sweep.NewRunner(converter).Run(context.Background(), jobs)
		Expect(err).To(BeNil())
		Expect(rows[0].Result.TotalExemplars).To(Equal(int64(7431)))
		Expect(rows[1].Result.TotalExemplars).To(Equal(int64(3312)))
	})

	It("fails the whole sweep on a policy violation", func() {
		jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{Models: []string{"icarl", "der"}})
		Expect(err).To(BeNil())

		rows, err := sweep.NewRunner(converter, sweep.WithWorkers(1)).Run(context.Background(), jobs)
		Expect(rows).To(BeNil())
		Expect(budget.IsPolicyViolation(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("der/cifar100"))
	})

	It("stops scheduling after the first error", func() {
		computer := &countingComputer{err: errors.New("boom")}
		jobs, err := planner.Plan(budget.ProtocolAUC, opts, sweep.Filter{})
		Expect(err).To(BeNil())

		_, err = sweep.NewRunner(computer, sweep.WithWorkers(1)).Run(context.Background(), jobs)
		Expect(err).To(MatchError(ContainSubstring("boom")))
		Expect(computer.calls.Load()).To(BeNumerically("<", len(jobs)))
	})

	It("honours a cancelled context", func() {
		computer := &countingComputer{}
		jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{})
		Expect(err).To(BeNil())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = sweep.NewRunner(computer).Run(ctx, jobs)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(computer.calls.Load()).To(BeZero())
	})

	It("ignores non-positive worker counts", func() {
		computer := &countingComputer{}
		jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{})
		Expect(err).To(BeNil())

		rows, err := sweep.NewRunner(computer, sweep.WithWorkers(0)).Run(context.Background(), jobs)
		Expect(err).To(BeNil())
		Expect(rows).To(HaveLen(4))
		Expect(computer.calls.Load()).To(Equal(int32(4)))
	})
})

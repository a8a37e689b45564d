package sweep_test

import (
	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/clbench/exemplar-planner/internal/sweep"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Planner", func() {
	var (
		planner *sweep.Planner
		opts    sweep.Options
	)

	BeforeEach(func() {
		planner = sweep.NewPlanner(budget.NewParamTable(convnet.Default()))
		opts = sweep.Options{InitCls: 10, Increment: 10, MemorySize: budget.DefaultMemorySize}
	})

	Context("benchmark", func() {
		It("plans nothing", func() {
			jobs, err := planner.Plan(budget.ProtocolBenchmark, opts, sweep.Filter{})
			Expect(err).To(BeNil())
			Expect(jobs).To(BeEmpty())
		})
	})

	Context("fair", func() {
		It("plans icarl and memo on both datasets", func() {
			jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(4))

			Expect(jobs[0].Section).To(Equal(">>> cifar100-10-10:"))
			Expect(jobs[0].Config.Model).To(Equal(budget.Baseline{Name: "icarl"}))
			Expect(jobs[0].Config.Backbone).To(Equal("resnet32"))
			Expect(jobs[1].Config.Model).To(Equal(budget.Memo{}))
			Expect(jobs[1].Config.Backbone).To(Equal("memo_resnet32"))
			Expect(jobs[2].Section).To(Equal(">>> imagenet100-10-10:"))
			Expect(jobs[3].Config.Backbone).To(Equal("memo_resnet18"))

			for _, job := range jobs {
				Expect(job.Config.Protocol).To(Equal(budget.Fair{}))
				Expect(job.Config.InitCls).To(Equal(10))
				Expect(job.Config.MemorySize).To(Equal(2000))
			}
		})

		It("replaces datasets and models with the filter", func() {
			jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{
				Datasets: []string{"imagenet1000", "imagenet1000"},
				Models:   []string{"podnet"},
			})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].Config.Dataset).To(Equal("imagenet1000"))
			Expect(jobs[0].Config.Backbone).To(Equal("resnet18"))
			Expect(jobs[0].String()).To(Equal("podnet/imagenet1000"))
		})

		It("applies the backbone override", func() {
			opts.Backbone = "memo_resnet18"
			jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{Datasets: []string{"cifar100"}})
			Expect(err).To(BeNil())
			Expect(jobs[0].Config.Backbone).To(Equal("resnet18"))
			Expect(jobs[1].Config.Backbone).To(Equal("memo_resnet18"))
		})

		It("keeps every job independent", func() {
			jobs, err := planner.Plan(budget.ProtocolFair, opts, sweep.Filter{})
			Expect(err).To(BeNil())
			jobs[0].Config.Dataset = "changed"
			Expect(jobs[1].Config.Dataset).To(Equal("cifar100"))
		})
	})

	Context("auc", func() {
		It("plans every curve point with the fixed splits", func() {
			jobs, err := planner.Plan(budget.ProtocolAUC, opts, sweep.Filter{})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(5*2 + 6*2))

			Expect(jobs[0].Section).To(Equal("cifar100 point_idx:1"))
			Expect(jobs[0].Config.Model).To(Equal(budget.Memo{}))
			Expect(jobs[1].Config.Model).To(Equal(budget.DER{}))
			Expect(jobs[2].Config.Model).To(Equal(budget.Memo{}))
			Expect(jobs[3].Config.Model).To(Equal(budget.Baseline{Name: "icarl"}))
			Expect(jobs[3].Config.Protocol).To(Equal(budget.AUC{Point: 2}))
			Expect(jobs[3].String()).To(Equal("icarl/cifar100@2"))

			last := jobs[len(jobs)-1]
			Expect(last.Section).To(Equal("imagenet100 point_idx:6"))
			Expect(last.Config.InitCls).To(Equal(50))
			Expect(last.Config.Increment).To(Equal(5))
		})

		It("intersects the model filter with each point", func() {
			jobs, err := planner.Plan(budget.ProtocolAUC, opts, sweep.Filter{
				Datasets: []string{"cifar100"},
				Models:   []string{"icarl"},
			})
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(4))
			for _, job := range jobs {
				Expect(job.Point).To(BeNumerically(">", 1))
			}
		})

		It("fails on datasets without a curve", func() {
			_, err := planner.Plan(budget.ProtocolAUC, opts, sweep.Filter{Datasets: []string{"mnist"}})
			Expect(budget.IsLookup(err)).To(BeTrue())
		})
	})

	It("rejects unknown protocols", func() {
		_, err := planner.Plan("sparse", opts, sweep.Filter{})
		Expect(budget.IsConfiguration(err)).To(BeTrue())
	})

	Context("sections", func() {
		It("lists every header even when the filter empties it", func() {
			sections, err := planner.Sections(budget.ProtocolAUC, opts, sweep.Filter{
				Datasets: []string{"cifar100"},
				Models:   []string{"icarl"},
			})
			Expect(err).To(BeNil())
			Expect(sections).To(Equal([]string{
				"cifar100 point_idx:1",
				"cifar100 point_idx:2",
				"cifar100 point_idx:3",
				"cifar100 point_idx:4",
				"cifar100 point_idx:5",
			}))
		})

		It("matches the fair job sections", func() {
			sections, err := planner.Sections(budget.ProtocolFair, opts, sweep.Filter{})
			Expect(err).To(BeNil())
			Expect(sections).To(Equal([]string{">>> cifar100-10-10:", ">>> imagenet100-10-10:"}))
		})

		It("rejects unknown protocols", func() {
			_, err := planner.Sections("continual", opts, sweep.Filter{})
			Expect(budget.IsConfiguration(err)).To(BeTrue())
		})
	})
})

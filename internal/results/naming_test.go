package results_test

import (
	"path/filepath"
	"time"

	"github.com/clbench/exemplar-planner/internal/results"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("naming", func() {
	var run results.Run

	BeforeEach(func() {
		run = results.Run{
			TimeStr:    "1016-09-05-07-042",
			Dataset:    "cifar100",
			Prefix:     "fair",
			Model:      "memo",
			Convnet:    "memo_resnet32",
			Seed:       1993,
			InitCls:    10,
			Increment:  10,
			MemorySize: 3312,
		}
	})

	It("formats the time stamp to milliseconds", func() {
		ts := time.Date(2026, time.October, 16, 9, 5, 7, 42_999_000, time.UTC)
		Expect(results.TimeStr(ts)).To(Equal("1016-09-05-07-042"))
	})

	It("writes B0 when the first task is as large as the others", func() {
		Expect(results.ExperimentName(run)).To(Equal("1016-09-05-07-042_cifar100_memo_resnet32_1993_B0_Inc10"))
		Expect(results.CSVName(run)).To(Equal("cifar100_1993_memo_resnet32_B0_Inc10"))
	})

	It("keeps the initial class count otherwise", func() {
		run.InitCls, run.Increment = 50, 5
		Expect(results.CSVName(run)).To(Equal("cifar100_1993_memo_resnet32_B50_Inc5"))
	})

	It("nests debug logs", func() {
		name := results.ExperimentName(run)
		Expect(results.LogDir("logs", run, false)).To(Equal(filepath.Join("logs", "fair", "cifar100", "memo", name)))
		Expect(results.LogDir("logs", run, true)).To(Equal(filepath.Join("logs", "debug", "fair", "cifar100", "memo", name)))
	})

	It("validates the run", func() {
		Expect(run.Validate()).To(Succeed())
		run.Prefix = "unknown"
		Expect(run.Validate()).NotTo(Succeed())
	})
})

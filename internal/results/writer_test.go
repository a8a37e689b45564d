package results_test

import (
	"os"
	"path/filepath"

	"github.com/clbench/exemplar-planner/internal/results"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var (
		dir    string
		writer *results.Writer
		run    results.Run
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		writer = results.NewWriter(dir)
		run = results.Run{
			TimeStr:    "1016-09-05-07-042",
			Dataset:    "cifar100",
			Prefix:     "fair",
			Model:      "icarl",
			Convnet:    "resnet32",
			Seed:       1993,
			InitCls:    10,
			Increment:  10,
			MemorySize: 7431,
		}
	})

	read := func(path string) string {
		data, err := os.ReadFile(path)
		Expect(err).To(BeNil())
		return string(data)
	}

	It("writes the memory size for fair runs", func() {
		paths, err := writer.AppendCurves(run, results.Curves{
			CNN: results.Curve{Top1: []float64{90.5, 80}, Top5: []float64{99, 97.25}},
			NME: &results.Curve{Top1: []float64{89, 79.5}, Top5: []float64{98, 96}},
		})
		Expect(err).To(BeNil())
		Expect(paths).To(HaveLen(4))

		top1 := filepath.Join(dir, "fair", "cnn_top1", "cifar100_1993_resnet32_B0_Inc10.csv")
		Expect(paths[0]).To(Equal(top1))
		Expect(read(top1)).To(Equal("1016-09-05-07-042,icarl,7431,90.5,80.0\n"))
		Expect(read(paths[3])).To(Equal("1016-09-05-07-042,icarl,7431,98.0,96.0\n"))
	})

	It("omits the memory size for benchmark runs and skips a missing nme curve", func() {
		run.Prefix = "benchmark"
		paths, err := writer.AppendCurves(run, results.Curves{
			CNN: results.Curve{Top1: []float64{70}, Top5: []float64{90}},
		})
		Expect(err).To(BeNil())
		Expect(paths).To(HaveLen(2))
		Expect(read(paths[1])).To(Equal("1016-09-05-07-042,icarl,90.0\n"))
		Expect(filepath.Join(dir, "benchmark", "nme_top1")).NotTo(BeADirectory())
	})

	It("appends to existing files", func() {
		curves := results.Curves{CNN: results.Curve{Top1: []float64{1}, Top5: []float64{2}}}
		_, err := writer.AppendCurves(run, curves)
		Expect(err).To(BeNil())
		run.TimeStr = "1016-09-06-00-000"
		paths, err := writer.AppendCurves(run, curves)
		Expect(err).To(BeNil())
		Expect(read(paths[0])).To(Equal("1016-09-05-07-042,icarl,7431,1.0\n1016-09-06-00-000,icarl,7431,1.0\n"))
	})

	It("records the run time", func() {
		path, err := writer.AppendTime(run, 3600)
		Expect(err).To(BeNil())
		Expect(path).To(Equal(filepath.Join(dir, "times", "fair", "cifar100_1993_resnet32_B0_Inc10.csv")))
		Expect(read(path)).To(Equal("1016-09-05-07-042,icarl,3600.0\n"))
	})
})

var _ = Describe("ParseRecord", func() {
	It("reads a yaml record", func() {
		rec, err := results.ParseRecord([]byte(`
run:
  time_str: "1016-09-05-07-042"
  dataset: cifar100
  prefix: auc
  model_name: memo
  convnet_type: memo_resnet32
  seed: 1993
  init_cls: 10
  increment: 10
  memory_size: 1312
curves:
  cnn:
    top1: [88.1, 75.2]
    top5: [99.0, 95.4]
cost_seconds: 3600
`))
		Expect(err).To(BeNil())
		Expect(rec.Run.Prefix).To(Equal("auc"))
		Expect(rec.Run.MemorySize).To(Equal(1312))
		Expect(rec.Curves.NME).To(BeNil())
		Expect(rec.Curves.CNN.Top1).To(Equal([]float64{88.1, 75.2}))
		Expect(rec.CostSeconds).To(Equal(3600.0))
	})

	It("rejects unknown fields", func() {
		_, err := results.ParseRecord([]byte(`{"run": {}, "curvs": {}}`))
		Expect(err).NotTo(BeNil())
	})

	It("rejects a record without a cnn curve", func() {
		_, err := results.ParseRecord([]byte(`{"run": {"dataset": "cifar100", "prefix": "fair", "model_name": "icarl", "convnet_type": "resnet32", "init_cls": 10, "increment": 10}}`))
		Expect(err).To(MatchError(ContainSubstring("no cnn curve")))
	})
})

package sweep

import (
	"fmt"
	"strings"

	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/thoas/go-funk"
)

var (
	// Datasets swept by default.
	Datasets = []string{budget.CIFAR100, budget.ImageNet100}
	// FairModels are compared under the fair protocol.
	FairModels = []string{budget.ModelICaRL, budget.ModelMemo}
	// FirstPointModels run the smallest curve point; every other point runs CurveModels.
	FirstPointModels = []string{budget.ModelMemo, budget.ModelDER}
	CurveModels      = []string{budget.ModelMemo, budget.ModelICaRL}

	datasetBackbone = map[string]string{
		budget.CIFAR100:     "resnet32",
		budget.ImageNet100:  "resnet18",
		budget.ImageNet1000: "resnet18",
	}

	// curveSplits fixes the class split of the memory/accuracy curves.
	curveSplits = map[string][2]int{
		budget.CIFAR100:    {10, 10},
		budget.ImageNet100: {50, 5},
	}
)

// Job is one budget computation of a sweep.
type Job struct {
	// Section groups jobs in the text report.
	Section string
	// Point is the curve point of auc jobs, 0 otherwise.
	Point  int
	Config budget.ExperimentConfig
}

func (j Job) String() string {
	if j.Point > 0 {
		return fmt.Sprintf("%s/%s@%d", j.Config.Model, j.Config.Dataset, j.Point)
	}
	return fmt.Sprintf("%s/%s", j.Config.Model, j.Config.Dataset)
}

// Options are the values shared by every job of a plan.
type Options struct {
	InitCls    int
	Increment  int
	MemorySize int
	// Backbone overrides the fair backbone of every dataset. The converter rejects one that
	// does not match the dataset.
	Backbone string
}

// Filter narrows a plan. Datasets replaces the default dataset list. Models replaces the
// fair model list and is intersected with the per-point model lists of the auc curve.
type Filter struct {
	Datasets []string
	Models   []string
}

// Planner expands protocols into jobs.
type Planner struct {
	table *budget.ParamTable
}

func NewPlanner(table *budget.ParamTable) *Planner {
	return &Planner{table: table}
}

// Plan returns the jobs of protocol. The benchmark protocol has no budget and yields none.
func (p *Planner) Plan(protocol string, opts Options, filter Filter) ([]Job, error) {
	switch protocol {
	case budget.ProtocolBenchmark:
		return nil, nil
	case budget.ProtocolFair:
		return p.fair(opts, filter)
	case budget.ProtocolAUC:
		return p.auc(opts, filter)
	default:
		return nil, budget.NewErrConfiguration("prefix", "unknown protocol %q", protocol)
	}
}

// Sections returns every section header of the plan in order, including sections whose
// jobs were all filtered out.
func (p *Planner) Sections(protocol string, opts Options, filter Filter) ([]string, error) {
	var sections []string
	switch protocol {
	case budget.ProtocolBenchmark:
	case budget.ProtocolFair:
		for _, dataset := range datasets(filter) {
			sections = append(sections, fairSection(dataset, opts))
		}
	case budget.ProtocolAUC:
		for _, dataset := range datasets(filter) {
			points, err := p.table.CurvePoints(dataset)
			if err != nil {
				return nil, err
			}
			for point := 1; point <= points; point++ {
				sections = append(sections, aucSection(dataset, point))
			}
		}
	default:
		return nil, budget.NewErrConfiguration("prefix", "unknown protocol %q", protocol)
	}
	return sections, nil
}

func fairSection(dataset string, opts Options) string {
	return fmt.Sprintf(">>> %s-%d-%d:", dataset, opts.InitCls, opts.Increment)
}

func aucSection(dataset string, point int) string {
	return fmt.Sprintf("%s point_idx:%d", dataset, point)
}

func (p *Planner) fair(opts Options, filter Filter) ([]Job, error) {
	models := FairModels
	if len(filter.Models) > 0 {
		models = filter.Models
	}

	var jobs []Job
	for _, dataset := range datasets(filter) {
		section := fairSection(dataset, opts)
		for _, name := range models {
			model, err := budget.ParseModel(name)
			if err != nil {
				return nil, err
			}
			backbone := datasetBackbone[dataset]
			if opts.Backbone != "" {
				backbone = strings.TrimPrefix(opts.Backbone, convnet.MemoPrefix)
			}
			if _, ok := model.(budget.Memo); ok && backbone != "" {
				backbone = convnet.MemoPrefix + backbone
			}
			jobs = append(jobs, Job{
				Section: section,
				Config: budget.ExperimentConfig{
					Dataset:    dataset,
					Protocol:   budget.Fair{},
					MemorySize: opts.MemorySize,
					InitCls:    opts.InitCls,
					Increment:  opts.Increment,
					Model:      model,
					Backbone:   backbone,
				},
			})
		}
	}
	return jobs, nil
}

func (p *Planner) auc(opts Options, filter Filter) ([]Job, error) {
	var jobs []Job
	for _, dataset := range datasets(filter) {
		points, err := p.table.CurvePoints(dataset)
		if err != nil {
			return nil, err
		}
		initCls, increment := opts.InitCls, opts.Increment
		if split, ok := curveSplits[dataset]; ok {
			initCls, increment = split[0], split[1]
		}

		for point := 1; point <= points; point++ {
			section := aucSection(dataset, point)
			candidates := CurveModels
			if point == 1 {
				candidates = FirstPointModels
			}
			for _, name := range candidates {
				if len(filter.Models) > 0 && !funk.ContainsString(filter.Models, name) {
					continue
				}
				model, err := budget.ParseModel(name)
				if err != nil {
					return nil, err
				}
				jobs = append(jobs, Job{
					Section: section,
					Point:   point,
					Config: budget.ExperimentConfig{
						Dataset:    dataset,
						Protocol:   budget.AUC{Point: point},
						MemorySize: opts.MemorySize,
						InitCls:    initCls,
						Increment:  increment,
						Model:      model,
					},
				})
			}
		}
	}
	return jobs, nil
}

func datasets(filter Filter) []string {
	if len(filter.Datasets) > 0 {
		return funk.UniqString(filter.Datasets)
	}
	return Datasets
}

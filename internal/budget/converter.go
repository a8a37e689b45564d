package budget

import (
	"fmt"
	"strings"

	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

const (
	// BytesPerParam assumes parameters are stored as 32-bit floats.
	BytesPerParam = 4
	// DefaultMemorySize is the exemplar memory every method starts from.
	DefaultMemorySize = 2000
)

// Converter computes exemplar budgets. It holds no state between calls and is safe for
// concurrent use.
type Converter struct {
	table *ParamTable
}

type converterOptions struct {
	backbones Backbones
	table     []ParamTableOption
}

// ConverterOption configures a Converter.
type ConverterOption func(*converterOptions)

// WithBackbones replaces the parameter-counting collaborator.
func WithBackbones(b Backbones) ConverterOption {
	return func(o *converterOptions) {
		o.backbones = b
	}
}

// WithSpecCache caches counted backbones across computations.
func WithSpecCache(cache *ristretto.Cache) ConverterOption {
	return func(o *converterOptions) {
		o.table = append(o.table, CacheSpecs(cache))
	}
}

// NewConverter creates a Converter backed by the default convnet registry unless overridden.
func NewConverter(opts ...ConverterOption) *Converter {
	o := converterOptions{backbones: convnet.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Converter{table: NewParamTable(o.backbones, o.table...)}
}

// Table exposes the parameter table used by the converter.
func (c *Converter) Table() *ParamTable { return c.table }

// accounting is the parameter comparison behind one result: Reference - Candidate is the
// storage that is handed over to exemplars, Total is the parameter count reported for the model.
type accounting struct {
	reference int64
	candidate int64
	total     int64
	// strict rejects a zero delta as well as a negative one.
	strict bool
}

func (a accounting) delta() int64 { return a.reference - a.candidate }

// Compute returns the exemplar budget of cfg.
func (c *Converter) Compute(cfg ExperimentConfig) (BudgetResult, error) {
	// Fair rules do not depend on the split, so they apply whatever the rest of cfg holds.
	if _, ok := cfg.Protocol.(Fair); ok && cfg.Model != nil {
		if err := CheckPolicy(cfg.Protocol, cfg.Model); err != nil {
			return BudgetResult{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return BudgetResult{}, err
	}
	sched, err := Resolve(cfg.Dataset, cfg.InitCls, cfg.Increment)
	if err != nil {
		return BudgetResult{}, err
	}
	imageBytes, err := c.table.ImageBytes(cfg.Dataset)
	if err != nil {
		return BudgetResult{}, err
	}
	base, err := c.table.Baseline(cfg.Dataset)
	if err != nil {
		return BudgetResult{}, err
	}

	var acc accounting
	switch p := cfg.Protocol.(type) {
	case Benchmark:
		return BudgetResult{}, NewErrConfiguration("prefix", "%s runs use the fixed exemplar memory, there is no budget to convert", p)
	case Fair:
		acc, err = c.fair(cfg, sched, base)
	case AUC:
		acc, err = c.auc(cfg, sched, base, p)
	default:
		panic(fmt.Sprintf("budget: unhandled protocol %T", cfg.Protocol))
	}
	if err != nil {
		return BudgetResult{}, err
	}

	delta := acc.delta()
	if delta < 0 || (acc.strict && delta == 0) {
		return BudgetResult{}, NewErrDataConsistency(acc.reference, acc.candidate)
	}

	extra := delta * BytesPerParam / imageBytes
	zap.S().Named("budget").Debugw("computed exemplar budget",
		"dataset", cfg.Dataset, "protocol", cfg.Protocol.String(), "model", cfg.Model.String(),
		"tasks", sched.TaskNum, "delta_params", delta, "extra_exemplars", extra)

	return assemble(extra, acc.total, imageBytes, cfg.MemorySize), nil
}

// fair compares every method with one full backbone per task.
func (c *Converter) fair(cfg ExperimentConfig, sched TaskSchedule, base BackboneParamSpec) (accounting, error) {
	if cfg.Backbone != "" && strings.TrimPrefix(cfg.Backbone, convnet.MemoPrefix) != base.Backbone {
		return accounting{}, NewErrConfiguration("convnet_type",
			"%s protocol on %s uses %s, got %s", cfg.Protocol, cfg.Dataset, base.Backbone, cfg.Backbone)
	}

	switch cfg.Model.(type) {
	case Memo:
		memo, err := c.table.Memo(base.Backbone)
		if err != nil {
			return accounting{}, err
		}
		total := memo.Expanded(sched.TaskNum)
		return accounting{reference: base.Expanded(sched.TaskNum), candidate: total, total: total}, nil
	case Baseline:
		// The extra storage of one backbone per task beyond the first.
		return accounting{reference: base.Expanded(sched.TaskNum), candidate: base.Params, total: base.Params}, nil
	default:
		panic(fmt.Sprintf("budget: unhandled model %T", cfg.Model))
	}
}

// auc matches every method to what DER stores with the backbone of the curve point.
func (c *Converter) auc(cfg ExperimentConfig, sched TaskSchedule, base BackboneParamSpec, p AUC) (accounting, error) {
	point, err := c.table.Point(cfg.Dataset, p.Point)
	if err != nil {
		return accounting{}, err
	}
	if err := CheckPolicy(p, cfg.Model); err != nil {
		return accounting{}, err
	}
	der := point.Expanded(sched.TaskNum)

	if p.Point == 1 {
		// Single-backbone methods run the smallest point with the plain exemplar memory.
		switch cfg.Model.(type) {
		case Memo:
			memo, err := c.table.Memo(point.Backbone)
			if err != nil {
				return accounting{}, err
			}
			cur := memo.Expanded(sched.TaskNum)
			return accounting{reference: base.Params, candidate: cur, total: cur, strict: true}, nil
		case DER:
			return accounting{reference: base.Params, candidate: der, total: der, strict: true}, nil
		default:
			panic(fmt.Sprintf("budget: unhandled model %T", cfg.Model))
		}
	}

	switch cfg.Model.(type) {
	case Memo:
		memo, err := c.table.Memo(point.Backbone)
		if err != nil {
			return accounting{}, err
		}
		cur := memo.Expanded(sched.TaskNum)
		return accounting{reference: der, candidate: cur, total: cur, strict: true}, nil
	case Baseline:
		return accounting{reference: der, candidate: base.Params, total: base.Params, strict: true}, nil
	default:
		panic(fmt.Sprintf("budget: unhandled model %T", cfg.Model))
	}
}

// CheckPolicy rejects model and protocol combinations excluded by the experimental design.
// DER keeps the fixed exemplar memory except at the first curve point, where single-backbone
// methods keep it instead.
func CheckPolicy(p Protocol, m Model) error {
	switch p := p.(type) {
	case Benchmark:
		return nil
	case Fair:
		if _, ok := m.(DER); ok {
			return NewErrPolicyViolation(m, p,
				fmt.Sprintf("DER must use fixed memory_size=%d; no exemplar-delta computation applies", DefaultMemorySize))
		}
		return nil
	case AUC:
		switch m.(type) {
		case DER:
			if p.Point > 1 {
				return NewErrPolicyViolation(m, p,
					fmt.Sprintf("DER must use fixed memory_size=%d beyond the first curve point", DefaultMemorySize))
			}
		case Baseline:
			if p.Point == 1 {
				return NewErrPolicyViolation(m, p,
					fmt.Sprintf("single backbone methods use memory_size=%d at the first curve point", DefaultMemorySize))
			}
		}
		return nil
	default:
		panic(fmt.Sprintf("budget: unhandled protocol %T", p))
	}
}

func assemble(extra, totalParams, imageBytes int64, memorySize int) BudgetResult {
	totalExemplars := extra + int64(memorySize)
	return BudgetResult{
		ExtraExemplars: extra,
		TotalParams:    totalParams,
		TotalExemplars: totalExemplars,
		ExemplarCostMB: toMB(totalExemplars * imageBytes),
		ModelCostMB:    toMB(totalParams * BytesPerParam),
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/clbench/exemplar-planner/internal/report"
	"github.com/clbench/exemplar-planner/internal/sweep"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"
)

const (
	flagDataset     = "dataset"
	flagMemorySize  = "memory_size"
	flagInitCls     = "init_cls"
	flagIncrement   = "increment"
	flagModelName   = "model_name"
	flagConvnetType = "convnet_type"
)

// flagAliases are the short long-form names accepted for the experiment flags.
var flagAliases = map[string]string{
	"ms":    flagMemorySize,
	"init":  flagInitCls,
	"incre": flagIncrement,
	"model": flagModelName,
	"net":   flagConvnetType,
}

// NormalizeArgs rewrites the single-dash aliases (-ms, -init, ...) to their double-dash form.
// Arguments after "--" are left alone.
func NormalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == "--" {
			copy(out[i:], args[i:])
			break
		}
		if alias, ok := strings.CutPrefix(arg, "-"); ok {
			if _, known := flagAliases[alias]; known {
				arg = "-" + arg
			}
		}
		out[i] = arg
	}
	return out
}

func normalizeAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if full, ok := flagAliases[name]; ok {
		name = full
	}
	return pflag.NormalizedName(name)
}

type BudgetOptions struct {
	GlobalOptions

	Dataset     string
	MemorySize  int
	InitCls     int
	Increment   int
	ModelName   string
	ConvnetType string
	Prefix      string
	Output      string
	OutputFile  string
	Workers     int

	filter   sweep.Filter
	backbone string
}

func DefaultBudgetOptions() *BudgetOptions {
	return &BudgetOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Dataset:       budget.CIFAR100,
		MemorySize:    budget.DefaultMemorySize,
		InitCls:       10,
		Increment:     10,
		ConvnetType:   "resnet32",
		Prefix:        budget.ProtocolBenchmark,
	}
}

func NewCmdBudget() *cobra.Command {
	o := DefaultBudgetOptions()
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Convert parameter storage into an equivalent exemplar budget",
		Long: `Compute how many extra exemplars each method may store so that every method uses the
same memory. The fair protocol compares methods against one backbone per task, the auc
protocol sweeps the memory curve points. Benchmark runs keep the fixed exemplar memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	cmd.SetGlobalNormalizationFunc(normalizeAliases)
	o.Bind(cmd.Flags())
	return cmd
}

func (o *BudgetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Dataset, flagDataset, o.Dataset, "Dataset. When set, only this dataset is swept.")
	fs.IntVar(&o.MemorySize, flagMemorySize, o.MemorySize, "Fixed exemplar memory the extra exemplars are added to.")
	fs.IntVar(&o.InitCls, flagInitCls, o.InitCls, "Classes in the first task.")
	fs.IntVar(&o.Increment, flagIncrement, o.Increment, "Classes in every later task.")
	fs.StringVar(&o.ModelName, flagModelName, o.ModelName, "Method. When set, only this method is swept.")
	fs.StringVar(&o.ConvnetType, flagConvnetType, o.ConvnetType, "Backbone of the fair protocol. When set, it must match the dataset.")
	fs.StringVarP(&o.Prefix, "prefix", "p", o.Prefix, fmt.Sprintf("Protocol. One of: (%s).", strings.Join(budget.Protocols, ", ")))
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(report.Formats, ", ")))
	fs.StringVar(&o.OutputFile, "output-file", o.OutputFile, "Write the report to this file instead of stdout.")
	fs.IntVar(&o.Workers, "workers", o.Workers, "Budgets computed at once. Defaults to PLANNER_SWEEP_WORKERS.")
}

func (o *BudgetOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}

	fs := cmd.Flags()
	if fs.Changed(flagDataset) {
		o.filter.Datasets = []string{o.Dataset}
	}
	if fs.Changed(flagModelName) {
		o.filter.Models = []string{o.ModelName}
	}
	if fs.Changed(flagConvnetType) {
		o.backbone = o.ConvnetType
	}
	if o.Workers <= 0 {
		o.Workers = o.Config.Sweep.Workers
	}
	return nil
}

func (o *BudgetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	if _, err := budget.ParseProtocol(o.Prefix, 0); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(report.Formats, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(report.Formats, ", "))
	}
	if report.Format(o.Output) == report.FormatXLSX && o.OutputFile == "" {
		return fmt.Errorf("xlsx output requires --output-file")
	}
	if o.MemorySize < 0 {
		return fmt.Errorf("memory_size must not be negative")
	}
	return nil
}

func (o *BudgetOptions) Run(ctx context.Context, args []string) error {
	logger := zap.S().Named("budget")
	if o.Prefix == budget.ProtocolBenchmark {
		logger.Infow("benchmark runs keep the fixed exemplar memory, nothing to convert", "memory_size", o.MemorySize)
		return nil
	}

	cache, err := budget.NewSpecCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	converter := budget.NewConverter(budget.WithSpecCache(cache))
	planner := sweep.NewPlanner(converter.Table())
	opts := sweep.Options{
		InitCls:    o.InitCls,
		Increment:  o.Increment,
		MemorySize: o.MemorySize,
		Backbone:   o.backbone,
	}
	jobs, err := planner.Plan(o.Prefix, opts, o.filter)
	if err != nil {
		return err
	}

	rows, err := sweep.NewRunner(converter, sweep.WithWorkers(o.Workers)).Run(ctx, jobs)
	if err != nil {
		logger.Errorw("budget computation failed", "prefix", o.Prefix, "error", err)
		return err
	}

	renderer, err := report.NewRenderer(report.Format(o.Output))
	if err != nil {
		return err
	}
	if text, ok := renderer.(*report.TextRenderer); ok {
		text.Sections, err = planner.Sections(o.Prefix, opts, o.filter)
		if err != nil {
			return err
		}
	}
	if o.OutputFile == "" {
		return renderer.Render(o.out, rows)
	}
	return writeFile(o.OutputFile, func(w io.Writer) error {
		return renderer.Render(w, rows)
	})
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

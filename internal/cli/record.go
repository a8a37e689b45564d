package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clbench/exemplar-planner/internal/results"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

type RecordOptions struct {
	GlobalOptions

	CurvesFile string
	ResultsDir string
	LogsDir    string
	Debug      bool

	now func() time.Time
}

func DefaultRecordOptions() *RecordOptions {
	return &RecordOptions{
		GlobalOptions: DefaultGlobalOptions(),
		now:           time.Now,
	}
}

func NewCmdRecord() *cobra.Command {
	o := DefaultRecordOptions()
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append the curves of a finished training run to the results CSV files",
		Args:  cobra.NoArgs,
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
	o.Bind(cmd.Flags())
	return cmd
}

func (o *RecordOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.CurvesFile, "curves", "f", o.CurvesFile, "YAML or JSON record written by the training run")
	fs.StringVar(&o.ResultsDir, "results-dir", o.ResultsDir, "Results directory. Defaults to PLANNER_RESULTS_DIR.")
	fs.StringVar(&o.LogsDir, "logs-dir", o.LogsDir, "Logs directory. Defaults to PLANNER_LOGS_DIR.")
	fs.BoolVar(&o.Debug, "debug", o.Debug, "Keep the run log under the debug tree")
}

func (o *RecordOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if o.ResultsDir == "" {
		o.ResultsDir = o.Config.Results.Dir
	}
	if o.LogsDir == "" {
		o.LogsDir = o.Config.Results.LogsDir
	}
	return nil
}

func (o *RecordOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.CurvesFile == "" {
		return fmt.Errorf("must specify a curves file")
	}
	return nil
}

func (o *RecordOptions) Run(ctx context.Context, args []string) error {
	data, err := os.ReadFile(o.CurvesFile)
	if err != nil {
		return fmt.Errorf("reading curves file: %w", err)
	}
	rec, err := results.ParseRecord(data)
	if err != nil {
		return err
	}
	if rec.Run.TimeStr == "" {
		rec.Run.TimeStr = results.TimeStr(o.now())
	}

	// The normalized record is kept next to the run log.
	logDir := results.LogDir(o.LogsDir, rec.Run, o.Debug)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	normalized, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "record.yaml"), normalized, 0o644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	writer := results.NewWriter(o.ResultsDir)
	paths, err := writer.AppendCurves(rec.Run, rec.Curves)
	if err != nil {
		return err
	}
	if rec.CostSeconds > 0 {
		path, err := writer.AppendTime(rec.Run, rec.CostSeconds)
		if err != nil {
			return err
		}
		paths = append(paths, path)
	}

	zap.S().Named("record").Infow("recorded run", "experiment", results.ExperimentName(rec.Run), "log_dir", logDir)
	for _, path := range paths {
		fmt.Fprintln(o.out, path)
	}
	return nil
}

package cli

import (
	"io"

	"github.com/clbench/exemplar-planner/internal/config"
	"github.com/clbench/exemplar-planner/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

type GlobalOptions struct {
	LogLevel string
	Config   *config.Config

	out io.Writer
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level. Defaults to PLANNER_LOG_LEVEL.")
}

// Complete loads the environment configuration and installs the global logger.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	o.Config = cfg
	if o.LogLevel == "" {
		o.LogLevel = cfg.LogLevel
	}
	zap.ReplaceGlobals(log.InitLog(log.ParseLevel(o.LogLevel)))
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

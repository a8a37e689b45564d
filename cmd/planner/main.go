package main

import (
	"os"

	"github.com/clbench/exemplar-planner/internal/cli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	command := NewPlannerCtlCommand()
	command.SetArgs(cli.NormalizeArgs(os.Args[1:]))
	err := command.Execute()
	_ = zap.L().Sync()
	if err != nil {
		os.Exit(1)
	}
}

func NewPlannerCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "planner [flags] [options]",
		Short: "planner sizes exemplar memory budgets for continual-learning experiments.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdBudget())
	cmd.AddCommand(cli.NewCmdNetworks())
	cmd.AddCommand(cli.NewCmdRecord())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}

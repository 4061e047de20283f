package main

import (
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "payrollctl",
		Short: "Operator tools for the practice payroll engine",
		Long: `payrollctl checks statutory tax table files, computes a single payroll
entry offline and issues practice-scoped API tokens.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			cfg := logger.DefaultConfig()
			cfg.Level = level
			cfg.Format = format
			cfg.Output = cmd.ErrOrStderr()
			return logger.Setup(cfg)
		},
	}

	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "Log format (console, json)")

	root.AddCommand(newTablesCmd(), newCalcCmd(), newTokenCmd())
	return root
}

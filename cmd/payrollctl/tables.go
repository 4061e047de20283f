package main

import (
	"fmt"

	"github.com/cmlabs-hris/practice-payroll/internal/pkg/logger"
	"github.com/cmlabs-hris/practice-payroll/internal/pkg/taxtable"
	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	tables := &cobra.Command{
		Use:   "tables",
		Short: "Inspect statutory tax table files",
	}

	tables.AddCommand(&cobra.Command{
		Use:   "check [file]",
		Short: "Validate a tax table file",
		Long: `Parse a tax table file and verify every tax year in it: contiguous bands,
an open-ended top band, and base amounts that match the tax accrued by the
bands below them.`,
		Example: `  payrollctl tables check configs/tax_tables.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE:    runTablesCheck,
	})
	return tables
}

func runTablesCheck(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("tables")
	path := args[0]

	years, err := taxtable.LoadFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var problems int
	for _, y := range years {
		issues := taxtable.CheckContinuity(y)
		problems += len(issues)

		log.Info().
			Int("tax_year", y.ID).
			Int("bands", len(y.Bands)).
			Int("issues", len(issues)).
			Msg("Tax year checked")

		status := "ok"
		if len(issues) > 0 {
			status = "INCONSISTENT"
		}
		fmt.Fprintf(out, "%d  %s to %s  %d bands  %s\n",
			y.ID, y.Start.Format("2006-01-02"), y.End.Format("2006-01-02"), len(y.Bands), status)
		for _, issue := range issues {
			fmt.Fprintf(out, "    %s\n", issue)
		}
	}

	if problems > 0 {
		return fmt.Errorf("%s: %d band continuity problem(s)", path, problems)
	}
	return nil
}

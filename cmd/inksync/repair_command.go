package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inksync/internal/reconcile"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Run a full check and apply idempotent repairs to the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			pipeline := reconcile.New(cfg, logger)
			result, err := pipeline.Repair(cmd.Context(), reconcile.Options{
				ContentType: typeFlag,
			})
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, result)
			}
			result.RenderConsole(cmd.OutOrStdout(), stdoutIsTerminal())
			if result.Tally != nil && result.Tally.ItemsFailed > 0 {
				return fmt.Errorf("repair completed with %d failed item(s)", result.Tally.ItemsFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFlag, "type", "", "Restrict to one content type (weekly, blog)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the report as JSON")
	return cmd
}

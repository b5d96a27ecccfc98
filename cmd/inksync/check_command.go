package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"inksync/internal/diagnose"
	"inksync/internal/reconcile"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var depthFlag string
	var typeFlag string
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Scan, match, and diagnose without writing to the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			depth, err := diagnose.ParseDepth(depthFlag)
			if err != nil {
				return err
			}

			pipeline := reconcile.New(cfg, logger)
			result, err := pipeline.Check(cmd.Context(), reconcile.Options{
				Depth:       depth,
				ContentType: typeFlag,
			})
			if err != nil {
				return err
			}

			if jsonFlag {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				result.RenderConsole(cmd.OutOrStdout(), stdoutIsTerminal())
			}

			if result.HasErrors() {
				counts := result.IssueCounts()
				return fmt.Errorf("check found %d error-severity issue(s)", counts[diagnose.SeverityError])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&depthFlag, "depth", "full", "Check depth: basic, tags, or full")
	cmd.Flags().StringVar(&typeFlag, "type", "", "Restrict to one content type (weekly, blog)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the report as JSON")
	return cmd
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

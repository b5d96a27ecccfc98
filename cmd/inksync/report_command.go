package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inksync/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Work with saved run reports",
	}
	reportCmd.AddCommand(newReportExportCommand(ctx))
	return reportCmd
}

func newReportExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var toFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Serialize the most recent run report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			latest, err := report.LoadLatest(cfg.Paths.ReportDir)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if toFlag != "" {
				file, err := os.Create(toFlag)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				out = file
			}

			switch strings.ToLower(formatFlag) {
			case "json", "":
				return latest.RenderJSON(out)
			case "markdown", "md":
				latest.RenderMarkdown(out)
				return nil
			default:
				return fmt.Errorf("unknown export format %q (expected json or markdown)", formatFlag)
			}
		},
	}

	cmd.Flags().StringVar(&formatFlag, "format", "json", "Export format: json or markdown")
	cmd.Flags().StringVar(&toFlag, "to", "", "Write to a file instead of stdout")
	return cmd
}

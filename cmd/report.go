package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/autoinsight/internal/report"
	"github.com/spf13/cobra"
)

var reportFlags runFlags

var reportCmd = &cobra.Command{
	Use:   "report <analysis-file>",
	Short: "Generate insights and render PDF/HTML reports in one step",
	Example: `  autoinsight report analysis.json
  autoinsight report analysis.yaml --provider openai --format html --out ./out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		formats, err := report.ParseFormats(reportFlags.format)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := loadAnalysis(args[0])
		if err != nil {
			return err
		}
		m, err := generateInsights(ctx, cmd.OutOrStdout(), c, &reportFlags, res, args[0])
		if err != nil {
			return err
		}
		return renderReports(ctx, cmd.OutOrStdout(), m, res, formats)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportFlags.bindGeneration(reportCmd.Flags())
	reportFlags.bindOutput(reportCmd.Flags())
}

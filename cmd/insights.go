package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	insightsFlags runFlags
	insightsJSON  bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights <analysis-file>",
	Short: "Generate narrative insights for an analysis and store them in the run manifest",
	Example: `  autoinsight insights analysis.json
  autoinsight insights analysis.json --provider openai --model gpt-4o --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := loadAnalysis(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if insightsJSON {
			out = cmd.ErrOrStderr()
		}
		m, err := generateInsights(ctx, out, c, &insightsFlags, res, args[0])
		if err != nil {
			return err
		}
		if insightsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(m.Insights)
		}
		for _, in := range m.Insights {
			fmt.Fprintf(cmd.OutOrStdout(), "\n== %s [%s] ==\n%s\n", in.Section, in.Confidence, in.Content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsFlags.bindGeneration(insightsCmd.Flags())
	insightsCmd.Flags().StringVarP(&insightsFlags.out, "out", "o", "", "report directory (overrides report_dir)")
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "print insights as JSON")
}

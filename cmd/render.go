package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/KaramelBytes/autoinsight/internal/project"
	"github.com/KaramelBytes/autoinsight/internal/report"
	"github.com/spf13/cobra"
)

var (
	renderFlags    runFlags
	renderInsights string
)

var renderCmd = &cobra.Command{
	Use:   "render <analysis-file>",
	Short: "Render reports from insights stored by a previous run",
	Long: `Render re-uses the insights recorded in <report_dir>/<analysis id>/manifest.json,
so reports can be regenerated without another model call. With --insights, the
sections are read from a JSON file instead (as printed by 'insights --json').`,
	Example: `  autoinsight render analysis.json --format html
  autoinsight render analysis.json --insights edited.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		formats, err := report.ParseFormats(renderFlags.format)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := loadAnalysis(args[0])
		if err != nil {
			return err
		}
		dir := filepath.Join(reportDir(c, renderFlags.out), res.ID)
		if renderInsights == "" {
			m, err := project.LoadManifest(dir)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("no stored insights for %s (run 'autoinsight insights' first): %w", res.ID, err)
				}
				return err
			}
			return renderReports(ctx, cmd.OutOrStdout(), m, res, formats)
		}

		m, err := loadOrNewManifest(dir, res.ID, args[0])
		if err != nil {
			return err
		}
		insights, err := readInsights(renderInsights)
		if err != nil {
			return err
		}
		m.SetInsights(insights)
		return renderReports(ctx, cmd.OutOrStdout(), m, res, formats)
	},
}

// readInsights loads a JSON array of insights and puts it in report order.
func readInsights(path string) ([]analysis.Insight, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read insights: %w", err)
	}
	var insights []analysis.Insight
	if err := json.Unmarshal(b, &insights); err != nil {
		return nil, fmt.Errorf("parse insights %s: %w", filepath.Base(path), err)
	}
	ordered := analysis.Ordered(insights)
	if len(ordered) == 0 {
		return nil, fmt.Errorf("%s contains no recognised insight sections", filepath.Base(path))
	}
	return ordered, nil
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderFlags.bindOutput(renderCmd.Flags())
	renderCmd.Flags().StringVar(&renderInsights, "insights", "", "JSON file of insights to render instead of the stored ones")
}

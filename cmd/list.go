package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/autoinsight/internal/project"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listOut string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List report runs recorded in the report directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		dir := reportDir(c, listOut)
		runs, err := project.ListManifests(dir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "(no reports in %s)\n", dir)
			return nil
		}
		rows := make([][]string, 0, len(runs))
		for _, m := range runs {
			parse := color.GreenString("json")
			if m.FallbackParse {
				parse = color.YellowString("fallback")
			}
			formats := make([]string, 0, len(m.Artifacts))
			for _, a := range m.Artifacts {
				formats = append(formats, string(a.Format))
			}
			rows = append(rows, []string{
				m.AnalysisID,
				m.Provider,
				m.Model,
				parse,
				strings.Join(formats, ","),
				m.UpdatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		return renderTable(cmd.OutOrStdout(), []string{"Analysis", "Provider", "Model", "Parse", "Formats", "Updated"}, rows)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listOut, "out", "o", "", "report directory (overrides report_dir)")
}

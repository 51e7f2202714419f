package cmd

import (
	"fmt"

	"github.com/KaramelBytes/autoinsight/internal/ai"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var modelsProvider string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show known models, context windows and pricing",
	Example: `  autoinsight models
  autoinsight models --provider openai`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := ai.NormalizeProvider(modelsProvider)
		var rows [][]string
		for _, m := range ai.Catalog() {
			if filter != "" && m.Provider != filter {
				continue
			}
			name := m.Name
			if ai.DefaultModel(m.Provider) == m.Name {
				name = color.CyanString("%s *", m.Name)
			}
			rows = append(rows, []string{
				m.Provider,
				name,
				fmt.Sprintf("%d", m.ContextTokens),
				fmt.Sprintf("$%.5f", m.InputPerK),
				fmt.Sprintf("$%.5f", m.OutputPerK),
			})
		}
		if len(rows) == 0 {
			return fmt.Errorf("no models for provider %q", modelsProvider)
		}
		if err := renderTable(cmd.OutOrStdout(), []string{"Provider", "Model", "Context", "Input/1K", "Output/1K"}, rows); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "* default model for the provider")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "only show models for this provider")
}

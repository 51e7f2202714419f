package cmd

import (
	"fmt"

	"github.com/KaramelBytes/autoinsight/internal/analysis"
	"github.com/KaramelBytes/autoinsight/internal/utils"
	"github.com/spf13/cobra"
)

var summarizeTokens bool

var summarizeCmd = &cobra.Command{
	Use:   "summarize <analysis-file>",
	Short: "Print the bounded digest sent to the model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadAnalysis(args[0])
		if err != nil {
			return err
		}
		digest := analysis.Summarize(&res.Bundle)
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		if summarizeTokens {
			fmt.Fprintf(cmd.ErrOrStderr(), "≈ %d tokens\n", utils.CountTokens(digest))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&summarizeTokens, "tokens", false, "print an estimated token count to stderr")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	tellSetup  string
	tellBestOf int
	tellBase   bool
	tellJSON   bool
)

var tellCmd = &cobra.Command{
	Use:   "tell",
	Short: "Generate the best punchline for a setup",
	Long: `Sample several punchlines for a joke setup and print the one the
classifier rates most likely to be a real joke.

Examples:
  jokegen tell -s "Why did frogs eat the cheese?"
  jokegen tell -s "Why did frogs eat the cheese?" -k 3 --json`,
	RunE: runTell,
}

func init() {
	rootCmd.AddCommand(tellCmd)
	tellCmd.Flags().StringVarP(&tellSetup, "setup", "s", "", "joke setup (required)")
	tellCmd.Flags().IntVarP(&tellBestOf, "best-of", "k", 0, "number of candidates to sample (default from config)")
	tellCmd.Flags().BoolVar(&tellBase, "base", false, "use the base generator instead of the fine-tuned one")
	tellCmd.Flags().BoolVar(&tellJSON, "json", false, "output the selection with every scored candidate as JSON")
	tellCmd.MarkFlagRequired("setup")
}

func runTell(cmd *cobra.Command, args []string) error {
	uc, err := newPunchlineUseCase()
	if err != nil {
		return err
	}

	k := GetConfig().Rerank.BestOf
	if tellBestOf > 0 {
		k = tellBestOf
	}

	sel, err := uc.Punchline(cmd.Context(), tellSetup, tellBase, k)
	if err != nil {
		return fmt.Errorf("punchline failed: %w", err)
	}

	if tellJSON {
		return writeJSON(cmd.OutOrStdout(), sel)
	}
	printJoke(cmd.OutOrStdout(), sel.Setup, sel.Punchline)
	return nil
}

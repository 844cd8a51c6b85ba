package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const demoSetup = "Why did frogs eat the cheese?"

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Tell one joke three times with 3, 2 and 1 candidates",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	uc, err := newPunchlineUseCase()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("-", 66))

	for _, k := range []int{3, 2, 1} {
		punchline, err := uc.BestPunchline(cmd.Context(), demoSetup, false, k)
		if err != nil {
			return fmt.Errorf("best of %d failed: %w", k, err)
		}
		printJoke(out, demoSetup, punchline)
		fmt.Fprintln(out)
	}

	return nil
}

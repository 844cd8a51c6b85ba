package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"jokegen/internal/adapter/fs"
	"jokegen/internal/usecase"
)

var (
	batchIncludes []string
	batchExcludes []string
	batchBestOf   int
	batchBase     bool
	batchOutput   string
)

var batchCmd = &cobra.Command{
	Use:   "batch [path]",
	Short: "Generate punchlines for every setup in a file or directory",
	Long: `Read joke setups (one per line, '#' for comments) from a file, or from
every file under a directory that matches the include globs, and write the
selections as JSON.

Examples:
  jokegen batch setups.txt
  jokegen batch setups/ --include "**/*.jokes" -o punchlines.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringSliceVar(&batchIncludes, "include", []string{"**/*.txt"}, "glob patterns of setup files")
	batchCmd.Flags().StringSliceVar(&batchExcludes, "exclude", nil, "glob patterns to skip")
	batchCmd.Flags().IntVarP(&batchBestOf, "best-of", "k", 0, "number of candidates per setup (default from config)")
	batchCmd.Flags().BoolVar(&batchBase, "base", false, "use the base generator instead of the fine-tuned one")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output file (default: stdout)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}

	var setups []fs.Setup
	if info.IsDir() {
		reader := fs.NewSetupReader(fs.NewWalker(batchIncludes, batchExcludes))
		setups, err = reader.ReadAll(path)
	} else {
		setups, err = fs.ReadSetups(path)
	}
	if err != nil {
		return err
	}
	if len(setups) == 0 {
		return fmt.Errorf("no setups found in %s", path)
	}

	uc, err := newPunchlineUseCase()
	if err != nil {
		return err
	}

	k := GetConfig().Rerank.BestOf
	if batchBestOf > 0 {
		k = batchBestOf
	}

	texts := make([]string, len(setups))
	for i, s := range setups {
		texts[i] = s.Text
	}

	bar := progressbar.NewOptions(len(texts),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Telling[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	batch := usecase.NewBatchUseCase(uc)
	result, err := batch.Run(cmd.Context(), texts, batchBase, k, func(done, total int, setup string) {
		if err := bar.Set(done); err != nil {
			log.Debug().Err(err).Msg("Progress bar update failed")
		}
	})
	if err != nil {
		return err
	}

	if batchOutput != "" {
		if err := writeJSONFile(batchOutput, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Punchlines written to: %s\n", batchOutput)
		fmt.Fprintf(cmd.OutOrStdout(), "  Setups:    %d\n", len(texts))
		fmt.Fprintf(cmd.OutOrStdout(), "  Succeeded: %d\n", result.Succeeded)
	} else if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s:%d %s\n", setups[e.Index].Source, setups[e.Index].Line, e.Error)
		}
	}
	return nil
}

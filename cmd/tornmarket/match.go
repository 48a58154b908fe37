package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
	"github.com/kzon-tools/torn-market-analyzer/pkg/inventory"
)

var (
	matchDictPath string
	matchInPath   string
	matchOutPath  string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Parse pasted inventory text and match it against the item dictionary",
	Long: `match reads "Add Listing" inventory text from a file or stdin, matches
the item blocks against the CSV dictionary, and writes the aggregated
name,id,qty rows as CSV. Unmatched entries go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatch()
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVar(&matchDictPath, "dict", "", "path to the item dictionary CSV (overrides config)")
	matchCmd.Flags().StringVarP(&matchInPath, "in", "i", "", "input text file ('-' or empty reads stdin)")
	matchCmd.Flags().StringVarP(&matchOutPath, "out", "o", "", "output CSV path (empty prints to stdout)")
}

func runMatch() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dictPath := cfg.Dictionary.Path
	if matchDictPath != "" {
		dictPath = matchDictPath
	}

	dict, err := dictionary.Load(dictPath)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}

	raw, err := readInput(matchInPath)
	if err != nil {
		return err
	}

	result := inventory.Match(raw, dict)

	out := os.Stdout
	if matchOutPath != "" {
		f, err := os.Create(matchOutPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"name", "id", "qty"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, it := range result.Matched {
		record := []string{it.Name, strconv.Itoa(it.ItemID), strconv.Itoa(it.Qty)}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	reportUnmatched(result.Unmatched)
	return nil
}

func reportUnmatched(unmatched []inventory.UnmatchedEntry) {
	if len(unmatched) == 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "\nUnmatched items (%d):\n", len(unmatched))
	for _, u := range unmatched {
		line := fmt.Sprintf("- %s x%d", u.Name, u.Qty)
		if len(u.Suggestions) > 0 {
			line += " (did you mean: " + strings.Join(u.Suggestions, ", ") + ")"
		}
		fmt.Fprintln(os.Stderr, line)
	}
}

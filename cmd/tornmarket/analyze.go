package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
	"github.com/kzon-tools/torn-market-analyzer/pkg/inventory"
	"github.com/kzon-tools/torn-market-analyzer/pkg/market"
	"github.com/kzon-tools/torn-market-analyzer/pkg/pricing"
	"github.com/kzon-tools/torn-market-analyzer/pkg/ratelimit"
)

var (
	analyzeInPath string
	analyzeKey    string
	analyzeCSV    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Match inventory text and fetch live market prices",
	Long: `analyze runs the full pipeline: parse and match the pasted inventory
text, fetch up to 100 live listings per matched item, and print per-item
price suggestions (fast-sell, fair, greedy).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInPath, "in", "i", "", "input text file ('-' or empty reads stdin)")
	analyzeCmd.Flags().StringVarP(&analyzeKey, "key", "k", "", "public API key (falls back to config, then TORN_API_KEY)")
	analyzeCmd.Flags().BoolVar(&analyzeCSV, "csv", false, "emit the summary as CSV instead of a table")
}

func runAnalyze(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	key := analyzeKey
	if key == "" {
		key = cfg.API.Key
	}
	if key == "" {
		return errors.New("api key required (use --key, api.key in config, or TORN_API_KEY)")
	}

	dict, err := dictionary.Load(cfg.Dictionary.Path)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}

	raw, err := readInput(analyzeInPath)
	if err != nil {
		return err
	}

	result := inventory.Match(raw, dict)
	if len(result.Matched) == 0 {
		reportUnmatched(result.Unmatched)
		return errors.New("no matches found")
	}

	bucket := ratelimit.NewBucket(cfg.RateLimit.PerMinute, logger)
	client, err := market.New(market.Config{
		BaseURL:        cfg.API.BaseURL,
		APIKey:         key,
		Timeout:        cfg.API.Timeout,
		RetryCycles:    cfg.Fetch.RetryCycles,
		InitialBackoff: cfg.Fetch.InitialBackoff,
		MaxBackoff:     cfg.Fetch.MaxBackoff,
		BackoffFactor:  cfg.Fetch.BackoffFactor,
		MaxConcurrency: cfg.Fetch.Concurrency,
	}, bucket, logger)
	if err != nil {
		return err
	}

	reqs := make([]market.Request, 0, len(result.Matched))
	for _, it := range result.Matched {
		reqs = append(reqs, market.Request{ItemID: it.ItemID, Quantity: it.Qty})
	}

	outcomes := client.FetchAll(cmd.Context(), reqs)
	summary := pricing.BuildSummary(outcomes)

	if analyzeCSV {
		if err := writeSummaryCSV(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		printSummaryTable(summary)
	}

	reportUnmatched(result.Unmatched)
	reportFailures(outcomes)
	return nil
}

func printSummaryTable(summary []pricing.Suggestion) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tQTY\tFAST-SELL\tFAIR\tGREEDY")
	for _, s := range summary {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", s.ItemName, s.MyQuantity, s.FastSell, s.Fair, s.Greedy)
	}
	w.Flush()
}

func writeSummaryCSV(out *os.File, summary []pricing.Suggestion) error {
	w := csv.NewWriter(out)
	header := []string{"item_id", "item_name", "my_quantity", "listing_count", "fast_sell", "fair", "greedy"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, s := range summary {
		record := []string{
			strconv.Itoa(s.ItemID),
			s.ItemName,
			strconv.Itoa(s.MyQuantity),
			strconv.Itoa(s.ListingCount),
			strconv.FormatInt(s.FastSell, 10),
			strconv.FormatInt(s.Fair, 10),
			strconv.FormatInt(s.Greedy, 10),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func reportFailures(outcomes []market.Outcome) {
	failed := 0
	for _, o := range outcomes {
		if !o.OK() {
			failed++
			fmt.Fprintf(os.Stderr, "fetch failed: item %d: %v\n", o.ItemID, o.Err)
		}
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d items failed\n", failed, len(outcomes))
	}
}

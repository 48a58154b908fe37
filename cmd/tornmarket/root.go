package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kzon-tools/torn-market-analyzer/internal/config"
	"github.com/kzon-tools/torn-market-analyzer/pkg/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tornmarket",
	Short: "Torn item-market analyzer",
	Long: `tornmarket turns a pasted "Add Listing" inventory dump into per-item
price suggestions. It matches item names against a CSV dictionary and pulls
up to 100 live listings per item from the market API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&cfgFile,
		"config",
		"c",
		"",
		"path to config file (optional, defaults apply without one)",
	)
}

// loadConfig loads the config file when one was given, or a defaulted
// in-memory config otherwise. TORN_API_KEY fills the API key when the
// config leaves it empty.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		loaded, err := config.LoadAndValidate(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if cfg.API.Key == "" {
		cfg.API.Key = os.Getenv("TORN_API_KEY")
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	return logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
}

// readInput reads the inventory text from a file, or stdin when path is "-"
// or empty.
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input file: %w", err)
	}
	return string(data), nil
}

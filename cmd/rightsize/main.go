package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/opscart/vm-rightsizer/pkg/config"
	"github.com/opscart/vm-rightsizer/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile      string
	engineFile   string
	preset       string
	dataDir      string
	region       string
	workers      int
	outputFormat string
	logLevel     string
	logFormat    string

	// Engine flags
	inventoryFile string
	reportFormat  string
	reportOutput  string
	saveResults   bool
	metricsFile   string

	// Validate flags
	advisorFile string

	// History command vars
	historyLimit int

	// Global config
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "rightsize",
		Short:             "Azure VM rightsizing engine",
		Long:              `Find the cheapest VM size that can carry each workload, based on P95/P99 CPU, memory and disk utilization.`,
		PersistentPreRunE: setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "Environment file to load")
	flags.StringVar(&engineFile, "config", "", "YAML file with engine settings")
	flags.StringVar(&preset, "preset", "", "Threshold preset: aggressive, conservative")
	flags.StringVar(&dataDir, "data-dir", "", "Directory with inventory, utilization and sku files")
	flags.StringVar(&region, "region", "", "Azure region (e.g., eastus)")
	flags.IntVar(&workers, "workers", 0, "Parallel evaluations (default: number of CPUs)")
	flags.StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text, json")

	// Engine command
	engineCmd := &cobra.Command{
		Use:   "engine",
		Short: "Search the cheapest adequate SKU for every VM",
		RunE:  runEngine,
	}
	engineCmd.Flags().StringVar(&inventoryFile, "inventory", "", "Write resize operations to this file")
	engineCmd.Flags().StringVar(&reportFormat, "report", "", "Generate a report: html, csv")
	engineCmd.Flags().StringVar(&reportOutput, "report-file", "rightsize-report.html", "Output file for report")
	engineCmd.Flags().BoolVar(&saveResults, "save", false, "Save results to database")
	engineCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write engine metrics in text exposition format")

	// Validate command
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check advisor recommendations against utilization",
		RunE:  runValidate,
	}
	validateCmd.Flags().StringVar(&advisorFile, "advisor", "", "Advisor recommendations file (default: advisor.json in data dir)")
	validateCmd.Flags().BoolVar(&saveResults, "save", false, "Save results to database")

	// History command
	historyCmd := &cobra.Command{
		Use:   "history <subscription>",
		Short: "View past analyses of a subscription",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of analyses to show")

	rootCmd.AddCommand(engineCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)

	return rootCmd
}

// setup builds the configuration from env file, engine file, preset and
// flags, in that order of precedence.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	cfg = config.NewConfig()
	if engineFile != "" {
		if err := cfg.LoadEngineFile(engineFile); err != nil {
			return err
		}
	}

	switch preset {
	case "":
	case "aggressive":
		cfg.UseAggressivePreset()
	case "conservative":
		cfg.UseConservativePreset()
	default:
		return fmt.Errorf("preset must be aggressive or conservative, got %q", preset)
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("region") {
		cfg.Region = region
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	cfg.OutputFormat = outputFormat

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return nil
}

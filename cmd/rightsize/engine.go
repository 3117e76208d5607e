package main

import (
	"fmt"
	"os"
	"time"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/metrics"
	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/opscart/vm-rightsizer/pkg/output"
	"github.com/opscart/vm-rightsizer/pkg/pricing"
	"github.com/opscart/vm-rightsizer/pkg/recommender"
	"github.com/opscart/vm-rightsizer/pkg/reporter"
	"github.com/opscart/vm-rightsizer/pkg/storage"
	"github.com/spf13/cobra"
)

func runEngine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	started := time.Now()

	handler, err := output.NewHandler(cfg.OutputFormat, os.Stdout)
	if err != nil {
		return err
	}
	if reportFormat != "" && reportFormat != string(reporter.FormatHTML) && reportFormat != string(reporter.FormatCSV) {
		return fmt.Errorf("report must be html or csv, got %q", reportFormat)
	}

	src := openSource(ctx)
	skus, in, err := loadRun(ctx, src)
	if err != nil {
		return err
	}

	prices, err := loadPrices(ctx)
	if err != nil {
		return fmt.Errorf("failed to load prices: %w", err)
	}

	catalog, err := pricing.NewBuilder(cfg.CatalogConfig(), logger).Build(skus, prices)
	if err != nil {
		return err
	}
	logger.Info("priced catalog built", "region", cfg.Region, "priced", catalog.Len(), "candidates", len(catalog.Candidates))

	m := metrics.New(cfg.Region)
	evaluator := analyzer.NewFitnessEvaluator(cfg.Thresholds, cfg.DatabaseRole)
	engine := recommender.NewEngine(evaluator, catalog, recommender.EngineConfig{
		Workers: cfg.Workers,
		Metrics: m,
	}, logger)

	results, err := engine.Run(ctx, in)
	if err != nil {
		return err
	}

	if err := display(cmd, handler, in.Resources, results); err != nil {
		return err
	}

	if inventoryFile != "" {
		inv := output.BuildInventory(in.Resources, results)
		if err := output.WriteInventoryFile(inventoryFile, inv); err != nil {
			return err
		}
		logger.Info("inventory written", "path", inventoryFile, "operations", len(inv.Operations))
	}

	if reportFormat != "" {
		if err := writeReport(in.Resources, results, "engine"); err != nil {
			logger.Error("failed to generate report", "error", err)
		}
	}

	if metricsFile != "" {
		if err := m.WriteTextfile(metricsFile); err != nil {
			logger.Error("failed to write metrics", "error", err)
		}
	}

	if saveResults {
		return save(cmd, "engine", started, in.Resources, results)
	}
	return nil
}

func display(cmd *cobra.Command, handler output.Handler, resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) error {
	summary := recommender.Summarize(results)
	if err := handler.DisplayResults(cmd.Context(), resources, results); err != nil {
		return err
	}
	return handler.DisplaySummary(cmd.Context(), summary.AnnualSaving, summary.Valid, summary.Resources)
}

func writeReport(resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis, source string) error {
	r := reporter.New(reporter.ReportFormat(reportFormat))
	report := r.Generate(resources, results, cfg.Region, source)

	f, err := os.Create(reportOutput)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := r.Write(report, f); err != nil {
		return err
	}
	logger.Info("report generated", "path", reportOutput, "format", reportFormat)
	return nil
}

func save(cmd *cobra.Command, source string, started time.Time, resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	summary := recommender.Summarize(results)
	run := &models.Run{
		Region:      cfg.Region,
		Source:      source,
		Resources:   summary.Resources,
		Valid:       summary.Valid,
		TotalSaving: summary.AnnualSaving,
		StartedAt:   started,
		FinishedAt:  time.Now(),
	}
	if err := storage.SaveResults(ctx, store, run, resources, results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	logger.Info("results saved", "run_id", run.ID, "analyses", len(results))
	return nil
}

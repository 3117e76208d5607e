package main

import (
	"fmt"
	"os"
	"time"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/datasource"
	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/opscart/vm-rightsizer/pkg/output"
	"github.com/opscart/vm-rightsizer/pkg/recommender"
	"github.com/spf13/cobra"
)

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	started := time.Now()

	handler, err := output.NewHandler(cfg.OutputFormat, os.Stdout)
	if err != nil {
		return err
	}

	src := openSource(ctx)
	skus, in, err := loadRun(ctx, src)
	if err != nil {
		return err
	}

	advisor, err := loadAdvisor(cmd, src)
	if err != nil {
		return err
	}
	logger.Info("advisor recommendations loaded", "count", len(advisor))

	evaluator := analyzer.NewFitnessEvaluator(cfg.Thresholds, cfg.DatabaseRole)
	validator := recommender.NewValidator(evaluator, models.NewComputeCatalog(skus), logger)
	results := validator.Validate(in, advisor)

	if err := display(cmd, handler, in.Resources, results); err != nil {
		return err
	}

	if saveResults {
		return save(cmd, "advisor", started, in.Resources, results)
	}
	return nil
}

func loadAdvisor(cmd *cobra.Command, src datasource.Source) (map[string]string, error) {
	if advisorFile == "" {
		return src.AdvisorRecommendations(cmd.Context())
	}
	data, err := os.ReadFile(advisorFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read advisor file: %w", err)
	}
	return datasource.ParseAdvisor(data)
}

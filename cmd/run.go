// ABOUTME: Non-interactive experiment runner command
// ABOUTME: Wires backends, policy, and executor, then streams period records

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/continua-ai/continua/backends"
	"github.com/continua-ai/continua/config"
	"github.com/continua-ai/continua/logger"
	"github.com/continua-ai/continua/models"
	"github.com/continua-ai/continua/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scheduling experiment",
	Long: `Run the period loop against the simulated execution backend.

Example:
  POLICY=thief CAMERAS=zurich,vegas NUM_PERIODS=10 continua run --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		if envFile != "" {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
		} else {
			// Default .env is optional
			_ = godotenv.Load()
		}

		logger.Init()
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		return runExperiment(ctx, cfg, os.Stdout, jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runExperiment(ctx context.Context, cfg *config.Config, w io.Writer, jsonOut bool) error {
	pool := models.ResourcePool{
		TotalCapacity:        cfg.GPUCapacity,
		MaxInferenceFraction: cfg.MaxInferenceFraction,
	}
	if err := pool.Validate(); err != nil {
		return err
	}

	data := backends.NewSimDataSource(cfg.InferenceChunks)
	backend := backends.NewSimBackend(cfg.SimSeed)
	catalog := backends.NewCachedCatalog(
		backends.NewStaticCatalog(cfg.CandidateConfigs, nil),
		time.Duration(cfg.CatalogCacheTTL)*time.Second,
	)
	defer catalog.Close()

	profiler, err := scheduler.NewMicroprofiler(backend, data, catalog, pool,
		cfg.CurveShape, cfg.TrialFraction, cfg.CurveStep)
	if err != nil {
		return err
	}
	policy, err := scheduler.NewPolicy(cfg.Policy, cfg.FairInferenceWeight, cfg.QuantumFraction, cfg.Epsilon)
	if err != nil {
		return err
	}

	registry := models.NewRegistry()
	for _, cam := range cfg.Cameras {
		err := registry.Add(&models.Job{
			ID:              cam,
			TaskCursor:      cfg.StartTask,
			StartTask:       cfg.StartTask,
			TerminationTask: cfg.TerminationTask,
		})
		if err != nil {
			return err
		}
	}

	if cfg.MetricsPort != "" {
		go func() {
			addr := ":" + cfg.MetricsPort
			slog.Info("Serving metrics", "addr", addr)
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, nil); err != nil {
				slog.Error("Metrics server stopped", "error", err)
			}
		}()
	}

	runID := uuid.New().String()
	executor := scheduler.NewExecutor(pool, registry, profiler, policy, backend, data, scheduler.ExecutorConfig{
		RunID:                runID,
		NumPeriods:           cfg.NumPeriods,
		Epochs:               cfg.Epochs,
		InferenceChunks:      cfg.InferenceChunks,
		MaxTransientFailures: cfg.MaxTransientFailures,
	})

	slog.Info("Starting run",
		"run_id", runID, "policy", cfg.Policy, "cameras", len(cfg.Cameras),
		"capacity_gpus", cfg.GPUCapacity, "periods", cfg.NumPeriods)

	records, err := executor.Run(ctx)
	if writeErr := writeRecords(w, records, jsonOut); writeErr != nil {
		return writeErr
	}
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	slog.Info("Run complete", "run_id", runID, "periods_committed", len(records))
	return nil
}

func writeRecords(w io.Writer, records []models.PeriodRecord, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(w, "period %d  policy=%s  jobs=%d  est_utility=%.4f\n",
			rec.Period, rec.Policy, rec.ActiveJobs, rec.EstimatedUtility)
		for _, res := range rec.Results {
			status := "ok"
			if res.Failure != "" {
				status = res.Failure
			}
			fmt.Fprintf(w, "  %-12s train=%.3f infer=%.3f acc=%.4f (%+.4f) backlog=%.1f [%s]\n",
				res.JobID, res.TrainingUsed, res.InferenceUsed, res.Accuracy, res.AccuracyGain, res.Backlog, status)
		}
	}
	return nil
}

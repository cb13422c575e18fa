// ABOUTME: Configuration loader for the retraining scheduler
// ABOUTME: Loads run settings from environment variables with defaults and validation

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Policy names accepted by POLICY.
const (
	PolicyFair  = "fair"
	PolicyThief = "thief"
)

// Curve shapes accepted by CURVE_SHAPE.
const (
	CurveSqrt = "sqrt"
	CurveLog  = "log"
)

type Config struct {
	// Resource pool
	GPUCapacity          float64 // total compute capacity in whole-GPU units
	MaxInferenceFraction float64 // fraction of capacity reservable for inference, [0,1]

	// Microprofiling
	TrialFraction float64 // resource fraction for one profiling trial
	CurveShape    string  // sqrt or log extrapolation
	CurveStep     float64 // utility curve discretization step

	// Allocation
	Policy              string  // fair or thief
	FairInferenceWeight float64 // fair policy inference weight, [0,1]
	QuantumFraction     float64 // thief exchange quantum as fraction of capacity
	Epsilon             float64 // marginal utility comparison tolerance

	// Period loop
	NumPeriods      int // number of retraining periods to run
	PeriodSeconds   int // retraining period length
	StartTask       int // first task index for every job
	TerminationTask int // last task index; jobs retire past this
	Epochs          int // training scale factor per period
	InferenceChunks int // inference scale factor per period

	// Failure handling
	MaxTransientFailures int // consecutive transient failures before retirement (0 = never)

	// Workload
	Cameras          []string // camera feed names, one job each
	CandidateConfigs []string // hyperparameter configuration ids to profile

	// Backends
	CatalogCacheTTL int   // seconds, cost profile cache TTL
	SimSeed         int64 // seed for the simulated execution backend

	// Observability
	MetricsPort string // prometheus exposition port (empty = disabled)
}

func Load() (*Config, error) {
	cfg := &Config{
		GPUCapacity:          getEnvFloat("GPU_CAPACITY", 1.0),
		MaxInferenceFraction: getEnvFloat("MAX_INFERENCE_FRACTION", 0.25),

		TrialFraction: getEnvFloat("TRIAL_FRACTION", 0.1),
		CurveShape:    getEnv("CURVE_SHAPE", CurveSqrt),
		CurveStep:     getEnvFloat("CURVE_STEP", 0.01),

		Policy:              getEnv("POLICY", PolicyThief),
		FairInferenceWeight: getEnvFloat("FAIR_INFERENCE_WEIGHT", 0.2),
		QuantumFraction:     getEnvFloat("QUANTUM_FRACTION", 0.01),
		Epsilon:             getEnvFloat("EPSILON", 1e-6),

		NumPeriods:      getEnvInt("NUM_PERIODS", 10),
		PeriodSeconds:   getEnvInt("PERIOD_SECONDS", 200),
		StartTask:       getEnvInt("START_TASK", 0),
		TerminationTask: getEnvInt("TERMINATION_TASK", 9),
		Epochs:          getEnvInt("EPOCHS", 15),
		InferenceChunks: getEnvInt("INFERENCE_CHUNKS", 10),

		MaxTransientFailures: getEnvInt("MAX_TRANSIENT_FAILURES", 5),

		Cameras:          getEnvStringList("CAMERAS"),
		CandidateConfigs: getEnvStringList("CANDIDATE_CONFIGS"),

		CatalogCacheTTL: getEnvInt("CATALOG_CACHE_TTL", 300),
		SimSeed:         int64(getEnvInt("SIM_SEED", 42)),

		MetricsPort: os.Getenv("METRICS_PORT"),
	}

	if len(cfg.Cameras) == 0 {
		cfg.Cameras = []string{"zurich", "vegas", "bellevue"}
	}
	if len(cfg.CandidateConfigs) == 0 {
		cfg.CandidateConfigs = []string{"resnet18_e5", "resnet18_e15", "resnet50_e5"}
	}

	// Validate resource settings
	if cfg.GPUCapacity <= 0 {
		return nil, fmt.Errorf("GPU_CAPACITY must be positive, got %g", cfg.GPUCapacity)
	}
	if cfg.MaxInferenceFraction < 0 || cfg.MaxInferenceFraction > 1 {
		return nil, fmt.Errorf("MAX_INFERENCE_FRACTION must be in [0,1], got %g", cfg.MaxInferenceFraction)
	}
	if cfg.TrialFraction <= 0 || cfg.TrialFraction > cfg.GPUCapacity {
		return nil, fmt.Errorf("TRIAL_FRACTION must be in (0, GPU_CAPACITY], got %g", cfg.TrialFraction)
	}
	if cfg.QuantumFraction <= 0 || cfg.QuantumFraction > 1 {
		return nil, fmt.Errorf("QUANTUM_FRACTION must be in (0,1], got %g", cfg.QuantumFraction)
	}
	if cfg.CurveStep <= 0 || cfg.CurveStep > 1 {
		return nil, fmt.Errorf("CURVE_STEP must be in (0,1], got %g", cfg.CurveStep)
	}
	if cfg.FairInferenceWeight < 0 || cfg.FairInferenceWeight > 1 {
		return nil, fmt.Errorf("FAIR_INFERENCE_WEIGHT must be in [0,1], got %g", cfg.FairInferenceWeight)
	}
	if cfg.Epsilon <= 0 {
		return nil, fmt.Errorf("EPSILON must be positive, got %g", cfg.Epsilon)
	}

	// Validate policy and curve selections
	if cfg.Policy != PolicyFair && cfg.Policy != PolicyThief {
		return nil, fmt.Errorf("POLICY must be %q or %q, got %q", PolicyFair, PolicyThief, cfg.Policy)
	}
	if cfg.CurveShape != CurveSqrt && cfg.CurveShape != CurveLog {
		return nil, fmt.Errorf("CURVE_SHAPE must be %q or %q, got %q", CurveSqrt, CurveLog, cfg.CurveShape)
	}

	// Validate loop bounds
	for _, iv := range []struct {
		name  string
		value int
	}{
		{"NUM_PERIODS", cfg.NumPeriods},
		{"PERIOD_SECONDS", cfg.PeriodSeconds},
		{"EPOCHS", cfg.Epochs},
		{"INFERENCE_CHUNKS", cfg.InferenceChunks},
	} {
		if iv.value < 1 {
			return nil, fmt.Errorf("%s must be at least 1, got %d", iv.name, iv.value)
		}
	}
	if cfg.TerminationTask < cfg.StartTask {
		return nil, fmt.Errorf("TERMINATION_TASK (%d) must not precede START_TASK (%d)", cfg.TerminationTask, cfg.StartTask)
	}
	if cfg.MaxTransientFailures < 0 {
		return nil, fmt.Errorf("MAX_TRANSIENT_FAILURES must be non-negative, got %d", cfg.MaxTransientFailures)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

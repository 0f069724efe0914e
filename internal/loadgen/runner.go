package loadgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/pediscore/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	percentMultiplier   = 100
)

// Run executes a complete load run: health check, generation, submission,
// verification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting pediscore load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("patients", cfg.Patients),
		logger.Int("assessmentsPerPatient", cfg.AssessmentsPerPatient),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	plans := generatePlans(cfg, stats)

	if cfg.OutputFile != "" {
		if err := savePlans(cfg.OutputFile, plans); err != nil {
			log.Warn(ctx, "failed to save generated requests", logger.Error(err))
		} else {
			log.Info(ctx, "generated requests saved", logger.String("filename", cfg.OutputFile))
		}
	}

	sent, err := submitPlans(ctx, cfg, plans, stats)
	if err != nil {
		return stats, fmt.Errorf("assessment submission failed: %w", err)
	}

	if err := verifyRisk(ctx, cfg, plans, sent, stats); err != nil {
		finish(ctx, stats)
		return stats, fmt.Errorf("risk verification failed: %w", err)
	}

	finish(ctx, stats)
	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	return newClient(cfg.BaseURL, cfg.Timeout).getJSON(ctx, "/healthz", nil)
}

// savePlans writes the generated requests as a JSON array.
func savePlans(filename string, plans []Plan) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plans); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write plans: %w", err)
	}
	return file.Close()
}

// finish stamps the end time and logs the final statistics.
func finish(ctx context.Context, stats *Stats) {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	var acceptRate, perSecond float64
	if stats.Submitted > 0 {
		acceptRate = float64(stats.Accepted) / float64(stats.Submitted) * percentMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("patientsVerified", stats.PatientsVerified),
		logger.Int("patientsMismatched", stats.PatientsMismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("submissionsPerSecond", perSecond))
}

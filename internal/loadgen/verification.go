package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pediscore/pkg/logger"
)

// Verification tuning.
const (
	pollInterval   = 100 * time.Millisecond
	scoreTolerance = 0.051
)

// ErrMismatch is returned when a patient's composite risk disagrees with
// what was submitted.
var ErrMismatch = errors.New("composite risk mismatch")

// verifyRisk waits for every accepted assessment to be processed, then
// checks each patient's composite risk against the submissions.
func verifyRisk(ctx context.Context, cfg *Config, plans []Plan, sent []submitted, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "verifying composite risk", logger.Int("patients", len(plans)))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	deadline := time.Now().Add(cfg.Settle)
	var verified, mismatched atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for p, plan := range plans {
		if len(sent[p].ids) == 0 {
			continue
		}
		g.Go(func() error {
			report, err := awaitRisk(gctx, c, plan.PatientID, len(sent[p].ids), deadline)
			if err == nil {
				err = checkRisk(report, sent[p])
			}
			switch {
			case errors.Is(err, ErrMismatch):
				mismatched.Add(1)
				log.Warn(gctx, "patient risk mismatch",
					logger.String("patientId", plan.PatientID),
					logger.Error(err))
				return nil
			case err != nil:
				return err
			}
			verified.Add(1)
			return nil
		})
	}
	err := g.Wait()

	stats.PatientsVerified = int(verified.Load())
	stats.PatientsMismatched = int(mismatched.Load())
	if err != nil {
		return err
	}
	if stats.PatientsMismatched > 0 {
		return fmt.Errorf("%w: %d of %d patients", ErrMismatch,
			stats.PatientsMismatched, stats.PatientsMismatched+stats.PatientsVerified)
	}
	log.Info(ctx, "composite risk verified", logger.Int("patients", stats.PatientsVerified))
	return nil
}

// awaitRisk polls the risk endpoint until want score types contribute or
// the deadline passes. The last report seen is returned either way.
func awaitRisk(ctx context.Context, c *client, patientID string, want int, deadline time.Time) (riskReport, error) {
	var report riskReport
	for {
		var current riskReport
		err := c.getJSON(ctx, riskPath(patientID), &current)
		if err == nil {
			report = current
			if len(report.Contributions) >= want {
				return report, nil
			}
		} else if !errors.Is(err, ErrUnexpectedStatus) {
			return report, err
		}

		if time.Now().After(deadline) {
			return report, fmt.Errorf("%w: %s has %d of %d score types after settling",
				ErrMismatch, patientID, len(report.Contributions), want)
		}
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// checkRisk verifies that each contribution comes from the latest accepted
// assessment of its type and that the score is the weighted mean.
func checkRisk(report riskReport, sent submitted) error {
	if len(report.Contributions) != len(sent.ids) {
		return fmt.Errorf("%w: %d contributions for %d score types",
			ErrMismatch, len(report.Contributions), len(sent.ids))
	}

	var weighted, weights float64
	for _, c := range report.Contributions {
		ids := sent.ids[string(c.ScoreType)]
		if len(ids) == 0 {
			return fmt.Errorf("%w: unexpected %s contribution", ErrMismatch, c.ScoreType)
		}
		if latest := ids[len(ids)-1]; c.AssessmentID != latest {
			if slices.Contains(ids, c.AssessmentID) {
				return fmt.Errorf("%w: %s uses %s, latest is %s", ErrMismatch, c.ScoreType, c.AssessmentID, latest)
			}
			return fmt.Errorf("%w: %s uses unknown assessment %s", ErrMismatch, c.ScoreType, c.AssessmentID)
		}
		if c.RiskValue < 0 || c.RiskValue > 100 {
			return fmt.Errorf("%w: %s risk %.1f out of range", ErrMismatch, c.ScoreType, c.RiskValue)
		}
		weighted += c.RiskValue * c.Weight
		weights += c.Weight
	}

	if report.Score == nil || weights == 0 {
		return fmt.Errorf("%w: no composite score", ErrMismatch)
	}
	if want := weighted / weights; math.Abs(*report.Score-want) > scoreTolerance {
		return fmt.Errorf("%w: composite %.1f, expected %.2f", ErrMismatch, *report.Score, want)
	}
	return nil
}

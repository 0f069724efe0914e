package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/pkg/logger"
)

// Submission outcomes.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeFailed    = "failed"
)

// ErrUnexpectedStatus is returned for responses outside the documented set.
var ErrUnexpectedStatus = errors.New("unexpected status")

// client wraps http.Client with the service base URL.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// getJSON fetches path and decodes a 200 response into v.
func (c *client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: GET %s: %d", ErrUnexpectedStatus, path, resp.StatusCode)
	}
	if v == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// postJSON posts body to path and returns the status with the decoded reply.
func (c *client) postJSON(ctx context.Context, path string, body, v any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("decoding reply: %w", err)
	}
	return resp.StatusCode, nil
}

// submitted records what the service acknowledged for one patient.
type submitted struct {
	// ids maps each score type to the assessment IDs accepted for it.
	ids map[string][]string
}

// submitPlans sends every plan concurrently, one goroutine per patient so
// each patient's assessments arrive in plan order.
func submitPlans(ctx context.Context, cfg *Config, plans []Plan, stats *Stats) ([]submitted, error) {
	log := logger.Get()
	log.Info(ctx, "submitting assessments",
		logger.Int("patients", len(plans)),
		logger.Int("workers", cfg.Workers))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	var accepted, duplicate, failed, sent atomic.Int64
	out := make([]submitted, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for p, plan := range plans {
		g.Go(func() error {
			out[p] = submitted{ids: map[string][]string{}}
			for i, req := range plan.Requests {
				copies := 1
				if cfg.DuplicateEvery > 0 && (i+1)%cfg.DuplicateEvery == 0 {
					copies = 2
				}
				for range copies {
					if err := gctx.Err(); err != nil {
						return err
					}
					sent.Add(1)
					outcome, id := submitOne(gctx, c, req)
					switch outcome {
					case outcomeAccepted:
						accepted.Add(1)
						out[p].ids[string(req.ScoreType)] = append(out[p].ids[string(req.ScoreType)], id)
					case outcomeDuplicate:
						duplicate.Add(1)
					default:
						failed.Add(1)
					}
				}
			}
			log.Debug(gctx, "patient submitted", logger.String("patientId", plan.PatientID))
			return nil
		})
	}
	err := g.Wait()

	stats.Submitted = int(sent.Load())
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "assessment submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed))
	return out, err
}

// submitOne posts a single assessment and classifies the reply.
func submitOne(ctx context.Context, c *client, req model.ScoreRequest) (string, string) { //nolint:gocritic // hugeParam: request is a value type
	var ack receipt
	status, err := c.postJSON(ctx, "/assessments", req, &ack)
	if err != nil {
		logger.Get().Debug(ctx, "submission failed", logger.String("requestId", req.RequestID), logger.Error(err))
		return outcomeFailed, ""
	}
	switch {
	case status == http.StatusAccepted && ack.Status == outcomeAccepted:
		return outcomeAccepted, ack.AssessmentID
	case status == http.StatusOK && ack.Duplicate:
		return outcomeDuplicate, ack.AssessmentID
	default:
		logger.Get().Debug(ctx, "submission rejected",
			logger.String("requestId", req.RequestID),
			logger.Int("status", status))
		return outcomeFailed, ""
	}
}

func riskPath(patientID string) string {
	return "/patients/" + url.PathEscape(patientID) + "/risk"
}

package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/pediscore/internal/adapters/http/api"
	service "github.com/okian/pediscore/internal/app"
	"github.com/okian/pediscore/internal/domain/composite"
	"github.com/okian/pediscore/internal/domain/scoring"
	"github.com/okian/pediscore/internal/domain/types"
	"github.com/okian/pediscore/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func startService(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := service.New(service.WithWorkerCount(4))
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	srv := api.NewServer(svc, svc)
	srv.Register(ctx, mux)
	ts := httptest.NewServer(srv.Handler(mux))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:               baseURL,
		Patients:              5,
		AssessmentsPerPatient: 4,
		DuplicateEvery:        2,
		Workers:               3,
		Timeout:               5 * time.Second,
		Settle:                5 * time.Second,
	}
}

func TestRunAgainstService(t *testing.T) {
	ts := startService(t)
	cfg := testConfig(ts.URL)
	cfg.OutputFile = filepath.Join(t.TempDir(), "out", "plans.json")

	stats, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, 20, stats.Generated)
	assert.Equal(t, 30, stats.Submitted)
	assert.Equal(t, 20, stats.Accepted)
	assert.Equal(t, 10, stats.Duplicate)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, 5, stats.PatientsVerified)
	assert.Zero(t, stats.PatientsMismatched)
	assert.True(t, stats.Duration > 0)

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var plans []Plan
	require.NoError(t, json.Unmarshal(data, &plans))
	assert.Len(t, plans, 5)
}

func TestRunUnhealthyService(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := Run(context.Background(), testConfig(ts.URL))
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "health check")
}

func TestGeneratedInputsScore(t *testing.T) {
	stats := &Stats{}
	plans := generatePlans(&Config{Patients: 10, AssessmentsPerPatient: 6}, stats)
	require.Len(t, plans, 10)
	assert.Equal(t, 60, stats.Generated)

	engine := scoring.New()
	seen := map[types.ScoreType]bool{}
	for _, p := range plans {
		require.Len(t, p.Requests, 6)
		for _, req := range p.Requests {
			assert.Equal(t, p.PatientID, req.PatientID)
			assert.NotEmpty(t, req.RequestID)
			res := engine.Compute(req.ScoreType, req.Input, req.Patient)
			assert.False(t, res.Failed(), "%s: %s", req.ScoreType, res.Error)
			seen[req.ScoreType] = true
		}
	}
	assert.Len(t, seen, len(generators))
}

func TestCheckRisk(t *testing.T) {
	score := func(v float64) *float64 { return &v }
	sent := submitted{ids: map[string][]string{
		"prism3":   {"p1", "p2"},
		"comfortb": {"c1"},
	}}
	good := riskReport{Summary: composite.Summary{
		Score: score(14),
		Contributions: []composite.Contribution{
			{ScoreType: types.PRISM3, AssessmentID: "p2", RiskValue: 20, Weight: 1.5},
			{ScoreType: types.COMFORTB, AssessmentID: "c1", RiskValue: 2.75, Weight: 0.8},
		},
	}}
	// (20*1.5 + 2.75*0.8) / 2.3 = 14.0
	require.NoError(t, checkRisk(good, sent))

	stale := good
	stale.Contributions = []composite.Contribution{good.Contributions[0], good.Contributions[1]}
	stale.Contributions[0].AssessmentID = "p1"
	assert.ErrorIs(t, checkRisk(stale, sent), ErrMismatch)

	unknown := good
	unknown.Contributions = []composite.Contribution{good.Contributions[0], good.Contributions[1]}
	unknown.Contributions[1].AssessmentID = "zz"
	assert.ErrorContains(t, checkRisk(unknown, sent), "unknown assessment")

	wrongScore := good
	wrongScore.Score = score(30)
	assert.ErrorIs(t, checkRisk(wrongScore, sent), ErrMismatch)

	missing := good
	missing.Contributions = good.Contributions[:1]
	assert.ErrorIs(t, checkRisk(missing, sent), ErrMismatch)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, testConfig("http://x").validate())

	cfg := testConfig("")
	cfg.Patients = 0
	cfg.Workers = 0
	cfg.DuplicateEvery = -1
	err := cfg.validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "url must not be empty")
	assert.Contains(t, err.Error(), "workers must be positive")
}

func TestCommand(t *testing.T) {
	ts := startService(t)

	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	err := app.Run(context.Background(), []string{
		"load-assessments", "--url", ts.URL, "--patients", "3", "--assessments", "3",
		"--workers", "2", "--settle", "5s",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "verified 3 patients from 9 assessments (0 duplicates)")

	app = NewApp()
	err = app.Run(context.Background(), []string{"load-assessments", "--patients", "0"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

package loadgen

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	urfave "github.com/urfave/cli/v3"

	"github.com/okian/pediscore/pkg/logger"
)

// Default run parameters.
const (
	defaultPatients              = 200
	defaultAssessmentsPerPatient = 6
	defaultDuplicateEvery        = 5
	defaultWorkersPerCPU         = 2
	defaultTimeout               = 30 * time.Second
	defaultSettle                = 30 * time.Second
	defaultRunTimeout            = 10 * time.Minute
)

// Execute runs the load tool with the process arguments.
func Execute() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := NewApp().Run(context.Background(), os.Args); err != nil {
		logger.Get().Error(context.Background(), "load run failed", logger.Error(err))
		os.Exit(1)
	}
}

// NewApp returns the load tool command.
func NewApp() *urfave.Command {
	return &urfave.Command{
		Name:  "load-assessments",
		Usage: "Submit synthetic assessments to a pediscore service and verify patient risk",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "url", Usage: "Base URL of the service", Value: "http://localhost:9080"},
			&urfave.IntFlag{Name: "patients", Usage: "Number of synthetic patients", Value: defaultPatients},
			&urfave.IntFlag{Name: "assessments", Usage: "Assessments per patient", Value: defaultAssessmentsPerPatient},
			&urfave.IntFlag{Name: "duplicate-every", Usage: "Resend every Nth assessment with the same request ID (0 disables)", Value: defaultDuplicateEvery},
			&urfave.IntFlag{Name: "workers", Usage: "Patients submitted concurrently", Value: runtime.NumCPU() * defaultWorkersPerCPU},
			&urfave.DurationFlag{Name: "timeout", Usage: "HTTP request timeout", Value: defaultTimeout},
			&urfave.DurationFlag{Name: "settle", Usage: "How long to wait for queued assessments to be scored", Value: defaultSettle},
			&urfave.DurationFlag{Name: "run-timeout", Usage: "Upper bound for the whole run", Value: defaultRunTimeout},
			&urfave.StringFlag{Name: "output", Usage: "Write the generated requests to this JSON file"},
			&urfave.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Action: func(ctx context.Context, cmd *urfave.Command) error {
			if cmd.Bool("verbose") {
				if err := logger.SetLevelString("debug"); err != nil {
					return err
				}
			}

			cfg := &Config{
				BaseURL:               cmd.String("url"),
				Patients:              int(cmd.Int("patients")),
				AssessmentsPerPatient: int(cmd.Int("assessments")),
				DuplicateEvery:        int(cmd.Int("duplicate-every")),
				Workers:               int(cmd.Int("workers")),
				Timeout:               cmd.Duration("timeout"),
				Settle:                cmd.Duration("settle"),
				OutputFile:            cmd.String("output"),
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("run-timeout"))
			defer cancel()

			stats, err := Run(ctx, cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "verified %d patients from %d assessments (%d duplicates) in %s\n",
				stats.PatientsVerified, stats.Accepted, stats.Duplicate, stats.Duration.Round(time.Millisecond))
			return err
		},
	}
}

// Package cli implements the pediscore command line: scoring a single
// record from a file and inspecting the supported scores.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/okian/pediscore/internal/config"
	"github.com/okian/pediscore/pkg/logger"
)

// Output formats.
const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	// ErrUnknownFormat is returned for an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrNotScored is returned when the engine could not compute a score.
	ErrNotScored = errors.New("not scored")
)

// Execute builds the application and runs it with the process arguments.
func Execute() {
	if err := logger.InitWith(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := NewApp().Run(context.Background(), os.Args); err != nil {
		logger.Get().Error(context.Background(), "command failed", logger.Error(err))
		os.Exit(1)
	}
}

// NewApp returns the root command.
func NewApp() *urfave.Command {
	return &urfave.Command{
		Name:            "pediscore",
		Version:         fmt.Sprintf("%s (%s)", version, commit),
		Usage:           "Compute pediatric ICU severity scores from the command line",
		HideHelpCommand: true,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  "debug",
				Usage: "Prints verbose logs",
			},
			&urfave.StringFlag{
				Name:    "log-level",
				Usage:   "Log verbosity: debug, info, warn or error",
				Value:   config.New().LogLevel,
				Sources: urfave.EnvVars(config.EnvPrefix + "LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			level := cmd.String("log-level")
			if cmd.Bool("debug") {
				level = "debug"
			}
			return ctx, logger.SetLevelString(level)
		},
		Commands: []*urfave.Command{
			scoreCmd(),
			schemaCmd(),
			typesCmd(),
		},
	}
}

func formatFlag(formats ...string) *urfave.StringFlag {
	return &urfave.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Usage:   fmt.Sprintf("Output format %v", formats),
		Value:   formats[0],
	}
}

func checkFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, format, allowed)
	}
	return nil
}

// encode writes v as indented JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

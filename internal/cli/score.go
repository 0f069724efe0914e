package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/okian/pediscore/internal/domain/scoring"
	"github.com/okian/pediscore/internal/domain/types"
	"github.com/okian/pediscore/internal/report"
	"github.com/okian/pediscore/pkg/logger"
)

func scoreCmd() *urfave.Command {
	return &urfave.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Score one record read from a JSON or YAML file",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:     "type",
				Aliases:  []string{"t"},
				Usage:    fmt.Sprintf("Score type %v", types.ScoreTypes()),
				Required: true,
			},
			&urfave.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the input file, or - for stdin",
				Required: true,
			},
			&urfave.FloatFlag{
				Name:  "age-months",
				Usage: "Patient age in months",
			},
			&urfave.StringFlag{
				Name:  "age-category",
				Usage: "Patient age category (neonate, infant, child, adolescent)",
			},
			formatFlag(formatJSON, formatYAML, formatMarkdown, formatHTML),
		},
		Action: runScore,
	}
}

func runScore(ctx context.Context, cmd *urfave.Command) error {
	format := cmd.String("format")
	if err := checkFormat(format, formatJSON, formatYAML, formatMarkdown, formatHTML); err != nil {
		return err
	}

	raw, err := readInput(cmd.Root().Reader, cmd.String("input"))
	if err != nil {
		return err
	}

	var pc types.PatientContext
	if cmd.IsSet("age-months") {
		m := cmd.Float("age-months")
		pc.AgeInMonths = &m
	}
	pc.AgeCategory = types.AgeCategory(cmd.String("age-category"))

	start := time.Now()
	res := scoring.New().Compute(types.ScoreType(cmd.String("type")), raw, pc)
	logger.Get().Debug(ctx, "scored record",
		logger.String("scoreType", string(res.ScoreType)),
		logger.Duration("took", time.Since(start)))

	if err := writeResult(cmd.Root().Writer, format, res); err != nil {
		return err
	}
	if res.Failed() {
		return fmt.Errorf("%w: %s", ErrNotScored, res.Error)
	}
	return nil
}

func writeResult(w io.Writer, format string, res types.Result) error { //nolint:gocritic // hugeParam: Result is read only
	switch format {
	case formatMarkdown:
		return report.Result(w, res)
	case formatHTML:
		var md bytes.Buffer
		if err := report.Result(&md, res); err != nil {
			return err
		}
		page, err := report.HTML(res.ScoreType.DisplayName(), md.Bytes())
		if err != nil {
			return err
		}
		_, err = w.Write(page)
		return err
	default:
		return encode(w, format, res)
	}
}

// readInput loads the raw field map. Files ending in .json are decoded as
// JSON; everything else, stdin included, goes through the YAML decoder,
// which also accepts JSON.
func readInput(stdin io.Reader, path string) (scoring.RawInput, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	raw := scoring.RawInput{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding input %s: %w", path, err)
	}
	return raw, nil
}

package cli

import (
	"context"
	"fmt"

	urfave "github.com/urfave/cli/v3"

	"github.com/okian/pediscore/internal/domain/scoring"
	"github.com/okian/pediscore/internal/domain/types"
)

func schemaCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "schema",
		Usage: "Print the input fields of one or every score",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Score type (default: all)",
			},
			formatFlag(formatJSON, formatYAML),
		},
		Action: func(_ context.Context, cmd *urfave.Command) error {
			format := cmd.String("format")
			if err := checkFormat(format, formatJSON, formatYAML); err != nil {
				return err
			}

			engine := scoring.New()
			if t := cmd.String("type"); t != "" {
				schema, err := engine.Schema(types.ScoreType(t))
				if err != nil {
					return err
				}
				return encode(cmd.Root().Writer, format, schema)
			}
			return encode(cmd.Root().Writer, format, engine.Schemas())
		},
	}
}

func typesCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "types",
		Usage: "List the supported score identifiers",
		Action: func(_ context.Context, cmd *urfave.Command) error {
			for _, t := range scoring.New().Types() {
				if _, err := fmt.Fprintf(cmd.Root().Writer, "%-10s %s\n", t, t.DisplayName()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Package report renders score results as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/okian/pediscore/internal/domain/model"
	"github.com/okian/pediscore/internal/domain/types"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Result writes r as a Markdown section.
func Result(w io.Writer, r types.Result) error { //nolint:gocritic // hugeParam: Result is read only
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", r.ScoreType.DisplayName())

	if r.Failed() {
		fmt.Fprintf(&b, "**Not scored** (%s): %s\n", r.ErrorKind, r.Error)
		if len(r.MissingFields) > 0 {
			b.WriteString("\nFields to check:\n\n")
			for _, f := range r.MissingFields {
				fmt.Fprintf(&b, "- %s\n", f)
			}
		}
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("| Domain | Points | Max |\n|---|---:|---:|\n")
	for _, d := range r.SubScores {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", d.Domain, d.Points, d.Max)
	}
	fmt.Fprintf(&b, "| **Total** | **%d** | |\n\n", r.TotalScore)

	var facts []string
	if r.MortalityRisk != nil {
		facts = append(facts, fmt.Sprintf("Predicted mortality: %.1f%%", *r.MortalityRisk))
	}
	if r.MortalityRiskText != "" {
		facts = append(facts, "Mortality band: "+r.MortalityRiskText)
	}
	for _, f := range []struct{ label, value string }{
		{"Risk category", r.RiskCategory},
		{"Severity", r.SeverityCategory},
		{"Sedation", r.SedationLevel},
		{"Delirium type", r.DeliriumType},
		{"Sepsis status", r.SepsisStatus},
		{"Age category", string(r.AgeCategory)},
	} {
		if f.value != "" {
			facts = append(facts, f.label+": "+f.value)
		}
	}
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	if r.ClinicalInterpretation != "" {
		fmt.Fprintf(&b, "\n> %s\n", r.ClinicalInterpretation)
	}
	if len(r.Caveats) > 0 {
		b.WriteString("\n### Caveats\n\n")
		for _, c := range r.Caveats {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Assessment writes a stored assessment as a Markdown document.
func Assessment(w io.Writer, a model.Assessment) error { //nolint:gocritic // hugeParam: Assessment is read only
	header := fmt.Sprintf("# Assessment %s\n\n- Patient: %s\n- Recorded: %s\n",
		a.ID, a.PatientID, a.CreatedAt.UTC().Format(time.RFC3339))
	if a.RequestID != "" {
		header += "- Request: " + a.RequestID + "\n"
	}
	if _, err := io.WriteString(w, header+"\n"); err != nil {
		return err
	}
	return Result(w, a.Result)
}

// HTML converts Markdown into a standalone HTML page.
func HTML(title string, markdown []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>%s</title>
    <style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}</style>
  </head>
  <body>
`, html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("  </body>\n</html>\n")
	return page.Bytes(), nil
}

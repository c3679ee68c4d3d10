// Package report renders a calculation result as Markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/masscalc/internal/chem"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders result. The summary lists the reagents and the mass
// check; detailed adds the parsed formula, molar mass, target moles and the
// solver's explanation.
func Markdown(result chem.CalculationResult, detailed bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escape(result.TargetFormula))

	if detailed {
		fmt.Fprintf(&b, "- Molar mass: %s g/mol\n", num(result.MolarMass))
		fmt.Fprintf(&b, "- Target moles: %s mol\n", num(result.TargetMoles))
		if len(result.ParsedFormula) > 0 {
			parts := make([]string, len(result.ParsedFormula))
			for i, ec := range result.ParsedFormula {
				parts[i] = fmt.Sprintf("%s × %s", escape(ec.Element), num(ec.Coefficient))
			}
			fmt.Fprintf(&b, "- Composition: %s\n", strings.Join(parts, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Reagents\n\n")
	if len(result.Reagents) == 0 {
		b.WriteString("No reagents.\n\n")
	} else {
		b.WriteString("| Reagent | Moles (mol) | Molar mass (g/mol) | Mass (g) |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, r := range result.Reagents {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				escape(r.Reagent), num(r.Moles), num(r.MolarMass), num(r.Mass))
		}
		b.WriteString("\n")
	}

	mc := result.MassCheck
	b.WriteString("## Mass check\n\n")
	fmt.Fprintf(&b, "- Target mass: %s g\n", num(mc.TargetMass))
	fmt.Fprintf(&b, "- Total reagent mass: %s g\n", num(mc.TotalReagentMass))
	fmt.Fprintf(&b, "- Delta: %s g\n", num(mc.Delta))

	if detailed && len(result.Explanation) > 0 {
		b.WriteString("\n## Explanation\n\n")
		for i, line := range result.Explanation {
			fmt.Fprintf(&b, "%d. %s\n", i+1, escape(line))
		}
	}

	return b.String()
}

// HTML converts Markdown produced by this package to HTML.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// num formats a quantity to at most four decimals without trailing zeros.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

// escape keeps formula text from breaking table cells or starting markup.
func escape(s string) string {
	r := strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

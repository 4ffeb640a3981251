// Package report renders evaluation reports as JSON, Markdown, or a
// console table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fyrsmithlabs/dodctl/internal/criteria"
	"github.com/fyrsmithlabs/dodctl/internal/scoring"
)

// Format names an output rendering.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatTable, "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want json, markdown, or table)", s)
	}
}

// Write renders the report in the given format.
func Write(w io.Writer, r *scoring.Report, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatMarkdown:
		return WriteMarkdown(w, r)
	case FormatTable:
		return WriteTable(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteJSON emits the report as indented JSON.
func WriteJSON(w io.Writer, r *scoring.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteMarkdown emits a Markdown document with a summary and a
// per-criterion table.
func WriteMarkdown(w io.Writer, r *scoring.Report) error {
	var b strings.Builder
	b.WriteString("# Definition of Done Report\n\n")
	fmt.Fprintf(&b, "- **Project:** %s\n", r.ProjectPath)
	if r.ProjectRef != "" {
		fmt.Fprintf(&b, "- **Ref:** %s\n", r.ProjectRef)
	}
	fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Weighted score:** %.1f / %.1f required\n", r.WeightedScore, r.PassThreshold)
	fmt.Fprintf(&b, "- **Verdict:** %s\n", verdict(r))
	if r.GatingReason != "" {
		fmt.Fprintf(&b, "- **Reason:** %s\n", r.GatingReason)
	}
	b.WriteString("\n")

	b.WriteString(criteriaTable(r).RenderMarkdown())
	b.WriteString("\n")

	if len(r.Skipped) > 0 {
		b.WriteString("\n## Skipped\n\n")
		for _, c := range r.Skipped {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteTable emits a console table with a one-line verdict footer.
func WriteTable(w io.Writer, r *scoring.Report) error {
	tw := criteriaTable(r)
	tw.SetOutputMirror(w)
	tw.Render()
	_, err := fmt.Fprintf(w, "\nWeighted score %.1f (threshold %.1f): %s\n", r.WeightedScore, r.PassThreshold, verdict(r))
	if err == nil && r.GatingReason != "" {
		_, err = fmt.Fprintf(w, "Reason: %s\n", r.GatingReason)
	}
	return err
}

func criteriaTable(r *scoring.Report) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Criterion", "Tier", "Status", "Score", "Issues"})
	for _, res := range r.Results {
		tw.AppendRow(table.Row{
			string(res.Criterion),
			string(criteria.TierOf(res.Criterion)),
			string(res.Status),
			scoreCell(res),
			issueCell(res),
		})
	}
	return tw
}

func scoreCell(res *criteria.Result) string {
	if score, ok := res.ScoreValue(); ok {
		return fmt.Sprintf("%.1f", score)
	}
	return "-"
}

func issueCell(res *criteria.Result) string {
	if len(res.Issues) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(res.Issues))
	for _, issue := range res.Issues {
		msgs = append(msgs, fmt.Sprintf("[%s] %s", issue.Severity, issue.Message))
	}
	return strings.Join(msgs, "; ")
}

func verdict(r *scoring.Report) string {
	if r.OverallPass {
		return "PASS"
	}
	return "FAIL"
}

// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxRecordsToShow is the default number of trail records to display
	maxRecordsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintItem outputs a human-readable summary of an accepted exercise item.
func (p *Printer) PrintItem(item *types.ScoredCandidate) {
	if item == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Format:      %s\n", item.Format))
	sb.WriteString(fmt.Sprintf("Difficulty:  %.3f\n", item.Score.Value))
	sb.WriteString(fmt.Sprintf("Distance:    %.3f\n", item.DistanceToTarget))
	sb.WriteString(fmt.Sprintf("Similarity:  cos %.2f  jac %.2f\n",
		item.SimilarityToSource, item.JaccardToSource))

	if len(item.Answers) > 0 {
		answers := strings.Join(item.Answers, ", ")
		if len(answers) > 40 {
			answers = answers[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("Answers:     %s\n", answers))
	}
	if len(item.Choices) > 0 {
		sb.WriteString(fmt.Sprintf("Choices:     %d (correct #%d)\n",
			len(item.Choices), item.CorrectIndex+1))
	}

	p.printBox("ACCEPTED ITEM", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTrail outputs the recorded path a request took through the retry
// state machine, including which acceptance tier produced the item.
func (p *Printer) PrintTrail(trail *types.AuditTrail) {
	if trail == nil || len(trail.Records) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:    %s\n", trail.Run.RunID))
	sb.WriteString(fmt.Sprintf("Source: %s\n", trail.Run.SourceID))
	if trail.Tier != "" {
		sb.WriteString(fmt.Sprintf("Tier:   %s\n", trail.Tier))
	}
	sb.WriteString("\n")

	count := min(len(trail.Records), maxRecordsToShow)
	for i := 0; i < count; i++ {
		rec := trail.Records[i]
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec.Stage))
		if rec.Detail != "" {
			detail := rec.Detail
			if len(detail) > 45 {
				detail = detail[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("   %s\n", detail))
		}
	}
	if len(trail.Records) > maxRecordsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more transitions\n", len(trail.Records)-maxRecordsToShow))
	}

	p.printBox("GENERATION TRAIL", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWarning outputs the out-of-band acceptance notice.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWarning(warned bool) {
	if !warned {
		return
	}
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "⚠ ACCEPTED OUTSIDE SIMILARITY BAND")
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

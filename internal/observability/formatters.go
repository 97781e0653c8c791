// Package observability provides formatted terminal output for the interview flow.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-coach/internal/session"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// feedbackPreviewLines caps how much feedback the summary shows per record
	feedbackPreviewLines = 4
)

// Printer handles formatted output for the interview terminal UI
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
		// Truncate long lines on a rune boundary
		if runes := []rune(line); len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQuestion outputs the current question as a card with progress.
func (p *Printer) PrintQuestion(current, total int, question string) {
	title := fmt.Sprintf("Question %d of %d", current, total)
	p.printBox(title, wrap(question, boxWidth-4))
}

// PrintSummary outputs every answer record after the last question.
func (p *Printer) PrintSummary(records []session.AnswerRecord) {
	for i, rec := range records {
		var sb strings.Builder
		sb.WriteString(wrap(rec.Question, boxWidth-4))
		sb.WriteString("\n\nYour answer:\n")
		sb.WriteString(wrap(rec.Answer, boxWidth-4))
		sb.WriteString("\n\nFeedback:\n")
		sb.WriteString(previewLines(rec.Feedback, feedbackPreviewLines))
		p.printBox(fmt.Sprintf("Question %d", i+1), sb.String())
	}
}

// PrintReport outputs the final performance report.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintReport(report string) {
	border := strings.Repeat("═", boxWidth)
	fmt.Fprintf(p.out, "%s\n", border)
	fmt.Fprintln(p.out, "📈 Overall Performance Report")
	fmt.Fprintf(p.out, "%s\n\n", border)
	fmt.Fprintln(p.out, report)
}

// previewLines keeps the first n lines of text, marking any truncation.
func previewLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return wrap(text, boxWidth-4)
	}
	kept := strings.Join(lines[:n], "\n")
	return wrap(kept, boxWidth-4) + fmt.Sprintf("\n... and %d more lines", len(lines)-n)
}

// wrap breaks text into lines no wider than width, preserving existing
// line breaks.
func wrap(text string, width int) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}

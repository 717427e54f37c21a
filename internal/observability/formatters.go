// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/daniel/webtoon-agent/internal/script"
	"github.com/daniel/webtoon-agent/internal/story"
	"github.com/daniel/webtoon-agent/internal/workflow"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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

// PrintRunSummary outputs the terminal state of a workflow run.
func (p *Printer) PrintRunSummary(snap workflow.Snapshot) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:      %s\n", snap.RunID))
	sb.WriteString(fmt.Sprintf("Kind:     %s\n", snap.Kind))
	sb.WriteString(fmt.Sprintf("Phase:    %s\n", snap.Phase))
	sb.WriteString(fmt.Sprintf("Rewrites: %d", snap.Attempts))

	if snap.Score != nil {
		sb.WriteString(fmt.Sprintf("\nScore:    %.2f", *snap.Score))
	}
	if snap.Error != nil {
		msg := snap.Error.Message
		if len(msg) > 45 {
			msg = msg[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("\n\n⚠ %s\n  %s", snap.Error.Category, msg))
	} else if snap.Feedback != "" {
		feedback := strings.Split(snap.Feedback, "\n")
		count := min(len(feedback), 3)
		sb.WriteString("\n\nFeedback:\n")
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  %s\n", feedback[i]))
		}
		if len(feedback) > count {
			sb.WriteString(fmt.Sprintf("  ... and %d more lines\n", len(feedback)-count))
		}
	}

	p.printBox("WORKFLOW RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStory outputs a summary of a generated story draft.
func (p *Printer) PrintStory(draft *story.Draft) {
	if draft == nil {
		return
	}

	var sb strings.Builder

	if draft.Post != nil {
		sb.WriteString(fmt.Sprintf("Seed:     %s\n", draft.Post.Title))
	}
	sb.WriteString(fmt.Sprintf("Mood:     %s\n", draft.Mood))
	sb.WriteString(fmt.Sprintf("Length:   %d chars\n", len(draft.Story)))

	lines := strings.Split(draft.Story, "\n")
	count := min(len(lines), 3)
	if count > 0 {
		sb.WriteString("\n")
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("%s\n", lines[i]))
		}
		if len(lines) > count {
			sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-count))
		}
	}

	p.printBox("GENERATED STORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScript outputs a summary of a generated script: its cast and the
// panel shot distribution.
func (p *Printer) PrintScript(sc *script.Script) {
	if sc == nil {
		return
	}

	var sb strings.Builder

	if len(sc.Characters) > 0 {
		sb.WriteString("Characters:\n")
		count := min(len(sc.Characters), maxItemsToShow)
		for i := 0; i < count; i++ {
			ch := sc.Characters[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s)\n", ch.Name, ch.Gender))
		}
		if len(sc.Characters) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sc.Characters)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	withDialogue := 0
	shotCounts := map[string]int{}
	for _, panel := range sc.Panels {
		shotCounts[panel.ShotType]++
		if len(panel.Dialogue) > 0 {
			withDialogue++
		}
	}

	sb.WriteString(fmt.Sprintf("Panels:   %d (%d with dialogue)\n", len(sc.Panels), withDialogue))

	shots := make([]string, 0, len(shotCounts))
	for shot := range shotCounts {
		shots = append(shots, shot)
	}
	sort.Strings(shots)
	for _, shot := range shots {
		sb.WriteString(fmt.Sprintf("  %dx %s\n", shotCounts[shot], shot))
	}

	p.printBox("WEBTOON SCRIPT", strings.TrimSuffix(sb.String(), "\n"))
}

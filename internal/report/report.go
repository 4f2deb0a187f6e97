package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)
	styleClean  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green
	styleDirty  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
)

const rule = "============================================================"

// Options control report-time presentation only; detection counts are
// independent of them.
type Options struct {
	// ExpectedPerWorker is the fixed workload size the harness gives each
	// worker task.
	ExpectedPerWorker int
	// TruncateWidth is the display width for offending lines.
	TruncateWidth int
	// MaxExamples is how many offending lines to show per finding kind.
	MaxExamples int
}

// DefaultOptions matches the harness defaults: 50 messages per worker,
// 80-column examples, 3 examples per kind.
func DefaultOptions() Options {
	return Options{ExpectedPerWorker: 50, TruncateWidth: 80, MaxExamples: 3}
}

// Generator renders an analyzer snapshot as deterministic text. It performs
// no detection of its own — it is a pure fold over accumulated state.
type Generator struct {
	w    io.Writer
	opts Options
	err  error
}

// NewGenerator returns a Generator writing to w.
func NewGenerator(w io.Writer, opts Options) *Generator {
	return &Generator{w: w, opts: opts}
}

func (g *Generator) printf(format string, args ...interface{}) {
	if g.err != nil {
		return
	}
	_, g.err = fmt.Fprintf(g.w, format, args...)
}

// Render writes the full analysis report: one block per backend in
// first-seen order, then a global summary.
func (g *Generator) Render(snap analyzer.Snapshot) error {
	g.printf("\n%s\n", rule)
	g.printf("%s\n", styleHeader.Render("THREAD SAFETY TEST ANALYSIS REPORT"))
	g.printf("%s\n", rule)

	for _, sec := range snap.Sections {
		g.renderBackend(snap, sec)
	}

	g.printf("\n%s\n", rule)
	g.printf("%s\n", styleHeader.Render("SUMMARY"))
	g.printf("%s\n", rule)

	g.printf("Total corruption patterns found: %d\n", len(snap.Findings))

	g.printf("\nBackend Comparison:\n")
	for _, sec := range snap.Sections {
		n := snap.BackendFindings(sec.Name)
		status := styleClean.Render("✅ CLEAN")
		if n > 0 {
			status = styleDirty.Render(fmt.Sprintf("❌ %d issues", n))
		}
		g.printf("  %-30s %s\n", sec.Name, status)
	}

	g.printf("\n%s\n", rule)
	return g.err
}

func (g *Generator) renderBackend(snap analyzer.Snapshot, sec *model.BackendSection) {
	g.printf("\n### %s\n", sec.Name)
	g.printf("Total lines: %d\n", len(sec.Lines))
	g.printf("Message count: %d\n", sec.MessageCount)

	corruptions := 0
	for _, kind := range model.Kinds {
		found := snap.FindingsFor(sec.Name, kind)
		if len(found) == 0 {
			continue
		}
		corruptions += len(found)

		g.printf("\n%s: %d\n", kind, len(found))
		if kind == model.OutOfSequence {
			for _, f := range found[:min(len(found), g.opts.MaxExamples)] {
				g.printf("  %s: expected %d, got %d\n", f.Worker, f.Expected, f.Got)
			}
			continue
		}
		for i, f := range found[:min(len(found), g.opts.MaxExamples)] {
			g.printf("  Example %d: %s\n", i+1, truncate(f.Line, g.opts.TruncateWidth))
		}
		if len(found) > g.opts.MaxExamples {
			g.printf("  ... and %d more\n", len(found)-g.opts.MaxExamples)
		}
	}

	if corruptions == 0 {
		g.printf("\n%s\n", styleClean.Render("✅ RESULT: No corruption detected"))
	} else {
		g.printf("\n%s\n", styleDirty.Render(fmt.Sprintf("❌ RESULT: %d corruption patterns detected", corruptions)))
	}

	g.printf("\nWorker message sequences:\n")
	for _, worker := range sortedWorkers(sec) {
		seq := sec.Sequences[worker]
		if len(seq) == 0 {
			continue
		}
		g.printf("  %s: %d messages (first:%d, last:%d)\n", worker, len(seq), seq[0], seq[len(seq)-1])
		if len(seq) != g.opts.ExpectedPerWorker {
			warn := fmt.Sprintf("    WARNING: Expected %d messages, got %d", g.opts.ExpectedPerWorker, len(seq))
			g.printf("%s\n", styleWarn.Render(warn))
		}
	}
}

// sortedWorkers returns the section's worker tags in lexicographic order.
func sortedWorkers(sec *model.BackendSection) []string {
	workers := make([]string, 0, len(sec.Sequences))
	for w := range sec.Sequences {
		workers = append(workers, w)
	}
	sort.Strings(workers)
	return workers
}

// truncate clips a line for display and marks the cut with an ellipsis.
func truncate(s string, width int) string {
	// Cut on runes so a multibyte character is never split.
	if r := []rune(s); len(r) > width {
		s = string(r[:width])
	}
	return s + "..."
}

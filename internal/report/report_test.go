package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
)

func analyzed(lines ...string) analyzer.Snapshot {
	a := analyzer.New()
	for _, l := range lines {
		a.AnalyzeLine(l)
	}
	return a.Snapshot()
}

func render(t *testing.T, snap analyzer.Snapshot, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewGenerator(&buf, opts).Render(snap); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestRenderDeterministic(t *testing.T) {
	snap := analyzed(
		"Testing ConsoleBackend",
		"[1][Worker1][I] Worker1: MSG_4_START_foo_END_MSG_4",
		"[2][Worker1][I] Worker1: MSG_6_START_foo_END_MSG_6",
		"[100][T][I] A: x[200][T][I] B: y",
		"[abc][T][I] tag: msg",
		"Testing SynchronizedConsoleBackend",
		"[3][Worker1][I] Worker1: MSG_0_START_foo_END_MSG_0",
	)

	first := render(t, snap, DefaultOptions())
	second := render(t, snap, DefaultOptions())
	if first != second {
		t.Error("rendering the same snapshot twice must be byte-identical")
	}
}

func TestRenderBackendBlock(t *testing.T) {
	snap := analyzed(
		"Testing ConsoleBackend",
		"[1][Worker1][I] Worker1: MSG_0_START_foo_END_MSG_0",
		"[2][Worker2][I] Worker2: MSG_0_START_foo_END_MSG_0",
	)

	out := render(t, snap, DefaultOptions())
	for _, want := range []string{
		"### ConsoleBackend",
		"Total lines: 2",
		"Message count: 2",
		"RESULT: No corruption detected",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestRenderOutOfSequence(t *testing.T) {
	snap := analyzed(
		"Testing ConsoleBackend",
		"[122][Worker1][I] Worker1: MSG_4_START_foo_END_MSG_4",
		"[123][Worker1][I] Worker1: MSG_6_START_foo_END_MSG_6",
	)

	out := render(t, snap, DefaultOptions())
	if !strings.Contains(out, "Out of sequence messages: 1") {
		t.Errorf("missing out-of-sequence count\n%s", out)
	}
	if !strings.Contains(out, "Worker1: expected 5, got 6") {
		t.Errorf("missing worker/expected/got line\n%s", out)
	}
}

func TestRenderExamplesCapped(t *testing.T) {
	lines := []string{"Testing ConsoleBackend"}
	for i := 0; i < 5; i++ {
		lines = append(lines, fmt.Sprintf("[%d][T][I] A: x[%d][T][I] B: y", i, i+100))
	}
	snap := analyzed(lines...)

	out := render(t, snap, DefaultOptions())
	if !strings.Contains(out, "Interleaved messages: 5") {
		t.Errorf("missing interleaved count\n%s", out)
	}
	if !strings.Contains(out, "Example 3:") {
		t.Errorf("expected three examples\n%s", out)
	}
	if strings.Contains(out, "Example 4:") {
		t.Errorf("examples must be capped at 3\n%s", out)
	}
	if !strings.Contains(out, "... and 2 more") {
		t.Errorf("missing overflow tail\n%s", out)
	}
}

func TestRenderTruncatesExamples(t *testing.T) {
	long := "[1][T][I] A: " + strings.Repeat("x", 200) + "[2][T][I] B: y"
	snap := analyzed("Testing ConsoleBackend", long)

	opts := DefaultOptions()
	out := render(t, snap, opts)

	want := "Example 1: " + long[:opts.TruncateWidth] + "..."
	if !strings.Contains(out, want) {
		t.Errorf("example not truncated to %d chars\n%s", opts.TruncateWidth, out)
	}
}

func TestRenderTruncatesOnRunes(t *testing.T) {
	long := "[1][T][I] A: " + strings.Repeat("é", 200) + "[2][T][I] B: y"
	snap := analyzed("Testing ConsoleBackend", long)

	opts := DefaultOptions()
	out := render(t, snap, opts)

	want := "Example 1: " + string([]rune(long)[:opts.TruncateWidth]) + "..."
	if !strings.Contains(out, want) {
		t.Errorf("example not truncated to %d runes\n%s", opts.TruncateWidth, out)
	}
	if !utf8.ValidString(out) {
		t.Error("truncated example is not valid UTF-8")
	}
}

func TestRenderWorkerWarning(t *testing.T) {
	lines := []string{"Testing ConsoleBackend"}
	for i := 0; i < 47; i++ {
		lines = append(lines, fmt.Sprintf("[%d][Worker1][I] Worker1: MSG_%d_START_foo_END_MSG_%d", i, i, i))
	}
	snap := analyzed(lines...)

	out := render(t, snap, DefaultOptions())
	if !strings.Contains(out, "Worker1: 47 messages (first:0, last:46)") {
		t.Errorf("missing worker sequence line\n%s", out)
	}
	if !strings.Contains(out, "WARNING: Expected 50 messages, got 47") {
		t.Errorf("missing short-workload warning\n%s", out)
	}
}

func TestRenderWorkerWarningSuppressedAtExpectedCount(t *testing.T) {
	lines := []string{"Testing ConsoleBackend"}
	for i := 0; i < 50; i++ {
		lines = append(lines, fmt.Sprintf("[%d][Worker1][I] Worker1: MSG_%d_START_foo_END_MSG_%d", i, i, i))
	}
	snap := analyzed(lines...)

	out := render(t, snap, DefaultOptions())
	if strings.Contains(out, "WARNING: Expected") {
		t.Errorf("exactly 50 messages must not warn\n%s", out)
	}
	if !strings.Contains(out, "Worker1: 50 messages (first:0, last:49)") {
		t.Errorf("missing worker sequence line\n%s", out)
	}
}

func TestRenderSummaryComparison(t *testing.T) {
	// The torn-timestamp line trips two independent detectors: broken
	// timestamp and malformed line (it contains "[").
	snap := analyzed(
		"Testing ConsoleBackend",
		"[abc][T][I] tag: msg",
		"Testing NonBlockingConsoleBackend",
		"[1][Worker1][I] Worker1: MSG_0_START_foo_END_MSG_0",
	)

	out := render(t, snap, DefaultOptions())
	if !strings.Contains(out, "Total corruption patterns found: 2") {
		t.Errorf("missing global total\n%s", out)
	}
	if !strings.Contains(out, "2 issues") {
		t.Errorf("missing per-backend issue count\n%s", out)
	}
	if !strings.Contains(out, "CLEAN") {
		t.Errorf("missing clean status\n%s", out)
	}

	// Backend order in the comparison follows first-seen order.
	dirty := strings.Index(out, "ConsoleBackend ")
	clean := strings.Index(out, "NonBlockingConsoleBackend")
	if dirty == -1 || clean == -1 {
		t.Fatalf("comparison lines missing\n%s", out)
	}
}

func TestRenderWorkersSorted(t *testing.T) {
	snap := analyzed(
		"Testing ConsoleBackend",
		"[1][Worker2][I] Worker2: MSG_0_START_foo_END_MSG_0",
		"[2][Worker1][I] Worker1: MSG_0_START_foo_END_MSG_0",
	)

	out := render(t, snap, Options{ExpectedPerWorker: 1, TruncateWidth: 80, MaxExamples: 3})
	w1 := strings.Index(out, "Worker1: 1 messages")
	w2 := strings.Index(out, "Worker2: 1 messages")
	if w1 == -1 || w2 == -1 {
		t.Fatalf("worker lines missing\n%s", out)
	}
	if w1 > w2 {
		t.Error("workers must be listed in lexicographic order")
	}
}

func TestSummarize(t *testing.T) {
	snap := analyzed(
		"Testing ConsoleBackend",
		"[1][Worker1][I] Worker1: MSG_4_START_foo_END_MSG_4",
		"[2][Worker1][I] Worker1: MSG_6_START_foo_END_MSG_6",
		"[abc][T][I] tag: msg",
	)

	sum := Summarize(snap, DefaultOptions())
	if sum.TotalFindings != 3 {
		t.Errorf("expected 3 findings, got %d", sum.TotalFindings)
	}
	if len(sum.Backends) != 1 {
		t.Fatalf("expected 1 backend, got %d", len(sum.Backends))
	}

	b := sum.Backends[0]
	if b.Name != "ConsoleBackend" || b.Clean {
		t.Errorf("unexpected backend summary %+v", b)
	}
	if b.Findings["Out of sequence messages"] != 1 {
		t.Errorf("expected 1 out-of-sequence, got %+v", b.Findings)
	}
	if b.Findings["Broken timestamps"] != 1 {
		t.Errorf("expected 1 broken timestamp, got %+v", b.Findings)
	}
	if b.Findings["Malformed lines"] != 1 {
		t.Errorf("expected 1 malformed line, got %+v", b.Findings)
	}
	if len(b.Workers) != 1 || b.Workers[0].Count != 2 || !b.Workers[0].Short {
		t.Errorf("unexpected worker summary %+v", b.Workers)
	}
}

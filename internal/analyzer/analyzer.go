package analyzer

import (
	"bufio"
	"io"
	"strings"
	"sync"

	"github.com/packerlschupfer/ESP32-Logger/internal/detector"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
	"github.com/packerlschupfer/ESP32-Logger/internal/parser"
)

// maxLineSize bounds a single scanned line; flood-phase corruption can glue
// many messages onto one physical line.
const maxLineSize = 1024 * 1024

// Analyzer tracks the current backend section and accumulates findings.
// Analysis is a strict single-pass fold over the input lines; the mutex
// only exists so live consumers (dashboard, websocket) can snapshot state
// while a tailer goroutine is still feeding lines.
type Analyzer struct {
	mu       sync.RWMutex
	parser   *parser.Parser
	sections map[string]*model.BackendSection
	order    []string
	current  *model.BackendSection
	findings []model.Finding
	total    int64
}

// New returns an empty Analyzer.
func New() *Analyzer {
	return &Analyzer{
		parser:   parser.New(),
		sections: make(map[string]*model.BackendSection),
	}
}

// AnalyzeLine consumes one raw line and returns the findings it produced
// (also retained internally). Lines seen before the first backend marker
// are dropped; a marker line switches the current section and is not
// otherwise processed.
func (a *Analyzer) AnalyzeLine(raw string) []model.Finding {
	a.mu.Lock()
	defer a.mu.Unlock()

	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}

	// Backend switch: a fresh section replaces any prior state for the
	// same name. Earlier findings for that name are append-only and stay.
	if name, ok := parser.BackendMarker(line); ok {
		sec := model.NewBackendSection(name)
		if _, seen := a.sections[name]; !seen {
			a.order = append(a.order, name)
		}
		a.sections[name] = sec
		a.current = sec
		return nil
	}

	if a.current == nil {
		return nil
	}
	sec := a.current
	sec.Lines = append(sec.Lines, line)
	a.total++

	var found []model.Finding

	parsed, ok := a.parser.Parse(line)
	if ok {
		if detector.IsMessage(parsed.Message) {
			sec.MessageCount++
		}
		if n, has, f := detector.Sequence(parsed, sec); has {
			if f != nil {
				found = append(found, *f)
			}
			// Out-of-order numbers are recorded, not discarded.
			sec.AppendSeq(parsed.Tag, n)
		}
		if f := detector.Partial(parsed, sec.Name); f != nil {
			found = append(found, *f)
		}
	} else {
		if f := detector.Malformed(line, sec.Name); f != nil {
			found = append(found, *f)
		}
	}

	if f := detector.Interleaved(line, sec.Name); f != nil {
		found = append(found, *f)
	}
	if f := detector.BrokenTimestamp(line, sec.Name); f != nil {
		found = append(found, *f)
	}

	a.findings = append(a.findings, found...)
	return found
}

// AnalyzeReader feeds every line of r through AnalyzeLine.
func (a *Analyzer) AnalyzeReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		a.AnalyzeLine(scanner.Text())
	}
	return scanner.Err()
}

// CurrentBackend returns the name of the active section, or "" before the
// first marker.
func (a *Analyzer) CurrentBackend() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return ""
	}
	return a.current.Name
}

// Snapshot returns a point-in-time deep copy of the accumulated state,
// safe to read while analysis continues.
func (a *Analyzer) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := Snapshot{
		Sections:   make([]*model.BackendSection, 0, len(a.order)),
		Findings:   make([]model.Finding, len(a.findings)),
		TotalLines: a.total,
	}
	copy(snap.Findings, a.findings)

	for _, name := range a.order {
		src := a.sections[name]
		dst := model.NewBackendSection(name)
		dst.Lines = append(dst.Lines, src.Lines...)
		dst.SeqOrder = append(dst.SeqOrder, src.SeqOrder...)
		dst.MessageCount = src.MessageCount
		for worker, seq := range src.Sequences {
			dst.Sequences[worker] = append([]int(nil), seq...)
		}
		snap.Sections = append(snap.Sections, dst)
	}
	return snap
}

// Snapshot is a frozen copy of analyzer state for reporting.
type Snapshot struct {
	Sections   []*model.BackendSection // first-seen order
	Findings   []model.Finding
	TotalLines int64
}

// FindingsFor returns the findings of one kind attributed to a backend,
// in insertion order.
func (s Snapshot) FindingsFor(backend string, kind model.FindingKind) []model.Finding {
	var out []model.Finding
	for _, f := range s.Findings {
		if f.Backend == backend && f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// BackendFindings returns the total finding count for a backend across all
// kinds.
func (s Snapshot) BackendFindings(backend string) int {
	n := 0
	for _, f := range s.Findings {
		if f.Backend == backend {
			n++
		}
	}
	return n
}

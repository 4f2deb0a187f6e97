package report

import (
	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

// Summary is the structured form of the report, served by the dashboard
// API. The stdout report stays text-only; this type never feeds back into
// detection.
type Summary struct {
	TotalLines    int64            `json:"total_lines"`
	TotalFindings int              `json:"total_findings"`
	Backends      []BackendSummary `json:"backends"`
}

// BackendSummary mirrors one per-backend report block.
type BackendSummary struct {
	Name         string          `json:"name"`
	Lines        int             `json:"lines"`
	MessageCount int             `json:"message_count"`
	Findings     map[string]int  `json:"findings"`
	Corruptions  int             `json:"corruptions"`
	Clean        bool            `json:"clean"`
	Workers      []WorkerSummary `json:"workers"`
}

// WorkerSummary describes one worker's observed message sequence.
type WorkerSummary struct {
	Worker   string `json:"worker"`
	Count    int    `json:"count"`
	First    int    `json:"first"`
	Last     int    `json:"last"`
	Expected int    `json:"expected"`
	Short    bool   `json:"short"` // count differs from the expected workload
}

// Summarize folds an analyzer snapshot into its structured summary.
func Summarize(snap analyzer.Snapshot, opts Options) Summary {
	sum := Summary{
		TotalLines:    snap.TotalLines,
		TotalFindings: len(snap.Findings),
	}

	for _, sec := range snap.Sections {
		bs := BackendSummary{
			Name:         sec.Name,
			Lines:        len(sec.Lines),
			MessageCount: sec.MessageCount,
			Findings:     make(map[string]int),
		}
		for _, kind := range model.Kinds {
			if found := snap.FindingsFor(sec.Name, kind); len(found) > 0 {
				bs.Findings[kind.String()] = len(found)
				bs.Corruptions += len(found)
			}
		}
		bs.Clean = bs.Corruptions == 0

		for _, worker := range sortedWorkers(sec) {
			seq := sec.Sequences[worker]
			if len(seq) == 0 {
				continue
			}
			bs.Workers = append(bs.Workers, WorkerSummary{
				Worker:   worker,
				Count:    len(seq),
				First:    seq[0],
				Last:     seq[len(seq)-1],
				Expected: opts.ExpectedPerWorker,
				Short:    len(seq) != opts.ExpectedPerWorker,
			})
		}
		sum.Backends = append(sum.Backends, bs)
	}
	return sum
}

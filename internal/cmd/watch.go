package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
	"github.com/packerlschupfer/ESP32-Logger/internal/hub"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
	"github.com/packerlschupfer/ESP32-Logger/internal/report"
	"github.com/packerlschupfer/ESP32-Logger/internal/tailer"
	"github.com/packerlschupfer/ESP32-Logger/internal/watcher"
	"github.com/spf13/cobra"
)

var kindFilter string

var watchCmd = &cobra.Command{
	Use:   "watch <log-file-or-glob>",
	Short: "Follow a test log while the harness is still writing it",
	Long: `Watch tails the harness output log, analyzes each line as it lands, and
streams findings to the terminal. The file is always replayed from the
beginning so backend attribution stays correct. On Ctrl-C the full report
is printed.

Examples:
  logcheck watch output.log
  logcheck watch "logs/**/*.log" --kinds interleaved,out-of-sequence`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&kindFilter, "kinds", "", "finding kinds to stream (comma-separated: interleaved,broken-timestamp,partial,malformed,out-of-sequence)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nlogcheck: stopping, rendering final report...")
		cancel()
	}()

	a, h, err := startPipeline(ctx, args)
	if err != nil {
		return err
	}

	kinds, err := parseKindFilter(kindFilter)
	if err != nil {
		return err
	}

	// Subscribe before the hub runs so shutdown always closes the channel.
	events := h.Subscribe()
	go h.Start(ctx)

	// Stream findings to the terminal until shutdown.
	for ev := range events {
		for _, f := range ev.Findings {
			if kinds != nil && !kinds[f.Kind] {
				continue
			}
			fmt.Println(report.FormatFinding(f))
		}
	}

	gen := report.NewGenerator(os.Stdout, reportOptions())
	return gen.Render(a.Snapshot())
}

// startPipeline wires watcher -> tailer -> hub -> analyzer and starts the
// watcher and tailer goroutines. The hub is returned unstarted so callers
// can register subscribers first. Used by both watch and serve.
func startPipeline(ctx context.Context, patterns []string) (*analyzer.Analyzer, *hub.Hub, error) {
	w, err := watcher.New(patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	paths := w.Paths()
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no files matched the given patterns: %v", patterns)
	}

	fmt.Fprintf(os.Stderr, "logcheck following %d file(s):\n", len(paths))
	for _, p := range paths {
		fmt.Fprintf(os.Stderr, "  • %s\n", p)
	}
	fmt.Fprintln(os.Stderr)

	t := tailer.New(w)
	a := analyzer.New()
	h := hub.New(t.Lines(), a)

	go w.Start(ctx)
	go t.Start(ctx)

	return a, h, nil
}

// parseKindFilter builds a kind set from the --kinds flag; nil means all.
func parseKindFilter(s string) (map[model.FindingKind]bool, error) {
	if s == "" {
		return nil, nil
	}
	names := map[string]model.FindingKind{
		"interleaved":      model.Interleaved,
		"broken-timestamp": model.BrokenTimestamp,
		"partial":          model.PartialMessage,
		"malformed":        model.MalformedLine,
		"out-of-sequence":  model.OutOfSequence,
	}
	set := make(map[model.FindingKind]bool)
	for _, name := range strings.Split(s, ",") {
		kind, ok := names[strings.TrimSpace(strings.ToLower(name))]
		if !ok {
			return nil, fmt.Errorf("unknown finding kind %q", name)
		}
		set[kind] = true
	}
	return set, nil
}

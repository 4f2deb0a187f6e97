package hub

import (
	"context"
	"fmt"
	"testing"

	"github.com/packerlschupfer/ESP32-Logger/internal/analyzer"
	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

// BenchmarkHubBroadcast measures the cost of analyzing and broadcasting to
// N subscribers.
func BenchmarkHubBroadcast1(b *testing.B)  { benchHubBroadcast(b, 1) }
func BenchmarkHubBroadcast5(b *testing.B)  { benchHubBroadcast(b, 5) }
func BenchmarkHubBroadcast10(b *testing.B) { benchHubBroadcast(b, 10) }

func benchHubBroadcast(b *testing.B, numSubs int) {
	input := make(chan model.RawLine, b.N+1)
	a := analyzer.New()
	a.AnalyzeLine("Testing ConsoleBackend")
	h := New(input, a)

	// Create subscribers and drain them.
	for i := 0; i < numSubs; i++ {
		ch := h.Subscribe()
		go func() {
			for range ch {
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Start(ctx)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		input <- model.RawLine{
			Text:   fmt.Sprintf("[%d][Worker1][I] Worker1: MSG_%03d_START_bench_END_MSG_%03d", i, i%50, i%50),
			Source: "bench.log",
		}
	}

	cancel()
}

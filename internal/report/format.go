package report

import (
	"fmt"

	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

// FormatFinding renders one finding as a single terminal line, used by the
// live follow mode. Lines are clipped at the default display width.
func FormatFinding(f model.Finding) string {
	kind := styleDirty.Render(f.Kind.String())
	switch f.Kind {
	case model.OutOfSequence:
		return fmt.Sprintf("[%s] %s: %s: expected %d, got %d", f.Backend, kind, f.Worker, f.Expected, f.Got)
	case model.Interleaved:
		return fmt.Sprintf("[%s] %s (%d timestamps): %s", f.Backend, kind, f.Timestamps, truncate(f.Line, 80))
	default:
		return fmt.Sprintf("[%s] %s: %s", f.Backend, kind, truncate(f.Line, 80))
	}
}

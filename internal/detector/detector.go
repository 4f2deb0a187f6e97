package detector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

// The detectors are pure functions of (line, section state). They never
// mutate section state themselves; the analyzer persists sequence appends
// and accumulates the returned findings. A single line can trigger several
// detectors at once — the checks are independent, not mutually exclusive.

var (
	seqRe      = regexp.MustCompile(`MSG_(\d+)_START`)
	msgIDRe    = regexp.MustCompile(`MSG_(\d+)`)
	tsRe       = regexp.MustCompile(`\[\d+\]`)
	tsPrefixRe = regexp.MustCompile(`^\[\d+\]`)
)

// markers are substrings that make an unparseable line look like logging
// output rather than a banner.
var markers = []string{"[", "MSG_", "FLOOD_", "Task", "Worker"}

// IsMessage reports whether a parsed message carries a message-id marker
// and should count toward the section's message total.
func IsMessage(msg string) bool {
	return strings.Contains(msg, "MSG_") || strings.Contains(msg, "FLOOD_")
}

// Sequence checks a worker's message order. It returns the message number
// extracted from the line (ok=false when the line carries none) and an
// OutOfSequence finding when the number does not follow the worker's
// previous one. The caller appends the number to the worker's sequence
// whether or not it was in order.
func Sequence(line model.LogLine, sec *model.BackendSection) (n int, ok bool, f *model.Finding) {
	if !strings.Contains(line.Tag, "Worker") {
		return 0, false, nil
	}

	m := seqRe.FindStringSubmatch(line.Message)
	if m == nil {
		return 0, false, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, nil
	}

	seq := sec.Sequence(line.Tag)
	if len(seq) > 0 && n != seq[len(seq)-1]+1 {
		f = &model.Finding{
			Kind:     model.OutOfSequence,
			Backend:  sec.Name,
			Worker:   line.Tag,
			Expected: seq[len(seq)-1] + 1,
			Got:      n,
		}
	}
	return n, true, f
}

// Partial flags a message that carries a MSG_ id but does not terminate
// with that id's digits. A well-formed harness message repeats its own id
// at the end (MSG_007_START_..._END_MSG_007), so a missing tail means the
// write was cut short. The digit string is compared verbatim, leading
// zeros included.
func Partial(line model.LogLine, backend string) *model.Finding {
	if !strings.Contains(line.Message, "MSG_") {
		return nil
	}
	m := msgIDRe.FindStringSubmatch(line.Message)
	if m == nil {
		// "MSG_" with no digits after it; nothing to compare against.
		return nil
	}
	if strings.HasSuffix(line.Message, m[1]) {
		return nil
	}
	return &model.Finding{
		Kind:    model.PartialMessage,
		Backend: backend,
		Line:    line.Raw,
	}
}

// Malformed flags an unparseable line that still looks like logging output
// (bracket, message-id, or task/worker marker present). Unparseable lines
// without any marker are banners and are ignored.
func Malformed(raw, backend string) *model.Finding {
	for _, m := range markers {
		if strings.Contains(raw, m) {
			return &model.Finding{
				Kind:    model.MalformedLine,
				Backend: backend,
				Line:    raw,
			}
		}
	}
	return nil
}

// Interleaved flags a line carrying more than one bracketed timestamp —
// two writers' output landed on the same physical line.
func Interleaved(raw, backend string) *model.Finding {
	count := len(tsRe.FindAllString(raw, -1))
	if count <= 1 {
		return nil
	}
	return &model.Finding{
		Kind:       model.Interleaved,
		Backend:    backend,
		Line:       raw,
		Timestamps: count,
	}
}

// BrokenTimestamp flags a line that opens a timestamp bracket but does not
// complete it with digits — evidence of a torn timestamp field.
func BrokenTimestamp(raw, backend string) *model.Finding {
	if !strings.HasPrefix(raw, "[") || tsPrefixRe.MatchString(raw) {
		return nil
	}
	return &model.Finding{
		Kind:    model.BrokenTimestamp,
		Backend: backend,
		Line:    raw,
	}
}

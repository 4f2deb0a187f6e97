package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/packerlschupfer/ESP32-Logger/internal/model"
)

// Parser matches the fixed harness log grammar:
// [timestamp][task][level] tag: message
//
// The grammar is not configurable; the harness emits exactly this shape.
type Parser struct {
	re *regexp.Regexp
}

// New returns a Parser for the harness line format.
func New() *Parser {
	return &Parser{
		re: regexp.MustCompile(`^\[(\d+)\]\[([^\]]+)\]\[([A-Z])\]\s*([^:]+):\s*(.*)$`),
	}
}

// Parse attempts to match one raw line (already stripped of trailing
// newline). The second return value reports whether the line matched;
// a non-matching line is data, not an error — callers route it to the
// malformed/broken-timestamp checks instead.
func (p *Parser) Parse(raw string) (model.LogLine, bool) {
	matches := p.re.FindStringSubmatch(raw)
	if matches == nil {
		return model.LogLine{}, false
	}

	ts, err := strconv.ParseUint(matches[1], 10, 64)
	if err != nil {
		// Digit run too long to be a real timestamp.
		return model.LogLine{}, false
	}

	return model.LogLine{
		Timestamp: ts,
		Task:      matches[2],
		Level:     matches[3],
		// The tag group runs up to the first colon, so it can carry
		// trailing spaces; strip them.
		Tag:     strings.TrimSpace(matches[4]),
		Message: matches[5],
		Raw:     raw,
	}, true
}

// ---------------------------------------------------------------------------
// Backend markers
// ---------------------------------------------------------------------------

var markerRe = regexp.MustCompile(`Testing (\w+Backend)`)

// BackendMarker extracts the backend name from a section marker line like
// "========== Testing ConsoleBackend ==========". A line that mentions
// "Testing" and "Backend" without the exact marker shape is not a marker
// and falls through to normal processing.
func BackendMarker(raw string) (string, bool) {
	if !strings.Contains(raw, "Testing") || !strings.Contains(raw, "Backend") {
		return "", false
	}
	m := markerRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

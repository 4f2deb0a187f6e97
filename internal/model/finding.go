package model

// FindingKind identifies one of the fixed corruption patterns.
type FindingKind int

const (
	Interleaved FindingKind = iota
	BrokenTimestamp
	PartialMessage
	MalformedLine
	OutOfSequence
)

// Kinds lists all finding kinds in report order.
var Kinds = []FindingKind{
	Interleaved,
	BrokenTimestamp,
	PartialMessage,
	MalformedLine,
	OutOfSequence,
}

// String returns the human-readable name used in reports.
func (k FindingKind) String() string {
	switch k {
	case Interleaved:
		return "Interleaved messages"
	case BrokenTimestamp:
		return "Broken timestamps"
	case PartialMessage:
		return "Partial messages"
	case MalformedLine:
		return "Malformed lines"
	case OutOfSequence:
		return "Out of sequence messages"
	default:
		return "Unknown"
	}
}

// Finding is a single detected corruption instance, attributed to a backend.
// Findings are append-only: once recorded they are never mutated or removed.
type Finding struct {
	Kind    FindingKind `json:"kind"`
	Backend string      `json:"backend"`
	Line    string      `json:"line,omitempty"` // offending raw line (unset for OutOfSequence)

	// Interleaved only: number of bracketed timestamps seen on the line.
	Timestamps int `json:"timestamps,omitempty"`

	// OutOfSequence only; zero is a legitimate message number, so the
	// counters are never omitted.
	Worker   string `json:"worker,omitempty"`
	Expected int    `json:"expected"`
	Got      int    `json:"got"`
}

// LineEvent is what the hub broadcasts to live subscribers: one analyzed
// line plus whatever findings it produced.
type LineEvent struct {
	Raw      RawLine   `json:"raw"`
	Backend  string    `json:"backend"` // current backend at the time of the line, "" if none
	Findings []Finding `json:"findings,omitempty"`
}

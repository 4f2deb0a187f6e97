package model

// RawLine is a single line read from a log file, before any parsing.
type RawLine struct {
	Text   string `json:"text"`
	Source string `json:"source"` // originating file path
}

// LogLine is a parsed log record in the harness format
// [timestamp][task][level] tag: message.
type LogLine struct {
	Timestamp uint64 `json:"timestamp"`
	Task      string `json:"task"`
	Level     string `json:"level"` // single uppercase letter: I, W, E, D, V
	Tag       string `json:"tag"`
	Message   string `json:"message"`
	Raw       string `json:"raw"` // original line text
}

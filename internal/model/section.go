package model

// BackendSection accumulates everything observed between one
// "Testing <Name>Backend" marker and the next.
type BackendSection struct {
	Name string

	// Lines holds every raw line attributed to this section, in read order.
	Lines []string

	// Sequences maps worker tag to the message numbers observed for it,
	// appended in read order and never reordered or deduplicated.
	Sequences map[string][]int

	// SeqOrder records worker tags in first-seen order.
	SeqOrder []string

	// MessageCount counts parsed lines carrying a message-id marker.
	MessageCount int
}

// NewBackendSection returns an empty section for the given backend name.
func NewBackendSection(name string) *BackendSection {
	return &BackendSection{
		Name:      name,
		Sequences: make(map[string][]int),
	}
}

// Sequence returns the observed message numbers for a worker tag.
func (s *BackendSection) Sequence(worker string) []int {
	return s.Sequences[worker]
}

// AppendSeq records a message number for a worker, creating the worker's
// sequence on first use.
func (s *BackendSection) AppendSeq(worker string, n int) {
	if _, ok := s.Sequences[worker]; !ok {
		s.SeqOrder = append(s.SeqOrder, worker)
	}
	s.Sequences[worker] = append(s.Sequences[worker], n)
}

package index

// maxHistorySize bounds both the per-feed raw history and the per-index
// smoothed history.
const maxHistorySize = 20

// history is a bounded most-recent-first ring of float64 values.
type history struct {
	values []float64
}

func newHistory() *history {
	return &history{values: make([]float64, 0, maxHistorySize)}
}

// PushFront inserts v as the most recent value, evicting the oldest entry
// once the ring is at capacity.
func (h *history) PushFront(v float64) {
	if len(h.values) == maxHistorySize {
		copy(h.values[1:], h.values[:maxHistorySize-1])
		h.values[0] = v
		return
	}
	h.values = append(h.values, 0)
	copy(h.values[1:], h.values)
	h.values[0] = v
}

// Len returns the number of stored values.
func (h *history) Len() int {
	return len(h.values)
}

// Front returns the most recent value; callers must check Len first.
func (h *history) Front() float64 {
	return h.values[0]
}

// Values returns the stored values ordered most-recent-first. The slice is
// owned by the ring and must not be retained across a PushFront.
func (h *history) Values() []float64 {
	return h.values
}

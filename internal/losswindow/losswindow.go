package losswindow

// History is a fixed-capacity FIFO of loss percentages. Appending at
// capacity evicts the oldest sample. History is not safe for concurrent
// use; the monitor serializes access to it.
type History struct {
	samples  []int
	capacity int
}

// NewHistory creates a History holding at most capacity samples.
// A capacity below 1 is treated as 1.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}

	return &History{
		samples:  make([]int, 0, capacity),
		capacity: capacity,
	}
}

// Record appends a loss sample, evicting the oldest one when the window
// is full. Samples are clamped to [0, 100].
func (h *History) Record(sample int) {
	if sample < 0 {
		sample = 0
	}
	if sample > 100 {
		sample = 100
	}

	if len(h.samples) == h.capacity {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}

	h.samples = append(h.samples, sample)
}

// Average returns the mean of the current window truncated toward zero,
// or 0 for an empty window. An empty window must not block membership;
// the state machine owns the bootstrap decision.
func (h *History) Average() int {
	if len(h.samples) == 0 {
		return 0
	}

	sum := 0
	for _, s := range h.samples {
		sum += s
	}

	return sum / len(h.samples)
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Samples returns a copy of the retained samples, oldest first.
func (h *History) Samples() []int {
	out := make([]int, len(h.samples))
	copy(out, h.samples)
	return out
}

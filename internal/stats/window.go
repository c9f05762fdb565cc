// Package stats maintains the fixed-capacity sliding windows behind the
// displayed Ppeak, PEEP and Vte estimates.
package stats

// Window is a fixed-capacity FIFO of float64 samples with a running sum for
// O(1) means. Not safe for concurrent use; the tick loop is the only writer.
type Window struct {
	capacity int
	vals     []float64
	sum      float64
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{capacity: capacity, vals: make([]float64, 0, capacity)}
}

// Push appends v, evicting the oldest sample when the window is full.
func (w *Window) Push(v float64) {
	if len(w.vals) == w.capacity {
		w.sum -= w.vals[0]
		w.vals = append(w.vals[:0], w.vals[1:]...)
	}
	w.vals = append(w.vals, v)
	w.sum += v
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return len(w.vals) }

// Avg returns the arithmetic mean of the contents, or 0 for an empty window.
func (w *Window) Avg() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	return w.sum / float64(len(w.vals))
}

// Max returns the largest sample held, or 0 for an empty window.
func (w *Window) Max() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	max := w.vals[0]
	for _, v := range w.vals[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

package pipeline

import (
	"fmt"
)

// MovingAverageFilter smooths one physical channel with a bounded FIFO window.
// Process is a mutating operation; a filter must not be shared across
// goroutines without external synchronization.
type MovingAverageFilter struct {
	window int
	values []float64
}

// NewMovingAverageFilter creates a filter with the given window size.
// The window must be a positive integer.
func NewMovingAverageFilter(window int) (*MovingAverageFilter, error) {
	if window <= 0 {
		return nil, fmt.Errorf("invalid filter window %d: must be positive", window)
	}
	return &MovingAverageFilter{
		window: window,
		values: make([]float64, 0, window),
	}, nil
}

// Process appends value to the window, evicting the oldest sample once the
// window is full, and returns the arithmetic mean of the retained samples.
// The first call on a fresh filter returns its input unchanged.
func (f *MovingAverageFilter) Process(value float64) float64 {
	f.values = append(f.values, value)
	if len(f.values) > f.window {
		f.values = f.values[1:]
	}

	sum := 0.0
	for _, v := range f.values {
		sum += v
	}
	return sum / float64(len(f.values))
}

// Len returns the number of samples currently retained
func (f *MovingAverageFilter) Len() int {
	return len(f.values)
}

// Window returns the configured window size
func (f *MovingAverageFilter) Window() int {
	return f.window
}

// Reset discards all retained samples
func (f *MovingAverageFilter) Reset() {
	f.values = f.values[:0]
}

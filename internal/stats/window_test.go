package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyWindowAverageIsZero(t *testing.T) {
	w := NewWindow(5)
	assert.Equal(t, 0.0, w.Avg())
	assert.Equal(t, 0, w.Len())
}

func TestWindowMean(t *testing.T) {
	w := NewWindow(5)
	for _, v := range []float64{2, 4, 6} {
		w.Push(v)
	}
	assert.InDelta(t, 4, w.Avg(), 1e-12)
}

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4} {
		w.Push(v)
	}
	assert.Equal(t, 3, w.Len())
	// {2,3,4} after evicting 1
	assert.InDelta(t, 3, w.Avg(), 1e-12)
	assert.InDelta(t, 4, w.Max(), 1e-12)
}

func TestWindowStaysAtCapacity(t *testing.T) {
	w := NewWindow(20)
	for i := 0; i < 500; i++ {
		w.Push(float64(i))
		assert.LessOrEqual(t, w.Len(), 20)
	}
	assert.Equal(t, 20, w.Len())
}

func TestWindowMaxEmpty(t *testing.T) {
	assert.Equal(t, 0.0, NewWindow(4).Max())
}

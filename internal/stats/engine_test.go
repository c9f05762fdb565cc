package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultCaps() Capacities {
	return Capacities{DisplayBuffer: 100, Ppeak: 20, PEEP: 5, Vte: 5}
}

func TestEmitWithNoBreaths(t *testing.T) {
	e := NewEngine(defaultCaps())
	snap := e.Emit()
	assert.Equal(t, 0.0, snap.Vte)
	assert.Equal(t, 0.0, snap.PEEP)
	// Display buffer is all zeros, so the peak is zero too.
	assert.Equal(t, 0.0, snap.Ppeak)
}

func TestPpeakTracksDisplayBufferMax(t *testing.T) {
	e := NewEngine(defaultCaps())
	e.ObserveSample(18.5, -4)
	e.ObserveSample(22.0, -2)
	e.ObserveSample(19.0, 1)

	snap := e.Emit()
	assert.InDelta(t, 22.0, snap.Ppeak, 1e-12)
	assert.Equal(t, 22, snap.PpeakInt)
}

func TestPpeakWindowSmoothsAcrossEmissions(t *testing.T) {
	e := NewEngine(defaultCaps())
	e.ObserveSample(10, 0)
	e.Emit() // ppeak window: {10}
	e.ObserveSample(30, 0)
	snap := e.Emit() // ppeak window: {10, 30}
	assert.InDelta(t, 20, snap.Ppeak, 1e-12)
}

func TestBreathStatsRecomputedEveryEmission(t *testing.T) {
	e := NewEngine(defaultCaps())
	e.ObserveBreath(6.5, 480)

	first := e.Emit()
	second := e.Emit() // no new breath in between
	assert.InDelta(t, 6.5, first.PEEP, 1e-12)
	assert.InDelta(t, second.PEEP, first.PEEP, 1e-12)
	assert.Equal(t, 480, first.VteInt)
	assert.Equal(t, 1, e.BreathCount())
}

func TestBreathWindowsEvict(t *testing.T) {
	e := NewEngine(Capacities{DisplayBuffer: 10, Ppeak: 20, PEEP: 2, Vte: 2})
	e.ObserveBreath(4, 400)
	e.ObserveBreath(6, 500)
	e.ObserveBreath(8, 600)

	snap := e.Emit()
	assert.InDelta(t, 7, snap.PEEP, 1e-12)  // {6, 8}
	assert.InDelta(t, 550, snap.Vte, 1e-12) // {500, 600}
}

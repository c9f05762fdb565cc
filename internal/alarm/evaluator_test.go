package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vent-monitor/internal/stats"
)

func f(v float64) *float64 { return &v }

func stateFor(t *testing.T, states []State, p Parameter) State {
	t.Helper()
	for _, s := range states {
		if s.Parameter == p {
			return s
		}
	}
	t.Fatalf("no state for parameter %s", p)
	return State{}
}

func TestUnarmedNeverViolates(t *testing.T) {
	e := NewEvaluator()
	states := e.Evaluate(stats.Snapshot{Ppeak: 999, PEEP: 999, Vte: -50})
	for _, s := range states {
		assert.False(t, s.Armed, "%s", s.Parameter)
		assert.False(t, s.Violating, "%s", s.Parameter)
	}
}

func TestConfirmArmsOnlyEditedParameters(t *testing.T) {
	e := NewEvaluator()
	e.Propose(Ppeak, nil, f(40))
	e.Confirm()

	states := e.Evaluate(stats.Snapshot{Ppeak: 42, PEEP: 999, Vte: 2000})
	assert.True(t, stateFor(t, states, Ppeak).Armed)
	assert.True(t, stateFor(t, states, Ppeak).Violating)
	assert.False(t, stateFor(t, states, PEEP).Armed)
	assert.False(t, stateFor(t, states, PEEP).Violating)
	assert.False(t, stateFor(t, states, Vte).Armed)
}

func TestMaxOnlyParameters(t *testing.T) {
	e := NewEvaluator()
	e.Propose(Ppeak, nil, f(45))
	e.Propose(PEEP, nil, f(25))
	e.Confirm()

	states := e.Evaluate(stats.Snapshot{Ppeak: 45, PEEP: 25.5})
	// At the bound is not a violation; above it is.
	assert.False(t, stateFor(t, states, Ppeak).Violating)
	assert.True(t, stateFor(t, states, PEEP).Violating)
}

func TestVteChecksBothBounds(t *testing.T) {
	e := NewEvaluator()
	e.Propose(Vte, f(200), f(800))
	e.Confirm()

	low := e.Evaluate(stats.Snapshot{Vte: 150})
	mid := e.Evaluate(stats.Snapshot{Vte: 500})
	high := e.Evaluate(stats.Snapshot{Vte: 900})
	assert.True(t, stateFor(t, low, Vte).Violating)
	assert.False(t, stateFor(t, mid, Vte).Violating)
	assert.True(t, stateFor(t, high, Vte).Violating)
}

func TestCancelRestoresConfirmedBounds(t *testing.T) {
	e := NewEvaluator()
	e.Propose(Ppeak, nil, f(5))
	e.Confirm()

	// Edit to 9 but cancel: the evaluator must keep using max=5.
	e.Propose(Ppeak, nil, f(9))
	e.Cancel()

	require.InDelta(t, 5, e.Confirmed(Ppeak).Max, 1e-12)
	states := e.Evaluate(stats.Snapshot{Ppeak: 7})
	assert.True(t, stateFor(t, states, Ppeak).Violating)
}

func TestCancelDoesNotDisarm(t *testing.T) {
	e := NewEvaluator()
	e.Propose(PEEP, nil, f(20))
	e.Confirm()

	e.Propose(PEEP, nil, f(30))
	e.Cancel()
	assert.True(t, e.Confirmed(PEEP).Armed)
}

func TestProposeAloneDoesNotAffectEvaluation(t *testing.T) {
	e := NewEvaluator()
	e.Propose(Ppeak, nil, f(10))
	states := e.Evaluate(stats.Snapshot{Ppeak: 50})
	assert.False(t, stateFor(t, states, Ppeak).Armed)
	assert.False(t, stateFor(t, states, Ppeak).Violating)
}

// Package alarm tracks per-parameter thresholds and evaluates the smoothed
// ventilation statistics against them once per emission cycle.
//
// Thresholds only take effect after an explicit confirm: a parameter left at
// its startup default is unarmed and can never violate.
package alarm

import (
	"sync"

	"vent-monitor/internal/stats"
)

// Parameter names one monitored statistic.
type Parameter string

const (
	Ppeak Parameter = "ppeak"
	PEEP  Parameter = "peep"
	Vte   Parameter = "vte"
)

// Parameters lists the monitored parameters in display order.
var Parameters = []Parameter{Ppeak, PEEP, Vte}

// Threshold is one parameter's confirmed alarm record. Ppeak and PEEP check
// only the max bound; Vte checks both.
type Threshold struct {
	Min   float64
	Max   float64
	Armed bool
}

// State is the per-parameter evaluation result for one emission cycle.
type State struct {
	Parameter Parameter
	Value     float64
	Armed     bool
	Violating bool
}

// pendingEdit holds uncommitted bounds proposed since the settings dialog
// opened. Nil fields were not touched.
type pendingEdit struct {
	min *float64
	max *float64
}

// Evaluator owns the confirmed thresholds and any in-flight edit session.
// Confirm and Cancel apply atomically to every parameter edited since the
// session opened. Safe for a threshold source running on another goroutine.
type Evaluator struct {
	mu        sync.Mutex
	confirmed map[Parameter]Threshold
	pending   map[Parameter]pendingEdit
}

// NewEvaluator returns an evaluator with the startup defaults: Ppeak max 45,
// PEEP max 25, Vte [0, 1000], everything unarmed.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		confirmed: map[Parameter]Threshold{
			Ppeak: {Max: 45},
			PEEP:  {Max: 25},
			Vte:   {Min: 0, Max: 1000},
		},
		pending: make(map[Parameter]pendingEdit),
	}
}

// Propose records an uncommitted bound edit for p. Nil bounds are left as
// they are. Evaluation keeps using the previously confirmed bounds until
// Confirm.
func (e *Evaluator) Propose(p Parameter, min, max *float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	edit := e.pending[p]
	if min != nil {
		edit.min = min
	}
	if max != nil {
		edit.max = max
	}
	e.pending[p] = edit
}

// Confirm commits every pending edit and arms the edited parameters. Untouched
// parameters keep their bounds and armed state.
func (e *Evaluator) Confirm() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for p, edit := range e.pending {
		th := e.confirmed[p]
		if edit.min != nil {
			th.Min = *edit.min
		}
		if edit.max != nil {
			th.Max = *edit.max
		}
		th.Armed = true
		e.confirmed[p] = th
	}
	e.pending = make(map[Parameter]pendingEdit)
}

// Cancel discards all pending edits. Confirmed bounds and armed state are
// never altered by a cancel.
func (e *Evaluator) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = make(map[Parameter]pendingEdit)
}

// Confirmed returns the committed threshold for p.
func (e *Evaluator) Confirmed(p Parameter) Threshold {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmed[p]
}

// Evaluate compares one statistics snapshot against the confirmed thresholds
// and returns the per-parameter states in display order.
func (e *Evaluator) Evaluate(s stats.Snapshot) []State {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]State, 0, len(Parameters))
	for _, p := range Parameters {
		th := e.confirmed[p]
		var value float64
		switch p {
		case Ppeak:
			value = s.Ppeak
		case PEEP:
			value = s.PEEP
		case Vte:
			value = s.Vte
		}
		st := State{Parameter: p, Value: value, Armed: th.Armed}
		if th.Armed {
			switch p {
			case Vte:
				st.Violating = value < th.Min || value > th.Max
			default:
				st.Violating = value > th.Max
			}
		}
		out = append(out, st)
	}
	return out
}

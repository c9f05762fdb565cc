package stats

import "math"

// Snapshot carries the smoothed ventilation statistics published once per
// emission cycle, in both floating-point and nearest-integer form.
type Snapshot struct {
	Ppeak    float64
	PpeakInt int
	Vte      float64
	VteInt   int
	PEEP     float64
	PEEPInt  int
}

// Engine owns the rolling display buffers and the three statistics windows.
//
// The Ppeak window is fed once per emission cycle with the maximum pressure
// currently on display; the PEEP and Vte windows are fed per finalized
// breath, but their means are recomputed on every emission regardless.
type Engine struct {
	pressure *Window // display buffer, pre-filled with zeros
	flow     *Window

	ppeak *Window
	peep  *Window
	vte   *Window
}

// Capacities fixes the window sizes of an Engine.
type Capacities struct {
	DisplayBuffer int
	Ppeak         int
	PEEP          int
	Vte           int
}

// NewEngine builds an engine. The display buffers start full of zeros so the
// pressure maximum is well-defined from the first tick.
func NewEngine(c Capacities) *Engine {
	e := &Engine{
		pressure: NewWindow(c.DisplayBuffer),
		flow:     NewWindow(c.DisplayBuffer),
		ppeak:    NewWindow(c.Ppeak),
		peep:     NewWindow(c.PEEP),
		vte:      NewWindow(c.Vte),
	}
	for i := 0; i < c.DisplayBuffer; i++ {
		e.pressure.Push(0)
		e.flow.Push(0)
	}
	return e
}

// ObserveSample records one tick's waveform pair into the display buffers.
func (e *Engine) ObserveSample(pressure, flow float64) {
	e.pressure.Push(pressure)
	e.flow.Push(flow)
}

// ObserveBreath records the PEEP and Vte of a finalized breath.
func (e *Engine) ObserveBreath(peep, vte float64) {
	e.peep.Push(peep)
	e.vte.Push(vte)
}

// Emit closes one emission cycle: the current display-buffer pressure maximum
// joins the Ppeak window and the three running means are published.
func (e *Engine) Emit() Snapshot {
	e.ppeak.Push(e.pressure.Max())

	ppeak := e.ppeak.Avg()
	peep := e.peep.Avg()
	vte := e.vte.Avg()
	return Snapshot{
		Ppeak:    ppeak,
		PpeakInt: int(math.Round(ppeak)),
		Vte:      vte,
		VteInt:   int(math.Round(vte)),
		PEEP:     peep,
		PEEPInt:  int(math.Round(peep)),
	}
}

// BreathCount reports how many breaths currently back the Vte estimate.
func (e *Engine) BreathCount() int { return e.vte.Len() }

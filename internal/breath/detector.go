// Package breath detects inspiration/expiration transitions in the flow
// signal and integrates expiratory flow into a tidal volume per breath.
package breath

// Phase is the current half of the respiratory cycle.
type Phase int

const (
	// PhaseUnknown holds until the first zero-crossing is observed.
	PhaseUnknown Phase = iota
	PhaseInspiration
	PhaseExpiration
)

// vteFactor converts accumulated expiratory flow (L/min summed per 50 ms
// tick) into millilitres. Empirical, from the bench calibration.
const vteFactor = 2286

// tickMillis is the sampling interval the vteFactor was calibrated against.
const tickMillis = 50

// Result reports the outcome of one detector update. PEEP and Vte are only
// meaningful when Finalized is true.
type Result struct {
	Finalized bool
	PEEP      float64 // cmH2O, pressure on the tick before the crossing
	Vte       float64 // mL
}

// Detector is the breath-cycle state machine. One Update per tick; the caller
// owns all synchronization.
type Detector struct {
	minDuration int

	phase        Phase
	prevFlow     float64
	prevPressure float64
	accum        float64 // summed -flow while in expiration
	duration     int     // ticks spent in the current cycle
}

// NewDetector returns a detector that discards cycles of minDuration ticks or
// fewer as noise.
func NewDetector(minDuration int) *Detector {
	return &Detector{minDuration: minDuration}
}

// Phase returns the current cycle phase.
func (d *Detector) Phase() Phase { return d.phase }

// Update consumes one (pressure, flow) pair. An upward zero-crossing after a
// long-enough cycle finalizes the breath: PEEP is the previous tick's
// pressure and Vte the integrated expiratory volume. Shorter cycles reset
// silently.
func (d *Detector) Update(pressure, flow float64) Result {
	var res Result

	if flow >= 0 && d.prevFlow < 0 { // upward crossing: expiration ended
		if d.duration > d.minDuration {
			res = Result{
				Finalized: true,
				PEEP:      d.prevPressure,
				Vte:       vteFactor * (d.accum / (float64(d.duration) * tickMillis)),
			}
		}
		d.accum = 0
		d.duration = 0
		d.phase = PhaseInspiration
	}

	if flow < 0 && d.prevFlow >= 0 { // downward crossing: expiration begins
		d.phase = PhaseExpiration
	}

	if d.phase == PhaseExpiration {
		d.accum += -flow
		d.duration++
	}

	d.prevPressure = pressure
	d.prevFlow = flow
	return res
}

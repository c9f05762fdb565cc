// Package sensor provides the per-tick sample sources feeding the monitoring
// pipeline: a hardware source reading the sensor cable and a synthetic
// generator for bench use.
package sensor

import "vent-monitor/internal/protocol"

// Sample is one (pressure, flow) pair produced on a tick.
type Sample struct {
	Pressure float64 // cmH2O
	Flow     float64 // L/min
	Seq      uint64
}

// Source produces one sample per tick. Implementations must be swappable
// without any change to downstream components.
type Source interface {
	Next() (Sample, error)
}

// Hardware reads the flow sensor then the pressure sensor each tick, in that
// order, matching the cable's polling sequence.
type Hardware struct {
	codec *protocol.Codec
	seq   uint64
}

func NewHardware(codec *protocol.Codec) *Hardware {
	return &Hardware{codec: codec}
}

func (h *Hardware) Next() (Sample, error) {
	flow, err := h.codec.Flow()
	if err != nil {
		return Sample{}, err
	}
	pressure, err := h.codec.Pressure()
	if err != nil {
		return Sample{}, err
	}
	h.seq++
	return Sample{Pressure: pressure, Flow: flow, Seq: h.seq}, nil
}

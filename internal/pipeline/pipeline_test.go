package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vent-monitor/internal/alarm"
	"vent-monitor/internal/breath"
	"vent-monitor/internal/sensor"
	"vent-monitor/internal/stats"
)

// captureSink records everything the pipeline emits.
type captureSink struct {
	waveforms int
	snaps     []stats.Snapshot
	states    []alarm.State
}

func (c *captureSink) OnWaveformSample(pressure, flow float64) { c.waveforms++ }
func (c *captureSink) OnStats(s stats.Snapshot)                { c.snaps = append(c.snaps, s) }
func (c *captureSink) OnAlarmState(s alarm.State)              { c.states = append(c.states, s) }

func newTestPipeline(src sensor.Source, sink DisplaySink) *Pipeline {
	return New(
		Options{EmitEvery: 5},
		src,
		breath.NewDetector(20),
		stats.NewEngine(stats.Capacities{DisplayBuffer: 100, Ppeak: 20, PEEP: 5, Vte: 5}),
		alarm.NewEvaluator(),
		sink,
		zap.NewNop(),
	)
}

func TestSyntheticRunProducesBreathsAndStats(t *testing.T) {
	sink := &captureSink{}
	p := newTestPipeline(sensor.NewSynthetic(1), sink)

	for i := 0; i < 600; i++ { // 30 s at the 50 ms tick
		p.tick()
	}

	assert.Equal(t, 600, sink.waveforms)
	assert.Equal(t, 120, len(sink.snaps))

	require.Greater(t, p.engine.BreathCount(), 0, "expected at least one finalized breath")
	last := sink.snaps[len(sink.snaps)-1]
	assert.Greater(t, last.Ppeak, 0.0)
	assert.Greater(t, last.Vte, 0.0)
	assert.Greater(t, last.PEEP, 0.0)
}

func TestAlarmStatesEmittedPerEmissionCycle(t *testing.T) {
	sink := &captureSink{}
	p := newTestPipeline(sensor.NewSynthetic(1), sink)

	p.Alarms().Propose(alarm.Ppeak, nil, ptr(10.0))
	p.Alarms().Confirm()

	for i := 0; i < 200; i++ {
		p.tick()
	}

	// 40 emissions x 3 parameters.
	require.Equal(t, 120, len(sink.states))
	var violated bool
	for _, st := range sink.states {
		if st.Parameter == alarm.Ppeak && st.Violating {
			violated = true
		}
		if st.Parameter != alarm.Ppeak {
			assert.False(t, st.Armed)
		}
	}
	// Synthetic pressure peaks near 20, well above the confirmed max of 10.
	assert.True(t, violated)
}

type flakySource struct {
	inner sensor.Source
	fail  bool
}

func (f *flakySource) Next() (sensor.Sample, error) {
	if f.fail {
		return sensor.Sample{}, errors.New("read timeout")
	}
	return f.inner.Next()
}

func TestFailedReadSkipsDerivedUpdates(t *testing.T) {
	src := &flakySource{inner: sensor.NewSynthetic(1)}
	sink := &captureSink{}
	p := newTestPipeline(src, sink)

	for i := 0; i < 4; i++ {
		p.tick()
	}
	src.fail = true
	p.tick() // would have been the emission tick
	assert.Equal(t, 4, sink.waveforms)
	assert.Empty(t, sink.snaps, "failed tick must not advance the emission counter")

	src.fail = false
	p.tick()
	assert.Equal(t, 1, len(sink.snaps))
}

func ptr(v float64) *float64 { return &v }

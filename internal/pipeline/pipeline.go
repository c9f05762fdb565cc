// Package pipeline drives one monitoring tick per fixed interval: sample,
// breath detection, statistics update and alarm evaluation run synchronously
// in that order on a single goroutine.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vent-monitor/internal/alarm"
	"vent-monitor/internal/breath"
	"vent-monitor/internal/sensor"
	"vent-monitor/internal/stats"
)

// Options fixes the pipeline cadence.
type Options struct {
	TickInterval time.Duration // default 50ms
	EmitEvery    int           // stats emission cadence in ticks, default 5
}

func (o *Options) defaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = 50 * time.Millisecond
	}
	if o.EmitEvery <= 0 {
		o.EmitEvery = 5
	}
}

// Pipeline is the tick orchestrator. All shared state (windows, breath state,
// alarm records) is mutated only from Run's goroutine; the alarm evaluator
// carries its own lock for threshold edits crossing that boundary.
type Pipeline struct {
	opts     Options
	source   sensor.Source
	detector *breath.Detector
	engine   *stats.Engine
	alarms   *alarm.Evaluator
	sink     DisplaySink
	log      *zap.Logger

	sinceEmit int
}

func New(opts Options, source sensor.Source, detector *breath.Detector,
	engine *stats.Engine, alarms *alarm.Evaluator, sink DisplaySink, log *zap.Logger) *Pipeline {
	opts.defaults()
	return &Pipeline{
		opts:     opts,
		source:   source,
		detector: detector,
		engine:   engine,
		alarms:   alarms,
		sink:     sink,
		log:      log,
	}
}

// Alarms exposes the evaluator for threshold sources.
func (p *Pipeline) Alarms() *alarm.Evaluator { return p.alarms }

// Run ticks until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick runs one sampling/update cycle. A failed read is recoverable: every
// derived update is skipped so the detector keeps the last valid pair and
// the breath state machine stays consistent.
func (p *Pipeline) tick() {
	s, err := p.source.Next()
	if err != nil {
		p.log.Warn("sample read failed, skipping tick", zap.Error(err))
		return
	}

	res := p.detector.Update(s.Pressure, s.Flow)
	p.engine.ObserveSample(s.Pressure, s.Flow)
	if res.Finalized {
		p.engine.ObserveBreath(res.PEEP, res.Vte)
	}
	p.sink.OnWaveformSample(s.Pressure, s.Flow)

	p.sinceEmit++
	if p.sinceEmit < p.opts.EmitEvery {
		return
	}
	p.sinceEmit = 0

	snap := p.engine.Emit()
	p.sink.OnStats(snap)
	for _, st := range p.alarms.Evaluate(snap) {
		p.sink.OnAlarmState(st)
	}
}

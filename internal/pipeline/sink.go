package pipeline

import (
	"go.uber.org/zap"

	"vent-monitor/internal/alarm"
	"vent-monitor/internal/stats"
)

// DisplaySink receives everything the core computes. Implementations render,
// log or record; the pipeline never knows which.
//
// Unarmed parameters carry Armed=false in their alarm state; sinks are
// expected to show a placeholder instead of a number for those.
type DisplaySink interface {
	OnWaveformSample(pressure, flow float64)
	OnStats(s stats.Snapshot)
	OnAlarmState(s alarm.State)
}

// LogSink writes stats and alarm transitions to the structured log. Waveform
// samples are dropped: at 20 Hz they are noise in a log.
type LogSink struct {
	log  *zap.Logger
	last map[alarm.Parameter]bool
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log, last: make(map[alarm.Parameter]bool)}
}

func (s *LogSink) OnWaveformSample(pressure, flow float64) {}

func (s *LogSink) OnStats(snap stats.Snapshot) {
	s.log.Debug("stats",
		zap.Float64("ppeak", snap.Ppeak),
		zap.Float64("vte", snap.Vte),
		zap.Float64("peep", snap.PEEP),
	)
}

func (s *LogSink) OnAlarmState(st alarm.State) {
	prev, seen := s.last[st.Parameter]
	s.last[st.Parameter] = st.Violating
	if seen && prev == st.Violating {
		return
	}
	if st.Violating {
		s.log.Warn("alarm raised",
			zap.String("parameter", string(st.Parameter)),
			zap.Float64("value", st.Value),
		)
	} else if seen {
		s.log.Info("alarm cleared",
			zap.String("parameter", string(st.Parameter)),
			zap.Float64("value", st.Value),
		)
	}
}

// MultiSink fans out to several sinks in order.
type MultiSink []DisplaySink

func (m MultiSink) OnWaveformSample(pressure, flow float64) {
	for _, s := range m {
		s.OnWaveformSample(pressure, flow)
	}
}

func (m MultiSink) OnStats(snap stats.Snapshot) {
	for _, s := range m {
		s.OnStats(snap)
	}
}

func (m MultiSink) OnAlarmState(st alarm.State) {
	for _, s := range m {
		s.OnAlarmState(st)
	}
}

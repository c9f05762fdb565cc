package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vent-monitor/internal/alarm"
	"vent-monitor/internal/stats"
)

func openTestRecorder(t *testing.T, path string) *Recorder {
	t.Helper()
	r, err := Open(Options{Path: path}, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestRecorderPersistsTrendsAndEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.sqlite")

	r := openTestRecorder(t, path)
	r.OnStats(stats.Snapshot{Ppeak: 21.5, Vte: 480, PEEP: 6.2})
	r.OnStats(stats.Snapshot{Ppeak: 22.0, Vte: 470, PEEP: 6.0})
	r.OnAlarmState(alarm.State{Parameter: alarm.Ppeak, Value: 48, Armed: true, Violating: true})
	require.NoError(t, r.Close())

	r = openTestRecorder(t, path)
	defer r.Close()

	trends, err := r.RecentTrends(10)
	require.NoError(t, err)
	assert.Len(t, trends, 2)

	events, err := r.AlarmHistory(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ppeak", events[0].Parameter)
	assert.True(t, events[0].Violating)
}

func TestRecorderDedupsUnchangedAlarmStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.sqlite")

	r := openTestRecorder(t, path)
	st := alarm.State{Parameter: alarm.PEEP, Value: 27, Armed: true, Violating: true}
	r.OnAlarmState(st)
	r.OnAlarmState(st)
	r.OnAlarmState(st)
	st.Violating = false
	st.Value = 20
	r.OnAlarmState(st)
	require.NoError(t, r.Close())

	r = openTestRecorder(t, path)
	defer r.Close()

	events, err := r.AlarmHistory(0)
	require.NoError(t, err)
	// One raised row, one cleared row.
	assert.Len(t, events, 2)
}

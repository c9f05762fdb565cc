// Package storage records alarm transitions and trend snapshots to SQLite in
// the background, off the tick goroutine. Waveform samples are never
// persisted.
package storage

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vent-monitor/internal/alarm"
	"vent-monitor/internal/model"
	"vent-monitor/internal/stats"
	"vent-monitor/internal/utils"
)

// Options tunes the recorder.
type Options struct {
	Path     string        // sqlite file path
	MaxQueue int           // buffered records before drops, default 1000
	DedupTTL time.Duration // how long an unchanged alarm state suppresses rows
}

type record struct {
	event *model.AlarmEvent
	trend *model.TrendSample
}

// Recorder implements pipeline.DisplaySink. Rows are queued to a background
// writer; a full queue drops the record rather than stall the tick.
type Recorder struct {
	db     *gorm.DB
	q      chan record
	closed chan struct{}
	cache  *utils.ValueCache
	log    *zap.Logger
}

// Open opens (creating if needed) the SQLite file, migrates the schema and
// starts the background writer.
func Open(opts Options, log *zap.Logger) (*Recorder, error) {
	if opts.Path == "" {
		return nil, errors.New("storage path required")
	}
	if opts.MaxQueue <= 0 {
		opts.MaxQueue = 1000
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Path, err)
	}
	if err := db.AutoMigrate(&model.AlarmEvent{}, &model.TrendSample{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r := &Recorder{
		db:     db,
		q:      make(chan record, opts.MaxQueue),
		closed: make(chan struct{}),
		cache:  utils.NewValueCache(opts.DedupTTL),
		log:    log,
	}
	go r.writer()
	return r, nil
}

func (r *Recorder) writer() {
	for rec := range r.q {
		var err error
		switch {
		case rec.event != nil:
			err = r.db.Create(rec.event).Error
		case rec.trend != nil:
			err = r.db.Create(rec.trend).Error
		}
		if err != nil {
			r.log.Warn("storage write failed", zap.Error(err))
		}
	}
	close(r.closed)
}

// Close drains the queue and closes the database.
func (r *Recorder) Close() error {
	close(r.q)
	<-r.closed
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.q <- rec:
	default:
		r.log.Warn("storage queue full, dropping record")
	}
}

// OnWaveformSample is a no-op: waveforms stay out of the database.
func (r *Recorder) OnWaveformSample(pressure, flow float64) {}

// OnStats queues one trend row per emission cycle.
func (r *Recorder) OnStats(s stats.Snapshot) {
	r.enqueue(record{trend: &model.TrendSample{
		Ppeak:     s.Ppeak,
		Vte:       s.Vte,
		PEEP:      s.PEEP,
		Timestamp: time.Now(),
	}})
}

// OnAlarmState queues an alarm row only when the parameter's violation state
// changed since the last recorded one.
func (r *Recorder) OnAlarmState(s alarm.State) {
	key := "alarm|" + string(s.Parameter)
	cur := 0.0
	if s.Violating {
		cur = 1
	}
	if old, ok := r.cache.GetValue(key); ok && utils.FloatsEqual(old, cur) {
		return
	}
	r.cache.SetValue(key, cur)
	r.enqueue(record{event: &model.AlarmEvent{
		Parameter: string(s.Parameter),
		Value:     s.Value,
		Violating: s.Violating,
		Timestamp: time.Now(),
	}})
}

// RecentTrends returns up to limit trend rows, newest first.
func (r *Recorder) RecentTrends(limit int) ([]model.TrendSample, error) {
	var rows []model.TrendSample
	q := r.db.Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AlarmHistory returns up to limit alarm transitions, newest first.
func (r *Recorder) AlarmHistory(limit int) ([]model.AlarmEvent, error) {
	var rows []model.AlarmEvent
	q := r.db.Order("timestamp DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Package model holds the persisted records: alarm transitions and trend
// snapshots. Raw waveforms are deliberately never stored.
package model

import "time"

// AlarmEvent captures one per-parameter alarm state change.
type AlarmEvent struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Parameter string    `gorm:"column:parameter;index"`
	Value     float64   `gorm:"column:value"`
	Violating bool      `gorm:"column:violating"`
	Timestamp time.Time `gorm:"column:timestamp;index;autoCreateTime"`
}

func (AlarmEvent) TableName() string { return "alarm_events" }

// TrendSample is one emission cycle's smoothed statistics.
type TrendSample struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Ppeak     float64   `gorm:"column:ppeak"`
	Vte       float64   `gorm:"column:vte"`
	PEEP      float64   `gorm:"column:peep"`
	Timestamp time.Time `gorm:"column:timestamp;index;autoCreateTime"`
}

func (TrendSample) TableName() string { return "trend_samples" }

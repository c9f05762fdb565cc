// Package output writes recorded trend and alarm history to JSON or CSV
// files for offline review.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vent-monitor/internal/model"
)

// Export bundles what one export run writes.
type Export struct {
	Trends []model.TrendSample `json:"trends"`
	Alarms []model.AlarmEvent  `json:"alarms"`
}

// WriteJSON writes the export to a JSON file with pretty formatting.
func WriteJSON(path string, ex Export) error {
	b, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteTrendsCSV writes trend rows to a CSV file.
// Columns: timestamp,ppeak,vte,peep
func WriteTrendsCSV(path string, trends []model.TrendSample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "ppeak", "vte", "peep"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range trends {
		rec := []string{
			t.Timestamp.Format(time.RFC3339Nano),
			fmt.Sprintf("%g", t.Ppeak),
			fmt.Sprintf("%g", t.Vte),
			fmt.Sprintf("%g", t.PEEP),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAlarmsCSV writes alarm transition rows to a CSV file.
// Columns: timestamp,parameter,value,violating
func WriteAlarmsCSV(path string, alarms []model.AlarmEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"timestamp", "parameter", "value", "violating"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range alarms {
		violating := "0"
		if a.Violating {
			violating = "1"
		}
		rec := []string{
			a.Timestamp.Format(time.RFC3339Nano),
			a.Parameter,
			fmt.Sprintf("%g", a.Value),
			violating,
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Package settings implements a file-backed threshold source: a YAML
// thresholds file whose save acts as the operator's confirm action.
package settings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"vent-monitor/internal/alarm"
)

// Bounds are the optional per-parameter limits in the thresholds file.
// Absent fields leave the corresponding bound untouched.
type Bounds struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// File mirrors the thresholds YAML document.
type File struct {
	Ppeak *Bounds `yaml:"ppeak"`
	PEEP  *Bounds `yaml:"peep"`
	Vte   *Bounds `yaml:"vte"`
}

// FileSource watches a thresholds file and applies each saved revision to the
// alarm evaluator as one atomic propose-and-confirm. A malformed revision is
// discarded (the equivalent of cancel) and the previously confirmed bounds
// stay in force.
type FileSource struct {
	path   string
	alarms *alarm.Evaluator
	log    *zap.Logger
}

func NewFileSource(path string, alarms *alarm.Evaluator, log *zap.Logger) *FileSource {
	return &FileSource{path: path, alarms: alarms, log: log}
}

// Run applies the current file contents once, then watches for writes until
// the context is cancelled. A missing file at startup is not an error: the
// operator simply has not confirmed any thresholds yet.
func (f *FileSource) Run(ctx context.Context) error {
	if _, err := os.Stat(f.path); err == nil {
		if err := f.Apply(); err != nil {
			f.log.Warn("initial thresholds rejected", zap.Error(err))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which would drop a
	// watch on the file itself.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := f.Apply(); err != nil {
				f.log.Warn("thresholds rejected, keeping confirmed bounds", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("settings watcher error", zap.Error(err))
		}
	}
}

// Apply loads the thresholds file and confirms every bound that differs from
// the currently confirmed value. Unchanged parameters are left alone so a
// re-saved file does not arm parameters the operator never edited.
func (f *FileSource) Apply() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read thresholds: %w", err)
	}
	var doc File
	if err := yaml.Unmarshal(b, &doc); err != nil {
		f.alarms.Cancel()
		return fmt.Errorf("parse thresholds: %w", err)
	}

	f.propose(alarm.Ppeak, doc.Ppeak)
	f.propose(alarm.PEEP, doc.PEEP)
	f.propose(alarm.Vte, doc.Vte)
	f.alarms.Confirm()

	f.log.Info("thresholds confirmed",
		zap.Bool("ppeak", doc.Ppeak != nil),
		zap.Bool("peep", doc.PEEP != nil),
		zap.Bool("vte", doc.Vte != nil),
	)
	return nil
}

func (f *FileSource) propose(p alarm.Parameter, b *Bounds) {
	if b == nil {
		return
	}
	cur := f.alarms.Confirmed(p)
	var min, max *float64
	if b.Min != nil && (*b.Min != cur.Min || !cur.Armed) {
		min = b.Min
	}
	if b.Max != nil && (*b.Max != cur.Max || !cur.Armed) {
		max = b.Max
	}
	if min != nil || max != nil {
		f.alarms.Propose(p, min, max)
	}
}

// export dumps recorded trend samples and alarm history from the monitor's
// SQLite file to JSON and/or CSV.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vent-monitor/internal/logging"
	"vent-monitor/internal/output"
	"vent-monitor/internal/storage"
)

func main() {
	var (
		dbPath    string
		outJSON   string
		trendsCSV string
		alarmsCSV string
		limit     int
	)
	flag.StringVar(&dbPath, "db", "data/monitor.sqlite", "path to the monitor database")
	flag.StringVar(&outJSON, "json", "", "path to write a combined JSON export (optional)")
	flag.StringVar(&trendsCSV, "trends-csv", "", "path to write trend rows as CSV (optional)")
	flag.StringVar(&alarmsCSV, "alarms-csv", "", "path to write alarm rows as CSV (optional)")
	flag.IntVar(&limit, "limit", 0, "max rows per table, newest first (0 = all)")
	flag.Parse()

	log, err := logging.New("info", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if outJSON == "" && trendsCSV == "" && alarmsCSV == "" {
		log.Fatal("no output specified: set -json, -trends-csv and/or -alarms-csv")
	}

	rec, err := storage.Open(storage.Options{Path: dbPath}, log)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer rec.Close()

	trends, err := rec.RecentTrends(limit)
	if err != nil {
		log.Fatal("read trends", zap.Error(err))
	}
	alarms, err := rec.AlarmHistory(limit)
	if err != nil {
		log.Fatal("read alarms", zap.Error(err))
	}

	if outJSON != "" {
		if err := output.WriteJSON(outJSON, output.Export{Trends: trends, Alarms: alarms}); err != nil {
			log.Error("write json", zap.Error(err))
		}
	}
	if trendsCSV != "" {
		if err := output.WriteTrendsCSV(trendsCSV, trends); err != nil {
			log.Error("write trends csv", zap.Error(err))
		}
	}
	if alarmsCSV != "" {
		if err := output.WriteAlarmsCSV(alarmsCSV, alarms); err != nil {
			log.Error("write alarms csv", zap.Error(err))
		}
	}

	log.Info("export complete",
		zap.Int("trends", len(trends)),
		zap.Int("alarms", len(alarms)),
	)
}

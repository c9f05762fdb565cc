package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"vent-monitor/internal/alarm"
	"vent-monitor/internal/breath"
	"vent-monitor/internal/config"
	"vent-monitor/internal/logging"
	"vent-monitor/internal/pipeline"
	"vent-monitor/internal/protocol"
	"vent-monitor/internal/sensor"
	"vent-monitor/internal/settings"
	"vent-monitor/internal/stats"
	"vent-monitor/internal/storage"
	"vent-monitor/internal/utils"
)

func main() {
	var (
		cfgPath   string
		synthetic bool
	)
	flag.StringVar(&cfgPath, "config", "config/monitor.yaml", "path to YAML config")
	flag.BoolVar(&synthetic, "synthetic", false, "force the synthetic sample source")
	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if synthetic {
		cfg.Source = "synthetic"
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("monitor failed", zap.Error(err))
	}
}

// loadConfig falls back to built-in defaults when no config file exists,
// so `monitor -synthetic` works out of the box.
func loadConfig(path string) (config.Root, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(cfg config.Root, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closePort, err := openSource(cfg, log)
	if err != nil {
		// Inability to open the transport is the one fatal startup error.
		return err
	}
	if closePort != nil {
		defer closePort()
	}

	sink := pipeline.MultiSink{pipeline.NewLogSink(log)}
	if cfg.Storage.Enabled {
		rec, err := storage.Open(storage.Options{
			Path:     cfg.Storage.DBPath,
			MaxQueue: cfg.Storage.MaxQueue,
		}, log)
		if err != nil {
			log.Warn("storage init failed, continuing without recording", zap.Error(err))
		} else {
			defer rec.Close()
			sink = append(sink, rec)
		}
	}

	p := pipeline.New(
		pipeline.Options{
			TickInterval: cfg.Sampling.TickInterval,
			EmitEvery:    cfg.Sampling.EmitEvery,
		},
		source,
		breath.NewDetector(cfg.Breath.MinDurationTicks),
		stats.NewEngine(stats.Capacities{
			DisplayBuffer: cfg.Sampling.DisplayBuffer,
			Ppeak:         cfg.Windows.Ppeak,
			PEEP:          cfg.Windows.PEEP,
			Vte:           cfg.Windows.Vte,
		}),
		alarm.NewEvaluator(),
		sink,
		log,
	)

	if cfg.Settings.ThresholdsFile != "" {
		src := settings.NewFileSource(cfg.Settings.ThresholdsFile, p.Alarms(), log)
		go func() {
			if err := src.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("settings source stopped", zap.Error(err))
			}
		}()
	}

	// SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Info("received signal, shutting down", zap.String("signal", s.String()))
		cancel()
	}()

	log.Info("monitor running",
		zap.String("source", cfg.Source),
		zap.Duration("tick", cfg.Sampling.TickInterval),
	)
	if err := p.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// openSource builds the configured sample source. For hardware it opens the
// serial port, initializes the flow sensor and wires the codec.
func openSource(cfg config.Root, log *zap.Logger) (sensor.Source, func(), error) {
	if cfg.Source == "synthetic" {
		return sensor.NewSynthetic(cfg.Sampling.Seed), nil, nil
	}

	port, err := utils.OpenSerial(utils.SerialParams{
		Address:  cfg.Serial.Port,
		BaudRate: cfg.Serial.BaudRate,
		DataBits: cfg.Serial.DataBits,
		StopBits: cfg.Serial.StopBits,
		Parity:   cfg.Serial.Parity,
		Timeout:  cfg.Serial.Timeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open serial %s: %w", cfg.Serial.Port, err)
	}

	codec := protocol.NewCodec(port, cfg.Serial.BusAddress)
	ok, err := codec.InitFlowSensor()
	if err != nil {
		closePort(port, log)
		return nil, nil, fmt.Errorf("flow sensor init: %w", err)
	}
	if !ok {
		if cfg.Serial.RequireInit {
			closePort(port, log)
			return nil, nil, fmt.Errorf("flow sensor init: %w", protocol.ErrProtocolMismatch)
		}
		log.Warn("flow sensor init echo mismatch, continuing")
	}

	return sensor.NewHardware(codec), func() { closePort(port, log) }, nil
}

func closePort(port io.Closer, log *zap.Logger) {
	if err := port.Close(); err != nil {
		log.Warn("close serial port", zap.Error(err))
	}
}

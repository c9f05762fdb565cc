// mockcable emulates the sensor cable for bench use: it serves the frame
// protocol over TCP or a (virtual) serial port and answers pressure/flow
// reads from a synthetic breathing waveform.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vent-monitor/internal/logging"
	"vent-monitor/internal/protocol"
	"vent-monitor/internal/sensor"
	"vent-monitor/internal/utils"
)

func main() {
	var (
		listen    string
		serial    string
		socatPeer string
		interval  time.Duration
		seed      int64
	)
	flag.StringVar(&listen, "listen", "", "serve the protocol on a TCP address, e.g. 127.0.0.1:5030")
	flag.StringVar(&serial, "serial", "", "serve the protocol on a serial port path")
	flag.StringVar(&socatPeer, "socat-peer", "", "spawn a socat pty pair; the monitor connects to this path")
	flag.DurationVar(&interval, "interval", 50*time.Millisecond, "waveform update interval")
	flag.Int64Var(&seed, "seed", 1, "waveform noise seed")
	flag.Parse()

	log, err := logging.New("info", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if (listen == "") == (serial == "") {
		log.Fatal("exactly one of -listen or -serial is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		log.Info("shutting down", zap.String("signal", s.String()))
		cancel()
	}()

	cable := newCable(seed)
	go cable.runWaveform(ctx, interval)

	if listen != "" {
		err = serveTCP(ctx, listen, cable, log)
	} else {
		err = serveSerial(ctx, serial, socatPeer, cable, log)
	}
	if err != nil && ctx.Err() == nil {
		log.Fatal("mockcable failed", zap.Error(err))
	}
}

// cable holds the emulated sensor state behind a lock; the waveform ticker
// and every connection handler share it.
type cable struct {
	mu       sync.RWMutex
	synth    *sensor.Synthetic
	pressure float64
	flow     float64
	heaterOn bool
	tempRaw  uint16
}

func newCable(seed int64) *cable {
	return &cable{synth: sensor.NewSynthetic(seed), tempRaw: 414}
}

func (c *cable) runWaveform(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s, _ := c.synth.Next()
			c.mu.Lock()
			c.pressure = s.Pressure
			c.flow = s.Flow
			c.mu.Unlock()
		}
	}
}

// handleStream answers command frames on one connection until it closes.
func (c *cable) handleStream(rw io.ReadWriter) error {
	head := make([]byte, 3) // address, opcode, payload length
	for {
		if _, err := io.ReadFull(rw, head); err != nil {
			return err
		}
		payload := make([]byte, int(head[2])+1) // payload + trailer
		if _, err := io.ReadFull(rw, payload); err != nil {
			return err
		}
		frame := append(append([]byte{}, head...), payload...)
		resp := c.respond(frame)
		if resp == nil {
			continue // unknown opcode: stay silent like the real cable
		}
		if _, err := rw.Write(resp); err != nil {
			return err
		}
	}
}

func (c *cable) respond(frame []byte) []byte {
	addr := frame[0]
	op := protocol.Opcode(frame[1])

	switch op {
	case protocol.OpPressure:
		c.mu.RLock()
		p := c.pressure
		c.mu.RUnlock()
		return protocol.EncodePressureResponse(addr, p)
	case protocol.OpFlow:
		c.mu.RLock()
		f := c.flow
		c.mu.RUnlock()
		return protocol.EncodeFlowResponse(addr, f)
	case protocol.OpTemperature, protocol.OpForceTempUpdate:
		c.mu.RLock()
		raw := c.tempRaw
		c.mu.RUnlock()
		return protocol.EncodeTemperatureResponse(addr, raw)
	case protocol.OpInitFlowSensor:
		return frame // byte-exact echo is the success acknowledgment
	case protocol.OpHeaterState:
		if len(frame) == 5 { // set variant carries a payload byte
			c.mu.Lock()
			c.heaterOn = frame[3] == 0x01
			c.mu.Unlock()
		}
		c.mu.RLock()
		on := byte(0)
		if c.heaterOn {
			on = 1
		}
		c.mu.RUnlock()
		return []byte{addr, byte(op), 0x01, on, 0x00}
	default:
		n, ok := protocol.ResponseLen(op)
		if !ok {
			return nil
		}
		// Remaining opcodes (versions, resets, calibration registers) get a
		// fixed-pattern response of the right size.
		resp := make([]byte, n)
		resp[0] = addr
		resp[1] = byte(op)
		for i := 2; i < n; i++ {
			resp[i] = byte(i)
		}
		return resp
	}
}

func serveTCP(ctx context.Context, addr string, c *cable, log *zap.Logger) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	defer ln.Close()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	log.Info("mock cable listening", zap.String("addr", addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		log.Info("monitor connected", zap.String("remote", conn.RemoteAddr().String()))
		go func() {
			defer conn.Close()
			if err := c.handleStream(conn); err != nil && err != io.EOF {
				log.Warn("connection closed", zap.Error(err))
			}
		}()
	}
}

func serveSerial(ctx context.Context, path, socatPeer string, c *cable, log *zap.Logger) error {
	if socatPeer != "" {
		cmd := utils.BuildSocatPairCmd(ctx, utils.SocatPair{Link: path, Peer: socatPeer})
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("spawn socat: %w", err)
		}
		defer cmd.Process.Kill()
		// Give socat a moment to create the pty links.
		time.Sleep(500 * time.Millisecond)
		log.Info("virtual serial pair ready",
			zap.String("cable", path),
			zap.String("monitor", socatPeer),
		)
	}

	port, err := utils.OpenSerial(utils.SerialParams{Address: path, Timeout: time.Hour})
	if err != nil {
		return fmt.Errorf("open serial %s: %w", path, err)
	}
	defer port.Close()
	log.Info("mock cable serving", zap.String("port", path))

	errCh := make(chan error, 1)
	go func() { errCh <- c.handleStream(port) }()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

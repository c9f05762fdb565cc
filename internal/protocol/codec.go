package protocol

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrTransport marks I/O failures on the serial link: write errors, read
// timeouts and short reads. Callers treat these as recoverable and keep the
// previous valid sample for the tick.
var ErrTransport = errors.New("sensor transport failure")

// ErrProtocolMismatch marks a response that arrived complete but does not
// match the expected byte pattern (flow-sensor init echo).
var ErrProtocolMismatch = errors.New("unexpected sensor response")

// Pressure transform constants from the cable vendor calibration sheet.
const (
	pressureZeroCount = 1638
	pressureCountSpan = 32.7675
	pressureBaseline  = 200
	cmH2OPerMbar      = 1.01972
)

// Codec issues command frames on a serial transport and decodes the fixed
// size responses into engineering units. Every operation is a synchronous
// write-then-read; the transport's own timeout bounds the read.
type Codec struct {
	rw   io.ReadWriter
	addr byte
}

func NewCodec(rw io.ReadWriter, addr byte) *Codec {
	return &Codec{rw: rw, addr: addr}
}

// roundTrip writes the zero-payload frame for op and reads exactly the
// expected number of response bytes.
func (c *Codec) roundTrip(op Opcode) ([]byte, error) {
	cmd, respLen, err := Command(c.addr, op)
	if err != nil {
		return nil, err
	}
	return c.exchange(cmd, respLen)
}

func (c *Codec) exchange(cmd []byte, respLen int) ([]byte, error) {
	if _, err := c.rw.Write(cmd); err != nil {
		return nil, fmt.Errorf("%w: write opcode 0x%02X: %v", ErrTransport, cmd[1], err)
	}
	resp := make([]byte, respLen)
	if _, err := io.ReadFull(c.rw, resp); err != nil {
		return nil, fmt.Errorf("%w: read opcode 0x%02X: %v", ErrTransport, cmd[1], err)
	}
	return resp, nil
}

// reversed returns the response bytes in reverse order. The cable transmits
// multi-byte counts least-significant-last relative to the frame trailer, so
// all numeric decodes work on the reversed sequence.
func reversed(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[len(data)-1-i] = b
	}
	return out
}

// Pressure reads the airway pressure sensor and returns cmH2O.
func (c *Codec) Pressure() (float64, error) {
	data, err := c.roundTrip(OpPressure)
	if err != nil {
		return 0, err
	}
	rev := reversed(data)
	dp := binary.BigEndian.Uint16(rev[1:3])
	p := cmH2OPerMbar * ((float64(dp)-pressureZeroCount)/pressureCountSpan - pressureBaseline)
	return p, nil
}

// Flow reads the flow sensor and returns L/min. The raw count is an unsigned
// 32-bit value carrying a two's-complement signed reading in thousandths.
func (c *Codec) Flow() (float64, error) {
	data, err := c.roundTrip(OpFlow)
	if err != nil {
		return 0, err
	}
	rev := reversed(data)
	f := int64(binary.BigEndian.Uint32(rev[1:5]))
	if f >= 1<<31 {
		f -= 1 << 32
	}
	return float64(f) / 1000, nil
}

// Temperature returns the raw 16-bit temperature count. The board exposes
// scale and offset registers but the monitor never applies them to the live
// reading, so the count is passed through unscaled.
func (c *Codec) Temperature() (uint16, error) {
	data, err := c.roundTrip(OpTemperature)
	if err != nil {
		return 0, err
	}
	rev := reversed(data)
	return binary.BigEndian.Uint16(rev[1:3]), nil
}

// ForceTemperatureUpdate triggers an on-board recalculation and returns the
// refreshed raw count.
func (c *Codec) ForceTemperatureUpdate() (uint16, error) {
	data, err := c.roundTrip(OpForceTempUpdate)
	if err != nil {
		return 0, err
	}
	rev := reversed(data)
	return binary.BigEndian.Uint16(rev[1:3]), nil
}

// InitFlowSensor starts the flow sensor. The cable acknowledges by echoing
// the command byte-exactly; any complete-but-different response reports
// ok=false so the caller can decide whether to abort startup.
func (c *Codec) InitFlowSensor() (bool, error) {
	cmd, respLen, err := Command(c.addr, OpInitFlowSensor)
	if err != nil {
		return false, err
	}
	resp, err := c.exchange(cmd, respLen)
	if err != nil {
		return false, err
	}
	return bytes.Equal(cmd, resp), nil
}

// SoftwareVersion returns the cable firmware version response as hex.
func (c *Codec) SoftwareVersion() (string, error) { return c.hexOp(OpSoftwareVersion) }

// HardwareVersion returns the cable hardware version response as hex.
func (c *Codec) HardwareVersion() (string, error) { return c.hexOp(OpHardwareVersion) }

// Test issues the link test command and returns the response as hex.
func (c *Codec) Test() (string, error) { return c.hexOp(OpTest) }

// RawFlow returns the uncorrected flow count response as hex.
func (c *Codec) RawFlow() (string, error) { return c.hexOp(OpRawFlow) }

// FlowScale returns the flow calibration scale response as hex.
func (c *Codec) FlowScale() (string, error) { return c.hexOp(OpFlowScale) }

// FlowOffset returns the flow calibration offset response as hex.
func (c *Codec) FlowOffset() (string, error) { return c.hexOp(OpFlowOffset) }

// TemperatureScale returns the temperature scale response as hex.
func (c *Codec) TemperatureScale() (string, error) { return c.hexOp(OpTemperatureScale) }

// TemperatureOffset returns the temperature offset response as hex.
func (c *Codec) TemperatureOffset() (string, error) { return c.hexOp(OpTemperatureOffset) }

// HeaterState reads the heater on/off register and returns the response as hex.
func (c *Codec) HeaterState() (string, error) { return c.hexOp(OpHeaterState) }

// HeaterPower reads the heater drive percentage and returns the response as hex.
func (c *Codec) HeaterPower() (string, error) { return c.hexOp(OpHeaterPower) }

// SetHeaterState switches the sensor heater on or off.
func (c *Codec) SetHeaterState(on bool) (string, error) {
	cmd, respLen := HeaterSetCommand(c.addr, on)
	resp, err := c.exchange(cmd, respLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(resp), nil
}

// HardResetBoard hard-resets the comm board on the cable.
func (c *Codec) HardResetBoard() (string, error) { return c.hexOp(OpResetBoard) }

// HardResetSensor hard-resets the attached sensors.
func (c *Codec) HardResetSensor() (string, error) { return c.hexOp(OpResetSensor) }

// SoftResetSensor soft-resets the attached sensors.
func (c *Codec) SoftResetSensor() (string, error) { return c.hexOp(OpSoftResetSensor) }

func (c *Codec) hexOp(op Opcode) (string, error) {
	data, err := c.roundTrip(op)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

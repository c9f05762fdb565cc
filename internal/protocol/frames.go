package protocol

import "fmt"

// Opcode identifies one command understood by the sensor cable.
type Opcode byte

const (
	OpSoftwareVersion   Opcode = 0x01
	OpHardwareVersion   Opcode = 0x02
	OpTest              Opcode = 0x05
	OpPressure          Opcode = 0x07
	OpResetBoard        Opcode = 0x0B
	OpResetSensor       Opcode = 0x0C
	OpSoftResetSensor   Opcode = 0x0D
	OpInitFlowSensor    Opcode = 0x0E
	OpFlow              Opcode = 0x10
	OpRawFlow           Opcode = 0x11
	OpFlowScale         Opcode = 0x12
	OpFlowOffset        Opcode = 0x13
	OpHeaterState       Opcode = 0x14
	OpHeaterPower       Opcode = 0x15
	OpTemperature       Opcode = 0x16
	OpTemperatureScale  Opcode = 0x18
	OpTemperatureOffset Opcode = 0x19
	OpForceTempUpdate   Opcode = 0x1B
)

// frameSpec describes the fixed zero-payload request frame for one opcode and
// the exact number of response bytes the cable sends back. The trailer is a
// per-opcode literal from the vendor protocol, not a computed checksum.
type frameSpec struct {
	trailer byte
	respLen int
}

var frames = map[Opcode]frameSpec{
	OpSoftwareVersion:   {trailer: 0xB2, respLen: 7},
	OpHardwareVersion:   {trailer: 0x9F, respLen: 6},
	OpTest:              {trailer: 0x31, respLen: 6},
	OpPressure:          {trailer: 0xE8, respLen: 6},
	OpResetBoard:        {trailer: 0x5C, respLen: 4},
	OpResetSensor:       {trailer: 0xF2, respLen: 4},
	OpSoftResetSensor:   {trailer: 0x06, respLen: 4},
	OpInitFlowSensor:    {trailer: 0x2B, respLen: 4},
	OpFlow:              {trailer: 0x28, respLen: 8},
	OpRawFlow:           {trailer: 0xDC, respLen: 6},
	OpFlowScale:         {trailer: 0xF1, respLen: 6},
	OpFlowOffset:        {trailer: 0x05, respLen: 6},
	OpHeaterState:       {trailer: 0xAB, respLen: 5},
	OpHeaterPower:       {trailer: 0x5F, respLen: 5},
	OpTemperature:       {trailer: 0x72, respLen: 6},
	OpTemperatureScale:  {trailer: 0x1F, respLen: 6},
	OpTemperatureOffset: {trailer: 0xEB, respLen: 6},
	OpForceTempUpdate:   {trailer: 0x32, respLen: 6},
}

// Heater set frames are the only commands carrying a payload byte. Each
// payload value has its own literal trailer.
const (
	heaterOffTrailer = 0xE2
	heaterOnTrailer  = 0xD3
	heaterSetRespLen = 5
)

// Command builds the request frame for op addressed to addr and returns the
// frame together with the expected response length.
func Command(addr byte, op Opcode) ([]byte, int, error) {
	spec, ok := frames[op]
	if !ok {
		return nil, 0, fmt.Errorf("unknown opcode 0x%02X", byte(op))
	}
	return []byte{addr, byte(op), 0x00, spec.trailer}, spec.respLen, nil
}

// HeaterSetCommand builds the heater on/off frame addressed to addr.
func HeaterSetCommand(addr byte, on bool) ([]byte, int) {
	if on {
		return []byte{addr, byte(OpHeaterState), 0x01, 0x01, heaterOnTrailer}, heaterSetRespLen
	}
	return []byte{addr, byte(OpHeaterState), 0x01, 0x00, heaterOffTrailer}, heaterSetRespLen
}

// ResponseLen reports the expected response size for op.
func ResponseLen(op Opcode) (int, bool) {
	spec, ok := frames[op]
	if !ok {
		return 0, false
	}
	return spec.respLen, true
}

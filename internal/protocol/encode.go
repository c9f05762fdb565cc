package protocol

import "math"

// Response encoders for the cable side of the protocol. The monitor never
// sends responses; these back the mock cable and round-trip tests.

// EncodePressureResponse builds the 6-byte pressure response whose count
// decodes to p cmH2O (inverse of the Codec.Pressure transform, clamped to the
// 16-bit counter range).
func EncodePressureResponse(addr byte, p float64) []byte {
	count := (p/cmH2OPerMbar+pressureBaseline)*pressureCountSpan + pressureZeroCount
	dp := uint16(math.Min(math.Max(math.Round(count), 0), math.MaxUint16))
	data := make([]byte, 6)
	data[0] = addr
	data[1] = byte(OpPressure)
	data[3] = byte(dp)
	data[4] = byte(dp >> 8)
	return data
}

// EncodeFlowResponse builds the 8-byte flow response whose count decodes to f
// L/min, using the two's-complement thousandths encoding.
func EncodeFlowResponse(addr byte, f float64) []byte {
	u := uint32(int32(math.Round(f * 1000)))
	data := make([]byte, 8)
	data[0] = addr
	data[1] = byte(OpFlow)
	data[3] = byte(u)
	data[4] = byte(u >> 8)
	data[5] = byte(u >> 16)
	data[6] = byte(u >> 24)
	return data
}

// EncodeTemperatureResponse builds a 6-byte temperature response carrying the
// raw count.
func EncodeTemperatureResponse(addr byte, raw uint16) []byte {
	data := make([]byte, 6)
	data[0] = addr
	data[1] = byte(OpTemperature)
	data[3] = byte(raw)
	data[4] = byte(raw >> 8)
	return data
}

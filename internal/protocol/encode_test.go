package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPressureRoundTrip(t *testing.T) {
	for _, p := range []float64{-20, 0, 5.5, 15, 44.9} {
		port := &fakePort{}
		port.resp.Write(EncodePressureResponse(0x01, p))
		got, err := NewCodec(port, 0x01).Pressure()
		require.NoError(t, err)
		// One count is ~0.031 cmH2O of quantization.
		assert.InDelta(t, p, got, 0.05, "pressure %v", p)
	}
}

func TestFlowRoundTrip(t *testing.T) {
	for _, f := range []float64{-30, -0.001, 0, 0.001, 12.5} {
		port := &fakePort{}
		port.resp.Write(EncodeFlowResponse(0x01, f))
		got, err := NewCodec(port, 0x01).Flow()
		require.NoError(t, err)
		assert.InDelta(t, f, got, 1e-9, "flow %v", f)
	}
}

func TestTemperatureRoundTrip(t *testing.T) {
	port := &fakePort{}
	port.resp.Write(EncodeTemperatureResponse(0x01, 414))
	got, err := NewCodec(port, 0x01).Temperature()
	require.NoError(t, err)
	assert.Equal(t, uint16(414), got)
}

package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticDeterministic(t *testing.T) {
	a := NewSynthetic(7)
	b := NewSynthetic(7)
	for i := 0; i < 250; i++ {
		sa, err := a.Next()
		require.NoError(t, err)
		sb, err := b.Next()
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	}
}

func TestSyntheticPhaseWrap(t *testing.T) {
	s := NewSynthetic(1)
	for i := 0; i < 99; i++ {
		_, err := s.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, 99, s.phase)
	_, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, s.phase)
}

func TestSyntheticAmplitudeBounds(t *testing.T) {
	s := NewSynthetic(42)
	for i := 0; i < 1000; i++ {
		v, err := s.Next()
		require.NoError(t, err)
		// flow in [-33, 13], pressure in [4, 26] at default amplitudes
		assert.GreaterOrEqual(t, v.Flow, -33.0)
		assert.LessOrEqual(t, v.Flow, 13.0)
		assert.GreaterOrEqual(t, v.Pressure, 4.0)
		assert.LessOrEqual(t, v.Pressure, 26.0)
	}
}

func TestSyntheticSequenceIncrements(t *testing.T) {
	s := NewSynthetic(3)
	first, _ := s.Next()
	second, _ := s.Next()
	assert.Equal(t, first.Seq+1, second.Seq)
}

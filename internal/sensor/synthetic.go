package sensor

import (
	"math"
	"math/rand"
)

// Synthetic generates a deterministic breathing waveform: cosine flow and
// pressure curves with uniform noise, one full cycle every 100 ticks. A fixed
// seed reproduces the exact sample stream.
type Synthetic struct {
	phase int
	rng   *rand.Rand
	seq   uint64
}

func NewSynthetic(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

func (s *Synthetic) Next() (Sample, error) {
	theta := float64(s.phase) / 50 * math.Pi
	flow := 20*math.Cos(theta) - 10 + s.uniform(-3, 3)
	pressure := 5*math.Cos(theta) + 15 + s.uniform(-6, 6)

	if s.phase >= 99 {
		s.phase = 0
	} else {
		s.phase++
	}
	s.seq++
	return Sample{Pressure: pressure, Flow: flow, Seq: s.seq}, nil
}

func (s *Synthetic) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine32 generates a deterministic float32 sine wave.
func DeterministicSine32(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise32 generates white noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise32(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Impulse32 generates a unit impulse at the given position.
func Impulse32(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC32 generates a constant-valued signal.
func DC32(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}
	return out
}

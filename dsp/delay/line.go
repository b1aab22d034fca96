// Package delay implements the fixed-capacity circular buffer behind the
// delay filter.
package delay

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
)

// DefaultCapacity is the buffer length used by the delay filter.
const DefaultCapacity = 1024

// ErrCapacity is returned by New for capacities that are not a power of two
// of at least 2.
var ErrCapacity = errors.New("delay: capacity must be a power of two >= 2")

// Line is a circular delay line holding float32 samples.
//
// The write position is an unsigned counter reduced with a power-of-two mask,
// so it wraps safely when it overflows.
type Line struct {
	samples  []float32
	mask     uint
	writePos uint
	delay    int
}

// New returns a delay line with the given capacity and a delay of 1 sample.
func New(capacity int) (*Line, error) {
	if capacity < 2 || bits.OnesCount(uint(capacity)) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}

	return &Line{
		samples: make([]float32, capacity),
		mask:    uint(capacity - 1),
		delay:   1,
	}, nil
}

// Len returns the buffer capacity.
func (l *Line) Len() int {
	return len(l.samples)
}

// Delay returns the configured delay in samples.
func (l *Line) Delay() int {
	return l.delay
}

// ClampDelay limits d to [1, capacity-1] and reports whether it changed.
func ClampDelay(d, capacity int) (int, bool) {
	switch {
	case d < 1:
		return 1, true
	case d > capacity-1:
		return capacity - 1, true
	default:
		return d, false
	}
}

// SetDelay sets the delay in samples, clamped to [1, Len()-1]. It returns the
// delay in effect and whether clamping happened.
func (l *Line) SetDelay(d int) (int, bool) {
	d, clamped := ClampDelay(d, len(l.samples))
	l.delay = d
	return d, clamped
}

// SamplesFromMillis converts a delay in milliseconds to the nearest whole
// number of samples at sampleRate. Negative and non-finite inputs yield 0.
func SamplesFromMillis(ms, sampleRate float64) int {
	n := math.Round(ms / 1000 * sampleRate)
	if !(n > 0) || math.IsInf(n, 1) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// Process shifts src by the configured delay into dst. For each sample the
// input is stored before the delayed value is read, and since the delay is
// at least one sample dst may alias src.
func (l *Line) Process(dst, src []float32) {
	n := len(src)
	if n == 0 {
		return
	}
	dst = dst[:n]

	pos := l.writePos
	delay := uint(l.delay)

	for j := range n {
		p := pos + uint(j)
		l.samples[p&l.mask] = src[j]
		dst[j] = l.samples[(p-delay)&l.mask]
	}

	l.writePos = pos + uint(n)
}

// Reset clears the buffer and rewinds the write position. The delay is kept.
func (l *Line) Reset() {
	core.Zero(l.samples)
	l.writePos = 0
}

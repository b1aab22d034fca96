//nolint:funcorder
package biquad

import (
	"sync"

	archregistry "github.com/cwbudde/algo-rtfilter/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The recurrence evaluated per sample is
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
//
// First-order sections have B2 = A2 = 0.
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Section is the recurrence history of one biquad section on one channel.
// The zero value is a section with cleared history.
type Section struct {
	x1, x2 float64
	y1, y2 float64
}

var (
	applyImpl     archregistry.ApplyFn
	applyInitOnce sync.Once
)

// NewSection returns a Section with zero history.
func NewSection() *Section {
	return &Section{}
}

// ProcessSample filters one input sample with c and returns the output.
func (s *Section) ProcessSample(c *Coefficients, x float64) float64 {
	y := c.B0*x + c.B1*s.x1 + c.B2*s.x2 - c.A1*s.y1 - c.A2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y

	return y
}

// Apply filters src into dst with c. dst must be at least as long as src
// and may be the same slice as src; partially overlapping slices are not
// supported. History carries over to the next call. Zero-alloc.
func (s *Section) Apply(c *Coefficients, dst, src []float32) {
	if len(src) == 0 {
		return
	}

	_ = dst[len(src)-1] // bounds check hint

	applyInitOnce.Do(initApplyKernel)

	st := applyImpl(archregistry.Coefficients{
		B0: c.B0,
		B1: c.B1,
		B2: c.B2,
		A1: c.A1,
		A2: c.A2,
	}, archregistry.State{X1: s.x1, X2: s.x2, Y1: s.y1, Y2: s.y2}, dst, src)

	s.x1, s.x2, s.y1, s.y2 = st.X1, st.X2, st.Y1, st.Y2
}

// ProcessBlock filters buf in-place with c. Zero-alloc.
func (s *Section) ProcessBlock(c *Coefficients, buf []float32) {
	s.Apply(c, buf, buf)
}

func initApplyKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no Apply kernel registered (missing generic fallback?)")
	}

	if entry.Apply == nil {
		panic("biquad: selected kernel missing Apply")
	}

	applyImpl = entry.Apply
}

// Reset clears the history to zero.
func (s *Section) Reset() {
	*s = Section{}
}

// State returns the current history [x1, x2, y1, y2].
func (s *Section) State() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}

// SetState restores a previously saved history.
func (s *Section) SetState(state [4]float64) {
	s.x1, s.x2, s.y1, s.y2 = state[0], state[1], state[2], state[3]
}

package generic

import (
	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "generic",
		SIMDLevel: cpu.SIMDNone,
		Priority:  0,
		Apply:     apply,
	})
}

func apply(c registry.Coefficients, st registry.State, dst, src []float32) registry.State {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2, y1, y2 := st.X1, st.X2, st.Y1, st.Y2

	for i := range src {
		// src[i] must be loaded before dst[i] is stored: they may alias.
		x0 := float64(src[i])
		y0 := b0*x0 + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x0
		y2, y1 = y1, y0
		dst[i] = float32(y0)
	}

	return registry.State{X1: x1, X2: x2, Y1: y1, Y2: y2}
}

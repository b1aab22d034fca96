//go:build amd64 && !purego

package unrolled

import (
	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:      "unrolled4",
		SIMDLevel: cpu.SIMDAVX2,
		Priority:  20,
		Apply:     apply,
	})
}

// apply is a 4x-unrolled scalar kernel. It uses no vector instructions; the
// AVX2 gate only selects it on the wide-issue cores that benefit from the
// unroll. Each group loads all four inputs before storing any output, so an
// exactly aliased dst/src pair is safe.
func apply(c registry.Coefficients, st registry.State, dst, src []float32) registry.State {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2, y1, y2 := st.X1, st.X2, st.Y1, st.Y2

	i := 0
	n := len(src)
	for ; i+3 < n; i += 4 {
		in0 := float64(src[i])
		in1 := float64(src[i+1])
		in2 := float64(src[i+2])
		in3 := float64(src[i+3])

		out0 := b0*in0 + b1*x1 + b2*x2 - a1*y1 - a2*y2
		out1 := b0*in1 + b1*in0 + b2*x1 - a1*out0 - a2*y1
		out2 := b0*in2 + b1*in1 + b2*in0 - a1*out1 - a2*out0
		out3 := b0*in3 + b1*in2 + b2*in1 - a1*out2 - a2*out1

		dst[i] = float32(out0)
		dst[i+1] = float32(out1)
		dst[i+2] = float32(out2)
		dst[i+3] = float32(out3)

		x1, x2 = in3, in2
		y1, y2 = out3, out2
	}

	for ; i < n; i++ {
		x0 := float64(src[i])
		y0 := b0*x0 + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x0
		y2, y1 = y1, y0
		dst[i] = float32(y0)
	}

	return registry.State{X1: x1, X2: x2, Y1: y1, Y2: y2}
}

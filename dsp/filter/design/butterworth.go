package design

import (
	"math"

	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad"
)

// Supported Butterworth cascade orders.
const (
	MinOrder = 1
	MaxOrder = 4
)

// ClampOrder limits order to [MinOrder, MaxOrder] and reports whether the
// value had to be changed.
func ClampOrder(order int) (int, bool) {
	switch {
	case order < MinOrder:
		return MinOrder, true
	case order > MaxOrder:
		return MaxOrder, true
	default:
		return order, false
	}
}

// ButterworthQ returns the section quality factor 1/(2*cos(theta)) for a
// pole angle theta.
func ButterworthQ(theta float64) float64 {
	return 1 / (2 * math.Cos(theta))
}

// ButterworthLowpass assembles a Butterworth lowpass cascade of the given
// order. The order is clamped to [MinOrder, MaxOrder]; the second return
// value reports whether clamping happened.
//
//	order 1: Lowpass1
//	order 2: Lowpass(Q(pi/4))
//	order 3: Lowpass1, then Lowpass(Q(pi/3))
//	order 4: Lowpass(Q(pi/8)), then Lowpass(Q(3pi/8))
func ButterworthLowpass(freq float64, order int, sampleRate float64) (biquad.Cascade, bool) {
	return butterworth(freq, order, sampleRate, Lowpass1, Lowpass)
}

// ButterworthHighpass is the highpass analogue of ButterworthLowpass, using
// the same pole-angle table.
func ButterworthHighpass(freq float64, order int, sampleRate float64) (biquad.Cascade, bool) {
	return butterworth(freq, order, sampleRate, Highpass1, Highpass)
}

type (
	firstOrderFn  func(freq, sampleRate float64) biquad.Coefficients
	secondOrderFn func(freq, q, sampleRate float64) biquad.Coefficients
)

func butterworth(freq float64, order int, sampleRate float64, first firstOrderFn, second secondOrderFn) (biquad.Cascade, bool) {
	order, clamped := ClampOrder(order)

	var (
		c   biquad.Cascade
		err error
	)

	switch order {
	case 1:
		c, err = biquad.NewCascade(1, first(freq, sampleRate))
	case 2:
		c, err = biquad.NewCascade(2, second(freq, ButterworthQ(math.Pi/4), sampleRate))
	case 3:
		c, err = biquad.NewCascade(3,
			first(freq, sampleRate),
			second(freq, ButterworthQ(math.Pi/3), sampleRate),
		)
	default:
		c, err = biquad.NewCascade(4,
			second(freq, ButterworthQ(math.Pi/8), sampleRate),
			second(freq, ButterworthQ(3*math.Pi/8), sampleRate),
		)
	}

	if err != nil {
		// Unreachable: every branch passes one or two stages.
		panic("design: " + err.Error())
	}

	return c, clamped
}

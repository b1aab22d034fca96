package design

import (
	"math"

	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad"
)

// LinkwitzRileyLowpass designs a fourth-order Linkwitz-Riley lowpass: two
// identical second-order Butterworth sections (Q = 1/sqrt(2)) in series.
// The response is -6.02 dB at freq.
func LinkwitzRileyLowpass(freq, sampleRate float64) biquad.Cascade {
	s := Lowpass(freq, 1/math.Sqrt2, sampleRate)
	c, _ := biquad.NewCascade(4, s, s)
	return c
}

// LinkwitzRileyHighpass is the highpass counterpart of LinkwitzRileyLowpass.
// At fourth order the two outputs are in phase, so their sum is allpass.
func LinkwitzRileyHighpass(freq, sampleRate float64) biquad.Cascade {
	s := Highpass(freq, 1/math.Sqrt2, sampleRate)
	c, _ := biquad.NewCascade(4, s, s)
	return c
}

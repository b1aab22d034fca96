package design

import (
	"math"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad"
)

const (
	// MinFrequency is the lower clamp bound for second-order designs, in Hz.
	MinFrequency = 1.0

	// MaxFrequencyRatio is the upper clamp bound for second-order designs,
	// as a fraction of the sample rate.
	MaxFrequencyRatio = 0.49
)

// ClampFrequency limits freq to [MinFrequency, MaxFrequencyRatio*sampleRate]
// and reports whether the value had to be changed.
func ClampFrequency(freq, sampleRate float64) (float64, bool) {
	clamped := core.Clamp(freq, MinFrequency, sampleRate*MaxFrequencyRatio)
	return clamped, clamped != freq
}

// Amplitude converts a shelf/peak gain in dB to the cookbook amplitude
// A = 10^(gainDB/40).
func Amplitude(gainDB float64) float64 {
	return math.Pow(10, gainDB/40)
}

// Peaking designs a peaking-EQ biquad with gain in dB.
func Peaking(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	cw, sw := angular(freq, sampleRate)
	alpha := sw / (2 * q)
	a := Amplitude(gainDB)

	return normalizeBiquad(
		1+alpha*a, -2*cw, 1-alpha*a,
		1+alpha/a, -2*cw, 1-alpha/a,
	)
}

// LowShelf designs a low-shelf biquad with gain in dB.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	cw, sw := angular(freq, sampleRate)
	alpha := sw / (2 * q)
	a := Amplitude(gainDB)
	beta := 2 * math.Sqrt(a) * alpha

	return normalizeBiquad(
		a*((a+1)-(a-1)*cw+beta),
		2*a*((a-1)-(a+1)*cw),
		a*((a+1)-(a-1)*cw-beta),
		(a+1)+(a-1)*cw+beta,
		-2*((a-1)+(a+1)*cw),
		(a+1)+(a-1)*cw-beta,
	)
}

// HighShelf designs a high-shelf biquad with gain in dB.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	cw, sw := angular(freq, sampleRate)
	alpha := sw / (2 * q)
	a := Amplitude(gainDB)
	beta := 2 * math.Sqrt(a) * alpha

	return normalizeBiquad(
		a*((a+1)+(a-1)*cw+beta),
		-2*a*((a-1)+(a+1)*cw),
		a*((a+1)+(a-1)*cw-beta),
		(a+1)-(a-1)*cw+beta,
		2*((a-1)-(a+1)*cw),
		(a+1)-(a-1)*cw-beta,
	)
}

// Lowpass designs a second-order lowpass biquad with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	cw, sw := angular(freq, sampleRate)
	alpha := sw / (2 * q)

	return normalizeBiquad(
		(1-cw)/2, 1-cw, (1-cw)/2,
		1+alpha, -2*cw, 1-alpha,
	)
}

// Highpass designs a second-order highpass biquad with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	cw, sw := angular(freq, sampleRate)
	alpha := sw / (2 * q)

	return normalizeBiquad(
		(1+cw)/2, -(1 + cw), (1+cw)/2,
		1+alpha, -2*cw, 1-alpha,
	)
}

// Lowpass1 designs a first-order lowpass section (B2 = A2 = 0).
//
// Unlike the second-order designers, freq is used as given.
func Lowpass1(freq, sampleRate float64) biquad.Coefficients {
	x := math.Tan(math.Pi * freq / sampleRate)
	a0 := x + 1

	return biquad.Coefficients{
		B0: x / a0,
		B1: x / a0,
		A1: (x - 1) / a0,
	}
}

// Highpass1 designs a first-order highpass section (B2 = A2 = 0).
//
// Unlike the second-order designers, freq is used as given.
func Highpass1(freq, sampleRate float64) biquad.Coefficients {
	x := math.Tan(math.Pi * freq / sampleRate)
	a0 := x + 1

	return biquad.Coefficients{
		B0: 1 / a0,
		B1: -1 / a0,
		A1: (x - 1) / a0,
	}
}

// angular returns cos(w0) and sin(w0) for the clamped frequency.
func angular(freq, sampleRate float64) (cw, sw float64) {
	f, _ := ClampFrequency(freq, sampleRate)
	w0 := 2 * math.Pi * f / sampleRate
	return math.Cos(w0), math.Sin(w0)
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}

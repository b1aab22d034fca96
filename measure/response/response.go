package response

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
	"github.com/cwbudde/algo-rtfilter/plugin"
)

// Errors returned by Measure and Response queries.
var (
	ErrFFTSize     = errors.New("response: fft size must be a power of two >= 2")
	ErrEmptyBand   = errors.New("response: no bins in frequency band")
	ErrNoResponse  = errors.New("response: empty response")
	ErrBindChannel = errors.New("response: cannot bind channel 0")
)

// Runner is the part of a plugin instance that Measure drives.
type Runner interface {
	Descriptor() *plugin.Descriptor
	BindAudio(port int, buf []float32) error
	Activate()
	Run(n int)
}

// Response is a one-sided magnitude spectrum with bins from DC to Nyquist.
type Response struct {
	SampleRate  float64
	Freqs       []float64 // bin centre frequencies in Hz
	Magnitude   []float64 // linear magnitude per bin
	MagnitudeDB []float64 // 20*log10(Magnitude)
}

// Measure activates r, runs an n-sample unit impulse through channel 0 in
// place and returns the magnitude spectrum of the captured output. n must
// be a power of two. Channel 0's ports are unbound again before returning.
func Measure(r Runner, sampleRate float64, n int) (*Response, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	if n < 2 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, n)
	}

	d := r.Descriptor()
	in, out := d.InputPort(0), d.OutputPort(0)

	buf := make([]float32, n)
	buf[0] = 1

	if err := r.BindAudio(in, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindChannel, err)
	}
	if err := r.BindAudio(out, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindChannel, err)
	}
	defer func() {
		_ = r.BindAudio(in, nil)
		_ = r.BindAudio(out, nil)
	}()

	r.Activate()
	r.Run(n)

	return FromImpulse(buf, sampleRate)
}

// FromImpulse returns the magnitude spectrum of an impulse response whose
// length is a power of two.
func FromImpulse(ir []float32, sampleRate float64) (*Response, error) {
	n := len(ir)
	if n < 2 || bits.OnesCount(uint(n)) != 1 {
		return nil, fmt.Errorf("%w: %d", ErrFFTSize, n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	src := make([]complex128, n)
	for i, v := range ir {
		src[i] = complex(float64(v), 0)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, src); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	res := &Response{
		SampleRate:  sampleRate,
		Freqs:       make([]float64, bins),
		Magnitude:   make([]float64, bins),
		MagnitudeDB: make([]float64, bins),
	}
	vecmath.Magnitude(res.Magnitude, re, im)

	binWidth := sampleRate / float64(n)
	for k := range bins {
		res.Freqs[k] = float64(k) * binWidth
		res.MagnitudeDB[k] = core.LinearToDB(res.Magnitude[k])
	}

	return res, nil
}

// At returns the dB magnitude at freq, interpolated linearly between the
// neighbouring bins. Frequencies outside [0, Nyquist] read the edge bins.
func (r *Response) At(freq float64) float64 {
	n := len(r.Freqs)
	if n == 0 {
		return 0
	}

	k := sort.SearchFloat64s(r.Freqs, freq)
	switch {
	case k == 0:
		return r.MagnitudeDB[0]
	case k >= n:
		return r.MagnitudeDB[n-1]
	}

	f0, f1 := r.Freqs[k-1], r.Freqs[k]
	t := (freq - f0) / (f1 - f0)
	return r.MagnitudeDB[k-1] + t*(r.MagnitudeDB[k]-r.MagnitudeDB[k-1])
}

// PassbandDB returns the largest dB magnitude of the bins in [lo, hi].
func (r *Response) PassbandDB(lo, hi float64) (float64, error) {
	first := sort.SearchFloat64s(r.Freqs, lo)
	last := sort.Search(len(r.Freqs), func(i int) bool { return r.Freqs[i] > hi })
	if first >= last {
		return 0, fmt.Errorf("%w: [%g, %g] Hz", ErrEmptyBand, lo, hi)
	}
	return floats.Max(r.MagnitudeDB[first:last]), nil
}

// Peak returns the frequency and dB magnitude of the loudest bin.
func (r *Response) Peak() (freq, db float64, err error) {
	if len(r.MagnitudeDB) == 0 {
		return 0, 0, ErrNoResponse
	}
	k := floats.MaxIdx(r.MagnitudeDB)
	return r.Freqs[k], r.MagnitudeDB[k], nil
}

// OctaveFrequencies returns start, 2*start, 4*start, ... up to and
// including stop.
func OctaveFrequencies(start, stop float64) []float64 {
	if start <= 0 {
		return nil
	}
	var out []float64
	for f := start; f <= stop; f *= 2 {
		out = append(out, f)
	}
	return out
}

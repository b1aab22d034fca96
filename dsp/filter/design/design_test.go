package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad"
)

const testSampleRate = 48000.0

// dBTolerance bounds the float64 rounding of MagnitudeDB on designed
// coefficients.
const dBTolerance = 1e-6

// nyquistClamp is the upper clamp bound at testSampleRate.
var nyquistClamp, _ = ClampFrequency(math.Inf(1), testSampleRate)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func coeffsEqual(a, b biquad.Coefficients, tol float64) bool {
	return almostEqual(a.B0, b.B0, tol) &&
		almostEqual(a.B1, b.B1, tol) &&
		almostEqual(a.B2, b.B2, tol) &&
		almostEqual(a.A1, b.A1, tol) &&
		almostEqual(a.A2, b.A2, tol)
}

func TestLowpassImpulseMatchesRecurrence(t *testing.T) {
	c := Lowpass(1000, 0.7071, testSampleRate)

	want := make([]float64, 5)
	want[0] = c.B0
	want[1] = c.B1 - c.A1*want[0]
	want[2] = c.B2 - c.A1*want[1] - c.A2*want[0]
	want[3] = -c.A1*want[2] - c.A2*want[1]
	want[4] = -c.A1*want[3] - c.A2*want[2]

	s := biquad.NewSection()
	for i, x := range []float64{1, 0, 0, 0, 0} {
		got := s.ProcessSample(&c, x)
		if !almostEqual(got, want[i], 1e-15) {
			t.Fatalf("y[%d] = %.17g, want %.17g", i, got, want[i])
		}
	}
}

func TestClampFrequency(t *testing.T) {
	tests := []struct {
		name    string
		freq    float64
		want    float64
		clamped bool
	}{
		{name: "inside", freq: 1000, want: 1000, clamped: false},
		{name: "zero", freq: 0, want: 1, clamped: true},
		{name: "negative", freq: -50, want: 1, clamped: true},
		{name: "lower bound", freq: 1, want: 1, clamped: false},
		{name: "above nyquist", freq: 30000, want: nyquistClamp, clamped: true},
		{name: "upper bound", freq: nyquistClamp, want: nyquistClamp, clamped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := ClampFrequency(tt.freq, testSampleRate)
			if got != tt.want || clamped != tt.clamped {
				t.Fatalf("ClampFrequency(%v) = (%v, %v), want (%v, %v)", tt.freq, got, clamped, tt.want, tt.clamped)
			}

			again, clampedAgain := ClampFrequency(got, testSampleRate)
			if again != got || clampedAgain {
				t.Fatalf("clamp not idempotent: %v -> %v", got, again)
			}
		})
	}
}

func TestSecondOrderDesignsClampFrequency(t *testing.T) {
	designs := map[string]func(freq float64) biquad.Coefficients{
		"lowpass":    func(f float64) biquad.Coefficients { return Lowpass(f, 0.7, testSampleRate) },
		"highpass":   func(f float64) biquad.Coefficients { return Highpass(f, 0.7, testSampleRate) },
		"peaking":    func(f float64) biquad.Coefficients { return Peaking(f, 6, 1, testSampleRate) },
		"low shelf":  func(f float64) biquad.Coefficients { return LowShelf(f, 6, 1, testSampleRate) },
		"high shelf": func(f float64) biquad.Coefficients { return HighShelf(f, 6, 1, testSampleRate) },
	}

	for name, design := range designs {
		t.Run(name, func(t *testing.T) {
			if !coeffsEqual(design(0), design(1), 0) {
				t.Fatal("design(0) should equal design(1 Hz)")
			}
			if !coeffsEqual(design(40000), design(nyquistClamp), 0) {
				t.Fatal("design(40 kHz) should equal design(0.49*fs)")
			}
		})
	}
}

func TestFirstOrderDesignsDoNotClamp(t *testing.T) {
	if coeffsEqual(Lowpass1(30000, testSampleRate), Lowpass1(nyquistClamp, testSampleRate), 1e-12) {
		t.Fatal("Lowpass1 clamped an out-of-range frequency")
	}
	if coeffsEqual(Highpass1(0.5, testSampleRate), Highpass1(1, testSampleRate), 1e-12) {
		t.Fatal("Highpass1 clamped a sub-1 Hz frequency")
	}
}

func TestFirstOrderShape(t *testing.T) {
	lp := Lowpass1(1000, testSampleRate)
	hp := Highpass1(1000, testSampleRate)

	for name, c := range map[string]biquad.Coefficients{"lpf1": lp, "hpf1": hp} {
		if c.B2 != 0 || c.A2 != 0 {
			t.Fatalf("%s: B2/A2 = %v/%v, want 0", name, c.B2, c.A2)
		}
	}

	if got := lp.MagnitudeDB(0, testSampleRate); !almostEqual(got, 0, dBTolerance) {
		t.Fatalf("lpf1 DC gain = %v dB, want 0", got)
	}
	if got := hp.MagnitudeDB(testSampleRate/2, testSampleRate); !almostEqual(got, 0, dBTolerance) {
		t.Fatalf("hpf1 Nyquist gain = %v dB, want 0", got)
	}
	if got := lp.MagnitudeDB(1000, testSampleRate); !almostEqual(got, -3.0103, 1e-3) {
		t.Fatalf("lpf1 gain at cutoff = %v dB, want -3.01", got)
	}
	if got := hp.MagnitudeDB(1000, testSampleRate); !almostEqual(got, -3.0103, 1e-3) {
		t.Fatalf("hpf1 gain at cutoff = %v dB, want -3.01", got)
	}
}

func TestPassGains(t *testing.T) {
	lp := Lowpass(2000, 0.7071, testSampleRate)
	hp := Highpass(2000, 0.7071, testSampleRate)

	if got := lp.MagnitudeDB(0, testSampleRate); !almostEqual(got, 0, dBTolerance) {
		t.Fatalf("lowpass DC gain = %v dB, want 0", got)
	}
	if got := hp.MagnitudeDB(testSampleRate/2, testSampleRate); !almostEqual(got, 0, dBTolerance) {
		t.Fatalf("highpass Nyquist gain = %v dB, want 0", got)
	}
	if got := lp.MagnitudeDB(20000, testSampleRate); got > -30 {
		t.Fatalf("lowpass stopband = %v dB, want < -30", got)
	}
	if got := hp.MagnitudeDB(100, testSampleRate); got > -40 {
		t.Fatalf("highpass stopband = %v dB, want < -40", got)
	}
}

func TestPeakingGainAtCenter(t *testing.T) {
	for _, gain := range []float64{-12, -3, 0, 6, 15} {
		c := Peaking(1000, gain, 1.4, testSampleRate)
		if got := c.MagnitudeDB(1000, testSampleRate); !almostEqual(got, gain, dBTolerance) {
			t.Fatalf("peaking %v dB: gain at center = %v", gain, got)
		}
		if got := c.MagnitudeDB(0, testSampleRate); !almostEqual(got, 0, dBTolerance) {
			t.Fatalf("peaking %v dB: DC gain = %v, want 0", gain, got)
		}
	}
}

func TestShelfGains(t *testing.T) {
	for _, gain := range []float64{-9, 6} {
		ls := LowShelf(300, gain, 0.7071, testSampleRate)
		hs := HighShelf(5000, gain, 0.7071, testSampleRate)

		if got := ls.MagnitudeDB(0, testSampleRate); !almostEqual(got, gain, dBTolerance) {
			t.Fatalf("low shelf %v dB: DC gain = %v", gain, got)
		}
		if got := ls.MagnitudeDB(testSampleRate/2, testSampleRate); !almostEqual(got, 0, dBTolerance) {
			t.Fatalf("low shelf %v dB: Nyquist gain = %v, want 0", gain, got)
		}
		if got := hs.MagnitudeDB(testSampleRate/2, testSampleRate); !almostEqual(got, gain, dBTolerance) {
			t.Fatalf("high shelf %v dB: Nyquist gain = %v", gain, got)
		}
		if got := hs.MagnitudeDB(0, testSampleRate); !almostEqual(got, 0, dBTolerance) {
			t.Fatalf("high shelf %v dB: DC gain = %v, want 0", gain, got)
		}
	}
}

func TestZeroGainIsIdentity(t *testing.T) {
	for name, c := range map[string]biquad.Coefficients{
		"peaking":    Peaking(1000, 0, 1, testSampleRate),
		"low shelf":  LowShelf(1000, 0, 1, testSampleRate),
		"high shelf": HighShelf(1000, 0, 1, testSampleRate),
	} {
		// B and A match, so the section reduces to a pure wire.
		if !almostEqual(c.B1, c.A1, 1e-12) || !almostEqual(c.B2, c.A2, 1e-12) || !almostEqual(c.B0, 1, 1e-12) {
			t.Fatalf("%s: %+v is not an identity section", name, c)
		}
	}
}

func TestDesignsAreStable(t *testing.T) {
	freqs := []float64{1, 20, 100, 1000, 10000, 20000, 23520}
	qs := []float64{0.1, 0.5, 0.7071, 2, 10, 100}

	for _, f := range freqs {
		for _, q := range qs {
			for name, c := range map[string]biquad.Coefficients{
				"lowpass":    Lowpass(f, q, testSampleRate),
				"highpass":   Highpass(f, q, testSampleRate),
				"peaking":    Peaking(f, 12, q, testSampleRate),
				"low shelf":  LowShelf(f, -12, q, testSampleRate),
				"high shelf": HighShelf(f, 12, q, testSampleRate),
			} {
				if !c.Stable() {
					t.Fatalf("%s f=%v q=%v is unstable: %+v", name, f, q, c)
				}
			}
		}

		for name, c := range map[string]biquad.Coefficients{
			"lpf1": Lowpass1(f, testSampleRate),
			"hpf1": Highpass1(f, testSampleRate),
		} {
			if !c.Stable() {
				t.Fatalf("%s f=%v is unstable: %+v", name, f, c)
			}
		}
	}
}

func TestDesignsAreDeterministic(t *testing.T) {
	a := HighShelf(3210, 4.5, 0.9, 44100)
	b := HighShelf(3210, 4.5, 0.9, 44100)
	if a != b {
		t.Fatalf("%+v != %+v", a, b)
	}
}

func TestLinkwitzRiley(t *testing.T) {
	const fc = 2500.0

	lp := LinkwitzRileyLowpass(fc, testSampleRate)
	hp := LinkwitzRileyHighpass(fc, testSampleRate)

	if lp.NumStages() != 2 || hp.NumStages() != 2 || lp.Order() != 4 {
		t.Fatalf("unexpected layout: lp %d/%d hp %d", lp.NumStages(), lp.Order(), hp.NumStages())
	}

	if got := lp.MagnitudeDB(fc, testSampleRate); !almostEqual(got, -6.0206, 1e-3) {
		t.Fatalf("lowpass at crossover = %v dB, want -6.02", got)
	}
	if got := hp.MagnitudeDB(fc, testSampleRate); !almostEqual(got, -6.0206, 1e-3) {
		t.Fatalf("highpass at crossover = %v dB, want -6.02", got)
	}

	for _, f := range []float64{50, 500, fc, 8000, 20000} {
		sum := lp.Response(f, testSampleRate) + hp.Response(f, testSampleRate)
		if got := cmplx.Abs(sum); !almostEqual(got, 1, 1e-6) {
			t.Fatalf("|LP+HP| at %v Hz = %v, want 1", f, got)
		}
	}
}

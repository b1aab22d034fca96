package plugin

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-rtfilter/dsp/delay"
	"github.com/cwbudde/algo-rtfilter/dsp/filter/design"
	"github.com/cwbudde/algo-rtfilter/internal/testutil"
)

const testRate = 48000.0

func newInstance(t *testing.T, k Kind, channels int, opts ...Option) (*Instance, *logtest.Hook) {
	t.Helper()

	d, err := NewDescriptor(k, channels)
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	inst, err := d.New(testRate, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)

	return inst, hook
}

// bindInPlace binds every channel's input and output port to bufs[ch].
func bindInPlace(t *testing.T, inst *Instance, bufs ...[]float32) {
	t.Helper()

	d := inst.Descriptor()
	for ch, buf := range bufs {
		require.NoError(t, inst.BindAudio(d.InputPort(ch), buf))
		require.NoError(t, inst.BindAudio(d.OutputPort(ch), buf))
	}
}

func TestNewRejectsInvalidSampleRate(t *testing.T) {
	d, err := NewDescriptor(Peaking, 1)
	require.NoError(t, err)

	for _, fs := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		_, err := d.New(fs)
		require.Error(t, err, "fs=%v", fs)
	}
}

func TestBindErrors(t *testing.T) {
	inst, _ := newInstance(t, Peaking, 2)
	v := float32(1000)

	require.ErrorIs(t, inst.BindControl(-1, &v), ErrPortOutOfRange)
	require.ErrorIs(t, inst.BindControl(7, &v), ErrPortOutOfRange)
	require.ErrorIs(t, inst.BindControl(3, &v), ErrPortKind)
	require.ErrorIs(t, inst.BindAudio(0, make([]float32, 4)), ErrPortKind)
	require.ErrorIs(t, inst.BindAudio(7, make([]float32, 4)), ErrPortOutOfRange)

	require.NoError(t, inst.BindControl(0, &v))
	require.NoError(t, inst.BindControl(0, nil))

	inst.Cleanup()
	require.ErrorIs(t, inst.BindControl(0, &v), ErrClosed)
	require.ErrorIs(t, inst.BindAudio(3, nil), ErrClosed)
}

func TestUnboundControlsReadDefaults(t *testing.T) {
	inst, _ := newInstance(t, Peaking, 1)

	assert.InDelta(t, 0.225*testRate, inst.Control(0), 1e-2)
	assert.Equal(t, float32(0), inst.Control(1))
	assert.Equal(t, float32(1), inst.Control(2))

	freq := float32(500)
	require.NoError(t, inst.BindControl(0, &freq))
	assert.Equal(t, freq, inst.Control(0))

	freq = 750
	assert.Equal(t, float32(750), inst.Control(0), "controls are read through the bound pointer")
}

func TestRunStopsAtFirstUnboundChannel(t *testing.T) {
	inst, _ := newInstance(t, Invert, 3)
	d := inst.Descriptor()

	ch0 := []float32{1, 2, 3}
	ch1 := []float32{4, 5, 6}
	ch2 := []float32{7, 8, 9}

	require.NoError(t, inst.BindAudio(d.InputPort(0), ch0))
	require.NoError(t, inst.BindAudio(d.OutputPort(0), ch0))
	require.NoError(t, inst.BindAudio(d.InputPort(1), ch1))
	require.NoError(t, inst.BindAudio(d.InputPort(2), ch2))
	require.NoError(t, inst.BindAudio(d.OutputPort(2), ch2))

	inst.Run(3)

	assert.Equal(t, []float32{-1, -2, -3}, ch0)
	assert.Equal(t, []float32{4, 5, 6}, ch1)
	assert.Equal(t, []float32{7, 8, 9}, ch2, "channels after the first unbound one must be skipped")
}

func TestGainAndInvert(t *testing.T) {
	gain, _ := newInstance(t, Gain, 1)
	db := float32(-6.0206)
	require.NoError(t, gain.BindControl(0, &db))

	src := testutil.DeterministicNoise32(3, 1, 64)
	out := make([]float32, len(src))
	d := gain.Descriptor()
	require.NoError(t, gain.BindAudio(d.InputPort(0), src))
	require.NoError(t, gain.BindAudio(d.OutputPort(0), out))
	gain.Run(len(src))

	for i := range src {
		assert.InDelta(t, src[i]/2, out[i], 1e-6)
	}

	// Gain is read at Run time, without reactivation.
	db = 0
	gain.Run(len(src))
	testutil.RequireSliceNearlyEqual32(t, out, src, 0)

	inv, _ := newInstance(t, Invert, 1)
	buf := append([]float32(nil), src...)
	bindInPlace(t, inv, buf)
	inv.Run(len(buf))
	for i := range src {
		require.Equal(t, -src[i], buf[i])
	}
}

func TestRunProcessesOnlyN(t *testing.T) {
	inst, _ := newInstance(t, Invert, 1)
	buf := []float32{1, 1, 1, 1}
	bindInPlace(t, inst, buf)

	inst.Run(2)
	assert.Equal(t, []float32{-1, -1, 1, 1}, buf)

	inst.Run(0)
	inst.Run(-5)
	assert.Equal(t, []float32{-1, -1, 1, 1}, buf)
}

func TestButterworthOrderClamp(t *testing.T) {
	tests := []struct {
		requested float32
		want      int
		warns     bool
	}{
		{requested: 0, want: 1, warns: true},
		{requested: -2, want: 1, warns: true},
		{requested: 1, want: 1},
		{requested: 2.7, want: 2},
		{requested: 4, want: 4},
		{requested: 5, want: 4, warns: true},
		{requested: 1e9, want: 4, warns: true},
		{requested: float32(math.NaN()), want: 1, warns: true},
	}

	for _, tt := range tests {
		inst, hook := newInstance(t, ButterworthLowpass, 1)
		hook.Reset()

		cutoff, order := float32(1000), tt.requested
		require.NoError(t, inst.BindControl(0, &cutoff))
		require.NoError(t, inst.BindControl(1, &order))
		inst.Activate()

		c := inst.Cascade()
		assert.Equal(t, tt.want, c.Order(), "requested %v", tt.requested)

		if !tt.warns {
			assert.Empty(t, hook.AllEntries(), "requested %v", tt.requested)
			continue
		}

		entry := hook.LastEntry()
		require.NotNil(t, entry, "requested %v", tt.requested)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, "butterworth_lowpass_1ch", entry.Data["plugin"])
		assert.Equal(t, tt.want, entry.Data["clamped"])
	}
}

func TestButterworthClampedOrderMatchesMaximum(t *testing.T) {
	run := func(order float32) []float32 {
		inst, _ := newInstance(t, ButterworthHighpass, 1)
		cutoff := float32(2000)
		require.NoError(t, inst.BindControl(0, &cutoff))
		require.NoError(t, inst.BindControl(1, &order))
		inst.Activate()

		buf := testutil.DeterministicNoise32(9, 0.5, 300)
		bindInPlace(t, inst, buf)
		inst.Run(len(buf))
		return buf
	}

	testutil.RequireSliceNearlyEqual32(t, run(5), run(4), 0)
	testutil.RequireSliceNearlyEqual32(t, run(0), run(1), 0)
}

func TestButterworthMinus3dB(t *testing.T) {
	for _, k := range []Kind{ButterworthLowpass, ButterworthHighpass} {
		inst, _ := newInstance(t, k, 1)
		cutoff, order := float32(1000), float32(4)
		require.NoError(t, inst.BindControl(0, &cutoff))
		require.NoError(t, inst.BindControl(1, &order))
		inst.Activate()

		c := inst.Cascade()
		ref := 10.0
		if k == ButterworthHighpass {
			ref = 20000
		}
		rel := c.MagnitudeDB(1000, testRate) - c.MagnitudeDB(ref, testRate)
		assert.InDelta(t, -3.01, rel, 0.1, "%s", k)
	}
}

func TestFrequencyClampWarns(t *testing.T) {
	inst, hook := newInstance(t, Peaking, 1)
	hook.Reset()

	freq := float32(30000)
	require.NoError(t, inst.BindControl(0, &freq))
	inst.Activate()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "frequency clamped", entry.Message)
	fs := inst.SampleRate()
	top := fs * design.MaxFrequencyRatio
	assert.Equal(t, top, entry.Data["clamped"])

	c := inst.Cascade()
	want := design.Peaking(top, 0, 1, fs)
	assert.Equal(t, want, *c.Stage(0))
}

func TestFirstOrderButterworthDoesNotWarnOnFrequency(t *testing.T) {
	inst, hook := newInstance(t, ButterworthLowpass, 1)
	hook.Reset()

	freq := float32(0.5)
	require.NoError(t, inst.BindControl(0, &freq))
	inst.Activate()

	assert.Empty(t, hook.AllEntries())
}

func TestDelayPlugin(t *testing.T) {
	inst, hook := newInstance(t, Delay, 2)
	assert.Equal(t, 48, inst.DelaySamples(), "default 1 ms at 48 kHz")

	ms := float32(0.5)
	require.NoError(t, inst.BindControl(0, &ms))
	inst.Activate()
	require.Equal(t, 24, inst.DelaySamples())
	assert.Empty(t, hook.AllEntries())

	left := testutil.Impulse32(100, 10)
	right := testutil.Impulse32(100, 30)
	d := inst.Descriptor()

	for off := 0; off < 100; off += 25 {
		bindInPlace(t, inst, left[off:off+25], right[off:off+25])
		inst.Run(25)
	}
	require.Equal(t, 2, d.Channels)

	for i := range left {
		wantL, wantR := float32(0), float32(0)
		if i == 34 {
			wantL = 1
		}
		if i == 54 {
			wantR = 1
		}
		require.Equal(t, wantL, left[i], "left[%d]", i)
		require.Equal(t, wantR, right[i], "right[%d]", i)
	}
}

func TestDelayClamp(t *testing.T) {
	inst, hook := newInstance(t, Delay, 1)
	hook.Reset()

	ms := float32(0)
	require.NoError(t, inst.BindControl(0, &ms))
	inst.Activate()
	assert.Equal(t, 1, inst.DelaySamples())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "delay clamped", entry.Message)
	assert.Equal(t, 0, entry.Data["requested"])
	assert.Equal(t, 1, entry.Data["clamped"])
	assert.Equal(t, testRate, entry.Data["sample_rate"])

	ms = 100
	inst.Activate()
	assert.Equal(t, delay.DefaultCapacity-1, inst.DelaySamples())
}

func TestDelayCapacityOption(t *testing.T) {
	d, err := NewDescriptor(Delay, 1)
	require.NoError(t, err)

	_, err = d.New(testRate, WithDelayCapacity(1000))
	require.ErrorIs(t, err, delay.ErrCapacity)

	inst, _ := newInstance(t, Delay, 1, WithDelayCapacity(32))
	assert.Equal(t, 31, inst.DelaySamples(), "1 ms exceeds a 32 sample buffer")
}

func TestActivateResetsState(t *testing.T) {
	inst, _ := newInstance(t, LowShelf, 1)
	gain := float32(9)
	require.NoError(t, inst.BindControl(1, &gain))
	inst.Activate()

	first := testutil.Impulse32(64, 0)
	bindInPlace(t, inst, first)
	inst.Run(len(first))

	inst.Activate()
	second := testutil.Impulse32(64, 0)
	bindInPlace(t, inst, second)
	inst.Run(len(second))

	testutil.RequireSliceNearlyEqual32(t, second, first, 0)
}

func TestChannelsShareCoefficientsButNotState(t *testing.T) {
	inst, _ := newInstance(t, LinkwitzRileyLowpass, 2)

	a := testutil.DeterministicNoise32(1, 1, 128)
	b := append([]float32(nil), a...)
	bindInPlace(t, inst, a, b)
	inst.Run(len(a))

	testutil.RequireSliceNearlyEqual32(t, a, b, 0)
	testutil.RequireFinite32(t, a)
}

func TestSeparateAndAliasedBuffersMatch(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			sep, _ := newInstance(t, k, 1)
			alias, _ := newInstance(t, k, 1)

			src := testutil.DeterministicNoise32(5, 0.8, 257)
			out := make([]float32, len(src))
			d := sep.Descriptor()
			require.NoError(t, sep.BindAudio(d.InputPort(0), src))
			require.NoError(t, sep.BindAudio(d.OutputPort(0), out))
			sep.Run(len(src))

			buf := append([]float32(nil), src...)
			bindInPlace(t, alias, buf)
			alias.Run(len(buf))

			testutil.RequireSliceNearlyEqual32(t, buf, out, 0)
		})
	}
}

func TestRunDoesNotAllocate(t *testing.T) {
	for _, k := range Kinds() {
		inst, _ := newInstance(t, k, 2)
		left := testutil.DeterministicNoise32(1, 0.5, 256)
		right := testutil.DeterministicNoise32(2, 0.5, 256)
		bindInPlace(t, inst, left, right)

		allocs := testing.AllocsPerRun(50, func() {
			inst.Run(len(left))
		})
		assert.Zero(t, allocs, "%s", k)
	}
}

func TestCleanupMakesInstanceInert(t *testing.T) {
	inst, _ := newInstance(t, Invert, 1)
	buf := []float32{1, 2}
	bindInPlace(t, inst, buf)

	inst.Cleanup()
	inst.Activate()
	inst.Run(2)

	assert.Equal(t, []float32{1, 2}, buf)
}

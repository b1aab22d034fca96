package plugin

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/tphakala/simd/f32"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
	"github.com/cwbudde/algo-rtfilter/dsp/delay"
	"github.com/cwbudde/algo-rtfilter/dsp/filter/biquad"
	"github.com/cwbudde/algo-rtfilter/dsp/filter/design"
)

// ErrClosed is returned when binding ports of an instance after Cleanup.
var ErrClosed = errors.New("plugin: instance cleaned up")

// Instance is one running filter bound to a fixed sample rate.
//
// All channels share one coefficient set; each channel owns its section
// state or delay buffer. An Instance is not safe for concurrent use: the
// host serializes BindControl, Activate and Run.
type Instance struct {
	desc       *Descriptor
	sampleRate float64
	log        logrus.FieldLogger
	closed     bool

	defaults []float32
	controls []*float32
	inputs   [][]float32
	outputs  [][]float32

	cascade biquad.Cascade
	chains  []biquad.Chain
	lines   []*delay.Line
}

// New creates an instance of d at sampleRate and activates it with the
// default control values.
func (d *Descriptor) New(sampleRate float64, opts ...Option) (*Instance, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", d.Label, err)
	}

	cfg := applyOptions(opts)

	inst := &Instance{
		desc:       d,
		sampleRate: sampleRate,
		log:        cfg.logger.WithField("plugin", d.Label),
		defaults:   make([]float32, d.Controls()),
		controls:   make([]*float32, d.Controls()),
		inputs:     make([][]float32, d.Channels),
		outputs:    make([][]float32, d.Channels),
	}

	for i := range inst.defaults {
		inst.defaults[i] = d.Ports[i].Hint.DefaultValue(sampleRate)
	}

	switch {
	case d.Kind.usesCascade():
		inst.chains = make([]biquad.Chain, d.Channels)
	case d.Kind == Delay:
		inst.lines = make([]*delay.Line, d.Channels)
		for ch := range inst.lines {
			l, err := delay.New(cfg.delayCapacity)
			if err != nil {
				return nil, fmt.Errorf("plugin: %s: %w", d.Label, err)
			}
			inst.lines[ch] = l
		}
	}

	inst.Activate()

	return inst, nil
}

// Descriptor returns the descriptor the instance was created from.
func (i *Instance) Descriptor() *Descriptor { return i.desc }

// SampleRate returns the sample rate fixed at creation.
func (i *Instance) SampleRate() float64 { return i.sampleRate }

// BindControl binds a control port to value. A nil value unbinds the port,
// which then reads as its declared default.
func (i *Instance) BindControl(port int, value *float32) error {
	if i.closed {
		return ErrClosed
	}
	if _, err := i.desc.port(port, ControlPort); err != nil {
		return err
	}
	i.controls[port] = value
	return nil
}

// BindAudio binds an audio port to buf. A nil buf unbinds the port. The
// input and output of one channel may share the same slice.
func (i *Instance) BindAudio(port int, buf []float32) error {
	if i.closed {
		return ErrClosed
	}
	p, err := i.desc.port(port, AudioPort)
	if err != nil {
		return err
	}

	ch := (port - i.desc.Controls()) / 2
	if p.Direction == Input {
		i.inputs[ch] = buf
	} else {
		i.outputs[ch] = buf
	}
	return nil
}

// Control returns the current value of control port idx, or its default
// when unbound.
func (i *Instance) Control(idx int) float32 {
	if p := i.controls[idx]; p != nil {
		return *p
	}
	return i.defaults[idx]
}

// Activate reads the controls, recomputes coefficients and delays, and
// clears all filter and delay history.
func (i *Instance) Activate() {
	if i.closed {
		return
	}

	fs := i.sampleRate

	switch i.desc.Kind {
	case Peaking:
		f := i.frequency()
		i.setCascade(2, design.Peaking(f, i.controlF64(1), i.controlF64(2), fs))
	case LowShelf:
		f := i.frequency()
		i.setCascade(2, design.LowShelf(f, i.controlF64(1), i.controlF64(2), fs))
	case HighShelf:
		f := i.frequency()
		i.setCascade(2, design.HighShelf(f, i.controlF64(1), i.controlF64(2), fs))
	case LinkwitzRileyLowpass:
		i.cascade = design.LinkwitzRileyLowpass(i.frequency(), fs)
	case LinkwitzRileyHighpass:
		i.cascade = design.LinkwitzRileyHighpass(i.frequency(), fs)
	case ButterworthLowpass, ButterworthHighpass:
		i.activateButterworth()
	case Delay:
		i.activateDelay()
	}

	for ch := range i.chains {
		i.chains[ch].Reset()
	}
	for _, l := range i.lines {
		l.Reset()
	}
}

// Run processes n samples on every channel up to the first one whose
// input or output port is unbound. Bound buffers must hold at least n
// samples.
func (i *Instance) Run(n int) {
	if n <= 0 || i.closed {
		return
	}

	kind := i.desc.Kind

	var scale float32
	switch kind {
	case Gain:
		scale = float32(core.DBToLinear(float64(i.Control(0))))
	case Invert:
		scale = -1
	}

	for ch := range i.inputs {
		in, out := i.inputs[ch], i.outputs[ch]
		if in == nil || out == nil {
			return
		}
		in, out = in[:n], out[:n]

		switch kind {
		case Gain, Invert:
			f32.Scale(out, in, scale)
		case Delay:
			i.lines[ch].Process(out, in)
		default:
			i.chains[ch].Apply(&i.cascade, out, in)
		}
	}
}

// Cleanup releases all buffer references and state. The instance is inert
// afterwards.
func (i *Instance) Cleanup() {
	clear(i.controls)
	clear(i.inputs)
	clear(i.outputs)
	i.chains = nil
	i.lines = nil
	i.closed = true
}

// Cascade returns the coefficient cascade computed by the last Activate.
// It is empty for kinds that do not filter.
func (i *Instance) Cascade() biquad.Cascade {
	return i.cascade
}

// DelaySamples returns the delay of a Delay instance, or 0 for other kinds.
func (i *Instance) DelaySamples() int {
	if len(i.lines) == 0 {
		return 0
	}
	return i.lines[0].Delay()
}

func (i *Instance) controlF64(idx int) float64 {
	return float64(i.Control(idx))
}

// frequency reads control 0 and warns when second-order designs will
// clamp it.
func (i *Instance) frequency() float64 {
	f := i.controlF64(0)
	if c, clamped := design.ClampFrequency(f, i.sampleRate); clamped {
		i.warn("frequency clamped", f, c)
	}
	return f
}

func (i *Instance) setCascade(order int, stages ...biquad.Coefficients) {
	c, err := biquad.NewCascade(order, stages...)
	if err != nil {
		panic("plugin: " + err.Error())
	}
	i.cascade = c
}

func (i *Instance) activateButterworth() {
	f := i.controlF64(0)

	requested := math.Trunc(i.controlF64(1))
	order := design.MinOrder - 1
	if !math.IsNaN(requested) {
		order = int(core.Clamp(requested, design.MinOrder-1, design.MaxOrder+1))
	}

	order, clamped := design.ClampOrder(order)
	if clamped {
		i.warn("butterworth order clamped", requested, order)
	}

	// First-order stages use the frequency as given.
	if order > 1 {
		if c, fc := design.ClampFrequency(f, i.sampleRate); fc {
			i.warn("frequency clamped", f, c)
		}
	}

	if i.desc.Kind == ButterworthHighpass {
		i.cascade, _ = design.ButterworthHighpass(f, order, i.sampleRate)
	} else {
		i.cascade, _ = design.ButterworthLowpass(f, order, i.sampleRate)
	}
}

func (i *Instance) activateDelay() {
	ms := i.controlF64(0)
	requested := delay.SamplesFromMillis(ms, i.sampleRate)

	for _, l := range i.lines {
		got, clamped := l.SetDelay(requested)
		if clamped && l == i.lines[0] {
			i.log.WithFields(logrus.Fields{
				"requested":   requested,
				"clamped":     got,
				"delay_ms":    ms,
				"sample_rate": i.sampleRate,
				"min_ms":      1000 / i.sampleRate,
				"max_ms":      1000 * float64(l.Len()-1) / i.sampleRate,
			}).Warn("delay clamped")
		}
	}
}

func (i *Instance) warn(msg string, requested, clamped any) {
	i.log.WithFields(logrus.Fields{
		"requested":   requested,
		"clamped":     clamped,
		"sample_rate": i.sampleRate,
	}).Warn(msg)
}

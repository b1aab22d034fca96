package plugin

import "math"

// PortType distinguishes scalar control ports from audio buffer ports.
type PortType int

const (
	ControlPort PortType = iota
	AudioPort
)

func (t PortType) String() string {
	if t == AudioPort {
		return "audio"
	}
	return "control"
}

// Direction of a port as seen from the plugin.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// DefaultHint selects how the default value of a control is derived from
// its bounds.
type DefaultHint int

const (
	DefaultNone DefaultHint = iota
	DefaultMinimum
	DefaultMiddle
	DefaultMaximum
	DefaultZero
	DefaultOne
)

// Hint describes the range and default of a control port.
type Hint struct {
	Lower float32
	Upper float32

	// SampleRate means Lower and Upper are fractions of the sample rate.
	SampleRate bool

	// Integer means the control takes whole values only.
	Integer bool

	Default DefaultHint
}

// Bounds returns the control range at sampleRate.
func (h Hint) Bounds(sampleRate float64) (lower, upper float64) {
	lower, upper = float64(h.Lower), float64(h.Upper)
	if h.SampleRate {
		lower *= sampleRate
		upper *= sampleRate
	}
	return lower, upper
}

// DefaultValue returns the value an unbound control reads as at sampleRate.
func (h Hint) DefaultValue(sampleRate float64) float32 {
	lower, upper := h.Bounds(sampleRate)

	var v float64
	switch h.Default {
	case DefaultMinimum:
		v = lower
	case DefaultMiddle:
		v = (lower + upper) / 2
	case DefaultMaximum:
		v = upper
	case DefaultOne:
		v = 1
	default:
		v = 0
	}

	if h.Integer {
		v = math.Round(v)
	}
	return float32(v)
}

// PortDescriptor describes one numbered port.
type PortDescriptor struct {
	Name      string
	Type      PortType
	Direction Direction
	Hint      Hint
}

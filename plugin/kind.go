package plugin

import "fmt"

// Kind selects the filter flavor of a Descriptor.
type Kind int

const (
	Peaking Kind = iota
	LinkwitzRileyLowpass
	LinkwitzRileyHighpass
	LowShelf
	HighShelf
	Delay
	Invert
	Gain
	ButterworthLowpass
	ButterworthHighpass
)

// MaxChannels is the largest channel count registered for every kind.
const MaxChannels = 8

type kindInfo struct {
	label    string
	title    string
	idBase   uint32
	controls []PortDescriptor
}

var (
	frequencyHint = Hint{Lower: 0, Upper: 0.45, SampleRate: true, Default: DefaultMiddle}
	gainHint      = Hint{Lower: -100, Upper: 100, Default: DefaultZero}
	qHint         = Hint{Lower: 0, Upper: 100, Default: DefaultOne}
	orderHint     = Hint{Lower: 1, Upper: 4, Integer: true, Default: DefaultOne}
	delayHint     = Hint{Lower: 0, Upper: 20, Default: DefaultOne}
)

func control(name string, hint Hint) PortDescriptor {
	return PortDescriptor{Name: name, Type: ControlPort, Direction: Input, Hint: hint}
}

var kinds = [...]kindInfo{
	Peaking: {
		label: "peaking", title: "Peaking", idBase: 100,
		controls: []PortDescriptor{
			control("Centre Frequency (Hz)", frequencyHint),
			control("Gain (dB)", gainHint),
			control("Bandwidth (Q)", qHint),
		},
	},
	LinkwitzRileyLowpass: {
		label: "linkwitz_riley_lowpass", title: "Linkwitz-Riley Lowpass", idBase: 108,
		controls: []PortDescriptor{control("Crossover Frequency (Hz)", frequencyHint)},
	},
	LinkwitzRileyHighpass: {
		label: "linkwitz_riley_highpass", title: "Linkwitz-Riley Highpass", idBase: 116,
		controls: []PortDescriptor{control("Crossover Frequency (Hz)", frequencyHint)},
	},
	LowShelf: {
		label: "low_shelf", title: "Low Shelf", idBase: 124,
		controls: []PortDescriptor{
			control("Corner Frequency (Hz)", frequencyHint),
			control("Gain (dB)", gainHint),
			control("Slope (Q)", qHint),
		},
	},
	HighShelf: {
		label: "high_shelf", title: "High Shelf", idBase: 132,
		controls: []PortDescriptor{
			control("Corner Frequency (Hz)", frequencyHint),
			control("Gain (dB)", gainHint),
			control("Slope (Q)", qHint),
		},
	},
	Delay: {
		label: "delay", title: "Delay", idBase: 140,
		controls: []PortDescriptor{control("Delay (ms)", delayHint)},
	},
	Invert: {
		label: "invert", title: "Invert", idBase: 148,
	},
	Gain: {
		label: "gain", title: "Gain", idBase: 156,
		controls: []PortDescriptor{control("Gain (dB)", gainHint)},
	},
	ButterworthLowpass: {
		label: "butterworth_lowpass", title: "Butterworth Lowpass", idBase: 164,
		controls: []PortDescriptor{
			control("Cutoff Frequency (Hz)", frequencyHint),
			control("Order", orderHint),
		},
	},
	ButterworthHighpass: {
		label: "butterworth_highpass", title: "Butterworth Highpass", idBase: 172,
		controls: []PortDescriptor{
			control("Cutoff Frequency (Hz)", frequencyHint),
			control("Order", orderHint),
		},
	},
}

// Kinds returns every filter kind in registration order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	for i := range kinds {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k names a known filter kind.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kinds)
}

// String returns the label prefix of k, e.g. "low_shelf".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].label
}

// Title returns the human readable name of k.
func (k Kind) Title() string {
	if !k.Valid() {
		return k.String()
	}
	return kinds[k].title
}

// ParseKind maps a label prefix such as "butterworth_lowpass" to its Kind.
func ParseKind(label string) (Kind, error) {
	for i := range kinds {
		if kinds[i].label == label {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, label)
}

// Controls returns the number of control ports of k.
func (k Kind) Controls() int {
	if !k.Valid() {
		return 0
	}
	return len(kinds[k].controls)
}

func (k Kind) usesCascade() bool {
	switch k {
	case Peaking, LowShelf, HighShelf,
		LinkwitzRileyLowpass, LinkwitzRileyHighpass,
		ButterworthLowpass, ButterworthHighpass:
		return true
	default:
		return false
	}
}

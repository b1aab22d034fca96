package plugin

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKind is returned for labels or Kind values that name no filter.
	ErrUnknownKind = errors.New("plugin: unknown filter kind")

	// ErrChannels is returned for channel counts outside [1, MaxChannels].
	ErrChannels = errors.New("plugin: channel count out of range")

	// ErrPortOutOfRange is returned when binding a port index the descriptor
	// does not declare.
	ErrPortOutOfRange = errors.New("plugin: port index out of range")

	// ErrPortKind is returned when binding a control to an audio port or
	// the reverse.
	ErrPortKind = errors.New("plugin: wrong port type")

	// ErrDuplicate is returned by Registry.Register for a label or ID that
	// is already registered.
	ErrDuplicate = errors.New("plugin: duplicate descriptor")
)

// Property flags of a Descriptor.
type Property uint32

// HardRTCapable marks plugins whose Run is safe on a hard real-time thread.
const HardRTCapable Property = 1 << 0

// Descriptor is the static description of one filter flavor at one channel
// count.
type Descriptor struct {
	ID         uint32
	Label      string
	Name       string
	Kind       Kind
	Channels   int
	Properties Property
	Ports      []PortDescriptor
}

// NewDescriptor builds the descriptor for kind with the given number of
// channels.
func NewDescriptor(kind Kind, channels int) (*Descriptor, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if channels < 1 || channels > MaxChannels {
		return nil, fmt.Errorf("%w: %d", ErrChannels, channels)
	}

	info := &kinds[kind]
	ports := make([]PortDescriptor, 0, len(info.controls)+2*channels)
	ports = append(ports, info.controls...)

	for ch := 1; ch <= channels; ch++ {
		ports = append(ports,
			PortDescriptor{Name: fmt.Sprintf("Channel %d Input", ch), Type: AudioPort, Direction: Input},
			PortDescriptor{Name: fmt.Sprintf("Channel %d Output", ch), Type: AudioPort, Direction: Output},
		)
	}

	return &Descriptor{
		ID:         info.idBase + uint32(channels-1),
		Label:      fmt.Sprintf("%s_%dch", info.label, channels),
		Name:       fmt.Sprintf("%s (%d Channel)", info.title, channels),
		Kind:       kind,
		Channels:   channels,
		Properties: HardRTCapable,
		Ports:      ports,
	}, nil
}

// Controls returns the number of control ports.
func (d *Descriptor) Controls() int {
	return d.Kind.Controls()
}

// InputPort returns the port index of channel ch's input buffer.
func (d *Descriptor) InputPort(ch int) int {
	return d.Controls() + 2*ch
}

// OutputPort returns the port index of channel ch's output buffer.
func (d *Descriptor) OutputPort(ch int) int {
	return d.Controls() + 2*ch + 1
}

// port validates index against the port table and the expected type.
func (d *Descriptor) port(index int, want PortType) (*PortDescriptor, error) {
	if index < 0 || index >= len(d.Ports) {
		return nil, fmt.Errorf("%w: %s port %d of %d", ErrPortOutOfRange, d.Label, index, len(d.Ports))
	}

	p := &d.Ports[index]
	if p.Type != want {
		return nil, fmt.Errorf("%w: %s port %d is %s, not %s", ErrPortKind, d.Label, index, p.Type, want)
	}
	return p, nil
}

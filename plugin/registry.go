package plugin

import "fmt"

// Registry is an ordered set of descriptors addressable by index, label
// and unique ID.
type Registry struct {
	order   []*Descriptor
	byLabel map[string]*Descriptor
	byID    map[uint32]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLabel: make(map[string]*Descriptor),
		byID:    make(map[uint32]*Descriptor),
	}
}

// Default returns a registry holding every Kind at 1 to MaxChannels
// channels, grouped by kind.
func Default() *Registry {
	r := NewRegistry()
	for _, k := range Kinds() {
		for ch := 1; ch <= MaxChannels; ch++ {
			d, err := NewDescriptor(k, ch)
			if err != nil {
				panic("plugin registry: " + err.Error())
			}
			r.MustRegister(d)
		}
	}
	return r
}

// Register appends d. Labels and IDs must be unique.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("%w: nil descriptor", ErrUnknownKind)
	}
	if _, exists := r.byLabel[d.Label]; exists {
		return fmt.Errorf("%w: label %s", ErrDuplicate, d.Label)
	}
	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("%w: id %d", ErrDuplicate, d.ID)
	}

	r.order = append(r.order, d)
	r.byLabel[d.Label] = d
	r.byID[d.ID] = d

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic("plugin registry: " + err.Error())
	}
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.order)
}

// At returns the i-th descriptor, or false past the end.
func (r *Registry) At(i int) (*Descriptor, bool) {
	if i < 0 || i >= len(r.order) {
		return nil, false
	}
	return r.order[i], true
}

// Lookup returns the descriptor with the given label.
func (r *Registry) Lookup(label string) (*Descriptor, bool) {
	d, ok := r.byLabel[label]
	return d, ok
}

// LookupID returns the descriptor with the given unique ID.
func (r *Registry) LookupID(id uint32) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Find returns the descriptor of kind k with the given channel count.
func (r *Registry) Find(k Kind, channels int) (*Descriptor, bool) {
	return r.Lookup(fmt.Sprintf("%s_%dch", k, channels))
}

// All returns the descriptors in registration order.
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

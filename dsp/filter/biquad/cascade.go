package biquad

import "errors"

// MaxStages is the number of sections a Cascade can hold. Two second-order
// sections cover every response up to fourth order.
const MaxStages = 2

// ErrStageCount is returned by NewCascade for zero or more than MaxStages stages.
var ErrStageCount = errors.New("biquad: cascade needs 1 or 2 stages")

// Cascade is an ordered list of one or two coefficient sets evaluated in
// series. It is immutable once built and may be shared by every channel of
// a filter instance.
type Cascade struct {
	order  int
	n      int
	stages [MaxStages]Coefficients
}

// NewCascade builds a cascade of the given nominal filter order from one or
// two stages.
func NewCascade(order int, stages ...Coefficients) (Cascade, error) {
	if len(stages) == 0 || len(stages) > MaxStages {
		return Cascade{}, ErrStageCount
	}

	c := Cascade{order: order, n: len(stages)}
	copy(c.stages[:], stages)

	return c, nil
}

// Order returns the nominal filter order the cascade realizes.
func (c *Cascade) Order() int { return c.order }

// NumStages returns the number of sections in the cascade.
func (c *Cascade) NumStages() int { return c.n }

// Stage returns a pointer to the i-th stage's coefficients.
func (c *Cascade) Stage(i int) *Coefficients {
	return &c.stages[i]
}

// Stages returns a copy of the stage coefficients.
func (c *Cascade) Stages() []Coefficients {
	out := make([]Coefficients, c.n)
	copy(out, c.stages[:c.n])
	return out
}

// Chain is the per-channel runtime of a Cascade: one Section per stage.
// The zero value is ready to use.
type Chain struct {
	sections [MaxStages]Section
}

// Apply runs src through every stage of c into dst. The first stage reads
// src and writes dst; later stages read and rewrite dst in place. dst may
// be the same slice as src. Zero-alloc.
func (ch *Chain) Apply(c *Cascade, dst, src []float32) {
	if c.n == 0 {
		return
	}

	ch.sections[0].Apply(&c.stages[0], dst, src)
	for i := 1; i < c.n; i++ {
		ch.sections[i].Apply(&c.stages[i], dst[:len(src)], dst[:len(src)])
	}
}

// ProcessSample cascades one sample through every stage of c.
func (ch *Chain) ProcessSample(c *Cascade, x float64) float64 {
	for i := 0; i < c.n; i++ {
		x = ch.sections[i].ProcessSample(&c.stages[i], x)
	}

	return x
}

// Section returns a pointer to the i-th stage's history.
func (ch *Chain) Section(i int) *Section {
	return &ch.sections[i]
}

// Reset clears the history of every stage.
func (ch *Chain) Reset() {
	for i := range ch.sections {
		ch.sections[i].Reset()
	}
}

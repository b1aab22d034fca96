// Package biquad provides biquad (second-order IIR) filter runtime primitives
// for real-time block processing.
//
// [Coefficients] describe one normalized section (a0 = 1). A [Section] holds
// only the Direct Form I history of one channel, so a single coefficient set
// can be shared read-only by every channel of a filter while each channel
// owns its own Section.
//
// [Cascade] describes a one- or two-stage filter (used for 1st to 4th order
// Butterworth and Linkwitz-Riley responses) and [Chain] is the per-channel
// runtime that evaluates it.
//
// Block processing is allocation-free and tolerates the input and output
// slices being the same memory. Coefficient design lives in dsp/filter/design.
package biquad

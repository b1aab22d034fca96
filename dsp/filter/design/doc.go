// Package design provides the coefficient designers used by the real-time
// filters.
//
// The second-order designers (Peaking, LowShelf, HighShelf, Lowpass,
// Highpass) follow the RBJ Audio EQ Cookbook and clamp the characteristic
// frequency into [1 Hz, 0.49*fs] so that w0 stays strictly inside (0, pi).
// The first-order designers (Lowpass1, Highpass1) use x = tan(pi*f0/fs) and
// do not clamp.
//
// Every designer returns coefficients normalized by a0. The functions are
// pure, deterministic and allocation-free. Q <= 0 and non-finite inputs are
// caller errors and produce whatever the floating-point arithmetic yields.
//
// ButterworthLowpass/ButterworthHighpass assemble one- or two-stage cascades
// realizing 1st to 4th order Butterworth responses, and the LinkwitzRiley
// designers build fourth-order crossover sections.
package design

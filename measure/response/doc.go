// Package response measures the magnitude response of a plugin instance.
//
// Measure pushes a unit impulse through channel 0 of an instance and
// transforms the captured impulse response with an FFT. The result can be
// queried at arbitrary frequencies, which is how the Butterworth -3 dB point
// is checked end to end through the host interface.
package response

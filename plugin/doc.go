// Package plugin exposes the filters to an external audio host.
//
// A host enumerates Descriptors from a Registry, creates an Instance bound
// to a sample rate, binds control values and per-channel audio buffers to
// numbered ports, activates the instance and then calls Run once per block:
//
//	reg := plugin.Default()
//	d, _ := reg.Lookup("butterworth_lowpass_2ch")
//	inst, _ := d.New(48000)
//	inst.BindControl(0, &cutoff)
//	inst.BindControl(1, &order)
//	inst.BindAudio(d.InputPort(0), left)
//	inst.BindAudio(d.OutputPort(0), left)
//	inst.Activate()
//	inst.Run(len(left))
//
// Control ports come first; channel i uses input port controls+2i and
// output port controls+2i+1. Input and output of one channel may be the
// same slice. Run stops at the first channel with an unbound input or
// output port.
//
// Run does not allocate, lock or log. Out-of-range settings are clamped at
// activation and reported as logrus warnings.
package plugin

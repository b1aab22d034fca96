// Command rtfilter runs the real-time filters offline over WAV files.
//
// Usage:
//
//	rtfilter [flags] input.wav output.wav
//	rtfilter -list
//	rtfilter -plugin NAME -c VALUES -response
//
// The descriptor matching the input's channel count is picked, controls
// are bound in port order from -c, and the file is processed block by block
// with each channel's input and output bound to the same buffer.
//
// Examples:
//
//	rtfilter -list
//	rtfilter -plugin peaking -c 1000,6,0.7 in.wav out.wav
//	rtfilter -plugin butterworth_lowpass -c 1000,4 -block 256 in.wav out.wav
//	rtfilter -plugin butterworth_lowpass -c 1000,4 -response
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
	"github.com/cwbudde/algo-rtfilter/measure/response"
	"github.com/cwbudde/algo-rtfilter/plugin"
)

const (
	defaultFFTSize   = 1 << 14
	minRequiredArgs  = 2
	responseStartHz  = 31.25
	responseStopHz   = 16000
	responseChannels = 1
)

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	list     bool
	plugin   string
	controls string
	block    int
	rate     float64
	fftSize  int
	response bool
	verbose  bool
	args     []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	def := core.DefaultProcessorConfig()
	opts := &options{}

	fs := flag.NewFlagSet("rtfilter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.list, "list", false, "list registered plugins and exit")
	fs.StringVar(&opts.plugin, "plugin", "", "filter kind, e.g. peaking, low_shelf, butterworth_lowpass")
	fs.StringVar(&opts.controls, "c", "", "comma separated control values in port order")
	fs.IntVar(&opts.block, "block", def.BlockSize, "processing block size in samples")
	fs.Float64Var(&opts.rate, "rate", def.SampleRate, "sample rate for -response")
	fs.IntVar(&opts.fftSize, "fft", defaultFFTSize, "FFT size for -response (power of two)")
	fs.BoolVar(&opts.response, "response", false, "print the magnitude response instead of processing a file")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rtfilter [flags] input.wav output.wav\n\n")
		fmt.Fprintf(stderr, "Runs a real-time filter over a WAV file block by block.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  rtfilter -list\n")
		fmt.Fprintf(stderr, "  rtfilter -plugin peaking -c 1000,6,0.7 in.wav out.wav\n")
		fmt.Fprintf(stderr, "  rtfilter -plugin butterworth_lowpass -c 1000,4 -response\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	opts.args = fs.Args()

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	reg := plugin.Default()

	if opts.list {
		return printList(stdout, reg)
	}

	if opts.plugin == "" {
		fmt.Fprintf(stderr, "error: -plugin is required (use -list to see available)\n")
		return errUsage
	}

	kind, err := plugin.ParseKind(opts.plugin)
	if err != nil {
		return err
	}

	controls, err := parseControls(opts.controls)
	if err != nil {
		return err
	}

	if opts.response {
		return printResponse(stdout, reg, kind, controls, opts.rate, opts.fftSize, logger)
	}

	if len(opts.args) < minRequiredArgs {
		fmt.Fprintf(stderr, "error: input and output paths are required\n")
		return errUsage
	}

	stats, err := filterWAV(filterJob{
		inputPath:  opts.args[0],
		outputPath: opts.args[1],
		registry:   reg,
		kind:       kind,
		controls:   controls,
		blockSize:  opts.block,
		logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"plugin":      stats.label,
		"frames":      stats.frames,
		"blocks":      stats.blocks,
		"sample_rate": stats.sampleRate,
		"bit_depth":   stats.bitDepth,
	}).Info("processed")

	return nil
}

func printList(w io.Writer, reg *plugin.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tLabel\tName\tPorts\tControls\n")
	fmt.Fprintf(tw, "--\t-----\t----\t-----\t--------\n")

	for _, d := range reg.All() {
		names := ""
		for i := 0; i < d.Controls(); i++ {
			if i > 0 {
				names += ", "
			}
			names += d.Ports[i].Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", d.ID, d.Label, d.Name, len(d.Ports), names)
	}

	return tw.Flush()
}

func printResponse(
	w io.Writer,
	reg *plugin.Registry,
	kind plugin.Kind,
	controls []float32,
	sampleRate float64,
	fftSize int,
	logger logrus.FieldLogger,
) error {
	cfg := core.ApplyProcessorOptions(core.WithSampleRate(sampleRate))

	inst, err := newInstance(reg, kind, responseChannels, cfg.SampleRate, controls, logger)
	if err != nil {
		return err
	}
	defer inst.Cleanup()

	res, err := response.Measure(inst, cfg.SampleRate, fftSize)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Frequency [Hz]\tMagnitude [dB]\t\n")
	for _, f := range response.OctaveFrequencies(responseStartHz, responseStopHz) {
		if f > cfg.SampleRate/2 {
			break
		}
		fmt.Fprintf(tw, "%.2f\t%.2f\t\n", f, res.At(f))
	}

	return tw.Flush()
}

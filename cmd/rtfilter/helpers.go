package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rtfilter/dsp/core"
	"github.com/cwbudde/algo-rtfilter/plugin"
)

const wavFormatPCM = 1

var (
	errTooManyControls  = errors.New("too many control values")
	errUnsupportedDepth = errors.New("unsupported bit depth")
	errNoDescriptor     = errors.New("no descriptor for channel count")
)

// parseControls parses "1000, 6,0.7" into control values.
func parseControls(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("control %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// newInstance creates the kind's descriptor for channels and binds
// controls in port order. The control slice must outlive the instance.
func newInstance(
	reg *plugin.Registry,
	kind plugin.Kind,
	channels int,
	sampleRate float64,
	controls []float32,
	logger logrus.FieldLogger,
) (*plugin.Instance, error) {
	d, ok := reg.Find(kind, channels)
	if !ok {
		return nil, fmt.Errorf("%w: %s with %d channels", errNoDescriptor, kind, channels)
	}
	if len(controls) > d.Controls() {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", errTooManyControls, d.Label, d.Controls(), len(controls))
	}

	inst, err := d.New(sampleRate, plugin.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	for i := range controls {
		if err := inst.BindControl(i, &controls[i]); err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{
			"port":  d.Ports[i].Name,
			"value": controls[i],
		}).Debug("bound control")
	}

	return inst, nil
}

type filterJob struct {
	inputPath  string
	outputPath string
	registry   *plugin.Registry
	kind       plugin.Kind
	controls   []float32
	blockSize  int
	logger     logrus.FieldLogger
}

type filterStats struct {
	label      string
	sampleRate int
	bitDepth   int
	frames     int64
	blocks     int64
}

// wavInput holds an open, validated WAV file.
type wavInput struct {
	file     *os.File
	decoder  *wav.Decoder
	format   *audio.Format
	bitDepth int
}

func openWAVInput(path string) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	bitDepth := int(dec.BitDepth)
	if _, err := fullScale(bitDepth); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &wavInput{
		file:     f,
		decoder:  dec,
		format:   dec.Format(),
		bitDepth: bitDepth,
	}, nil
}

func (w *wavInput) Close() error {
	return w.file.Close()
}

// wavOutput is a WAV file being written.
type wavOutput struct {
	file    *os.File
	encoder *wav.Encoder
}

func createWAVOutput(path string, format *audio.Format, bitDepth int) (*wavOutput, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutput{
		file:    f,
		encoder: wav.NewEncoder(f, format.SampleRate, bitDepth, format.NumChannels, wavFormatPCM),
	}, nil
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutput) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

// fullScale returns 2^(bitDepth-1), the magnitude that maps to 1.0.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16, 24, 32:
		return math.Ldexp(1, bitDepth-1), nil
	default:
		return 0, fmt.Errorf("%w: %d", errUnsupportedDepth, bitDepth)
	}
}

// deinterleave splits frames of interleaved PCM into per-channel float
// buffers scaled to [-1, 1).
func deinterleave(src []int, dst [][]float32, frames int, scale float64) {
	inv := 1 / scale
	channels := len(dst)
	for ch, buf := range dst {
		for i := 0; i < frames; i++ {
			buf[i] = float32(float64(src[i*channels+ch]) * inv)
		}
	}
}

// interleave merges per-channel float buffers back to PCM, rounding and
// saturating to the integer range of scale.
func interleave(src [][]float32, dst []int, frames int, scale float64) {
	lo, hi := -scale, scale-1
	channels := len(src)
	for ch, buf := range src {
		for i := 0; i < frames; i++ {
			v := math.Round(float64(buf[i]) * scale)
			dst[i*channels+ch] = int(core.Clamp(v, lo, hi))
		}
	}
}

// filterWAV runs the job's filter over the input file and writes the result
// with the input's sample rate, channel count and bit depth.
func filterWAV(job filterJob) (*filterStats, error) {
	in, err := openWAVInput(job.inputPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	channels := in.format.NumChannels
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(float64(in.format.SampleRate)),
		core.WithBlockSize(job.blockSize),
	)

	inst, err := newInstance(job.registry, job.kind, channels, cfg.SampleRate, job.controls, job.logger)
	if err != nil {
		return nil, err
	}
	defer inst.Cleanup()

	d := inst.Descriptor()
	bufs := make([][]float32, channels)
	for ch := range bufs {
		bufs[ch] = core.EnsureLen(bufs[ch], cfg.BlockSize)
		if err := inst.BindAudio(d.InputPort(ch), bufs[ch]); err != nil {
			return nil, err
		}
		if err := inst.BindAudio(d.OutputPort(ch), bufs[ch]); err != nil {
			return nil, err
		}
	}
	inst.Activate()

	out, err := createWAVOutput(job.outputPath, in.format, in.bitDepth)
	if err != nil {
		return nil, err
	}
	finished := false
	defer func() {
		if !finished {
			_ = out.Close()
		}
	}()

	scale, _ := fullScale(in.bitDepth)
	inBuf := &audio.IntBuffer{Data: make([]int, cfg.BlockSize*channels), Format: in.format}
	outBuf := &audio.IntBuffer{
		Data:           make([]int, cfg.BlockSize*channels),
		Format:         in.format,
		SourceBitDepth: in.bitDepth,
	}

	stats := &filterStats{label: d.Label, sampleRate: in.format.SampleRate, bitDepth: in.bitDepth}

	for {
		inBuf.Data = inBuf.Data[:cap(inBuf.Data)]
		n, err := in.decoder.PCMBuffer(inBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		frames := n / channels
		if frames == 0 {
			break
		}

		deinterleave(inBuf.Data, bufs, frames, scale)
		inst.Run(frames)

		outBuf.Data = outBuf.Data[:frames*channels]
		interleave(bufs, outBuf.Data, frames, scale)
		if err := out.encoder.Write(outBuf); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		stats.frames += int64(frames)
		stats.blocks++
	}

	finished = true
	if err := out.Close(); err != nil {
		return nil, err
	}

	return stats, nil
}

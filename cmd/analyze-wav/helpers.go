package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/floats"

	analyzer "github.com/tphakala/go-audio-analyzer"
	"github.com/tphakala/go-audio-analyzer/internal/pipeline"
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
	format   *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
		if d, err := decoder.Duration(); err == nil {
			log.Printf("Duration: %s", d)
		}
	}

	return &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: bitDepth,
		format:   format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// getMaxValue returns the full-scale integer value for a bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// analyzeBuffers holds all preallocated buffers for one stream.
type analyzeBuffers struct {
	intBuffer *audio.IntBuffer
	samples   []float32   // normalised interleaved chunk
	frames    [][]float32 // deinterleaved chunk
	pre       [][]float32 // current block before the chain
	post      [][]float32 // current block after the chain
	invMaxVal float64
}

// newAnalyzeBuffers creates and preallocates all processing buffers.
func newAnalyzeBuffers(channels, bitDepth, blockSize int, format *audio.Format) *analyzeBuffers {
	b := &analyzeBuffers{
		intBuffer: &audio.IntBuffer{
			Data:   make([]int, bufferSize*channels),
			Format: format,
		},
		samples:   make([]float32, bufferSize*channels),
		frames:    make([][]float32, channels),
		pre:       make([][]float32, channels),
		post:      make([][]float32, channels),
		invMaxVal: 1.0 / getMaxValue(bitDepth),
	}
	for ch := range channels {
		b.frames[ch] = make([]float32, bufferSize)
		b.pre[ch] = make([]float32, blockSize)
		b.post[ch] = make([]float32, blockSize)
	}
	return b
}

// normalise converts PCM integers to [-1, 1] floats.
func (b *analyzeBuffers) normalise(data []int) []float32 {
	out := b.samples[:len(data)]
	for i, v := range data {
		out[i] = float32(float64(v) * b.invMaxVal)
	}
	return out
}

// load copies m frames starting at start into both block buffers.
func (b *analyzeBuffers) load(start, m int) {
	for ch := range b.frames {
		copy(b.pre[ch][:m], b.frames[ch][start:start+m])
		copy(b.post[ch][:m], b.frames[ch][start:start+m])
	}
}

// wavOutputWriter wraps the output file and encoder.
type wavOutputWriter struct {
	file     *os.File
	encoder  *wav.Encoder
	buf      *audio.IntBuffer
	channels int
	maxVal   float64
}

// createWAVOutput creates the output file and encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavPCMFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
		maxVal:   getMaxValue(bitDepth),
	}, nil
}

// WriteBlock interleaves, clamps and writes m frames.
func (w *wavOutputWriter) WriteBlock(block [][]float32, m int) error {
	need := m * w.channels
	if cap(w.buf.Data) < need {
		w.buf.Data = make([]int, need)
	}
	w.buf.Data = w.buf.Data[:need]

	for i := range m {
		for ch := range w.channels {
			sample := min(max(float64(block[ch][i]), -1), 1)
			w.buf.Data[i*w.channels+ch] = int(sample * w.maxVal)
		}
	}
	return w.encoder.Write(w.buf)
}

// Close finalises the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// parseMode maps a -mode flag value to an analyse mode.
func parseMode(s string) (analyzer.AnalyseMode, error) {
	switch strings.ToLower(s) {
	case "mono", "m":
		return analyzer.AnalyseMono, nil
	case "lr", "left-right", "stereo":
		return analyzer.AnalyseLeftRight, nil
	case "ms", "mid-side":
		return analyzer.AnalyseMidSide, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want mono, lr or ms)", s)
	}
}

// parseStage parses one -chain element.
func parseStage(s string) (pipeline.StageSpec, error) {
	kind, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch strings.ToLower(kind) {
	case "gain":
		db, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return pipeline.StageSpec{}, fmt.Errorf("stage %q: %w", s, err)
		}
		return pipeline.StageSpec{Type: pipeline.StageGain, GainDB: db}, nil
	case "delay":
		d, err := strconv.Atoi(arg)
		if err != nil {
			return pipeline.StageSpec{}, fmt.Errorf("stage %q: %w", s, err)
		}
		return pipeline.StageSpec{Type: pipeline.StageDelay, DelaySamples: d}, nil
	case "invert":
		ch := -1
		if hasArg {
			var err error
			if ch, err = strconv.Atoi(arg); err != nil {
				return pipeline.StageSpec{}, fmt.Errorf("stage %q: %w", s, err)
			}
		}
		return pipeline.StageSpec{Type: pipeline.StageInvert, Channel: ch}, nil
	default:
		return pipeline.StageSpec{}, fmt.Errorf("unknown stage %q", s)
	}
}

// buildChain loads each -chain stage into the next slot and applies -bypass.
func buildChain(channels int, chainSpec, bypass string) (*pipeline.Pipeline, error) {
	p := pipeline.New(channels)
	if chainSpec != "" {
		for i, s := range strings.Split(chainSpec, ",") {
			spec, err := parseStage(s)
			if err != nil {
				return nil, err
			}
			if err := p.Insert(i, spec); err != nil {
				return nil, err
			}
		}
	}
	if bypass != "" {
		for _, s := range strings.Split(bypass, ",") {
			i, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("bypass %q: %w", s, err)
			}
			if err := p.SetBypass(i, true); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// report prints one analysis snapshot.
func report(w io.Writer, a *analyzer.Analyzer, frames int64, rate int) error {
	s, err := a.Snapshot()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "t=%.2fs  latency=%d  skipped=%d  evicted=%d\n",
		float64(frames)/float64(rate), s.Stats.ProcessingDelay, s.Stats.SkippedMigrations, s.Stats.Pre.Evicted)

	for ch, l := range s.Levels {
		fmt.Fprintf(w, "  ch%d  rms %7.2f dBFS  hold %7.2f dBFS  gain rms %+6.2f dB  peak %+6.2f dB\n",
			ch, l.RMSPostDB(), l.PeakHoldDB(), l.RMSGainDB, l.PeakGainDB)
	}

	fmt.Fprintf(w, "  correlation  pre %+.3f  post %+.3f\n", s.Stereo.Pre.Correlation, s.Stereo.Post.Correlation)

	curves := []struct {
		name  string
		gain  []float64
		phase []float64
	}{
		{"A", s.Difference.GainA, s.Difference.PhaseA},
		{"B", s.Difference.GainB, s.Difference.PhaseB},
	}
	for _, c := range curves {
		if c.gain == nil {
			continue
		}
		fmt.Fprintf(w, "  difference %s (%s)  gain mean %+6.2f dB [%+.2f, %+.2f]  phase max %.3f turns\n",
			c.name, s.Difference.Mode,
			floats.Sum(c.gain)/float64(len(c.gain)), floats.Min(c.gain), floats.Max(c.gain),
			max(floats.Max(c.phase), -floats.Min(c.phase)))
	}

	for _, side := range []struct {
		name  string
		curve []float64
	}{{"pre", s.Spectrum.Pre}, {"post", s.Spectrum.Post}} {
		i := floats.MaxIdx(side.curve)
		fmt.Fprintf(w, "  spectrum %-4s peak %8.1f Hz at %7.2f dB\n", side.name, s.Spectrum.Frequencies[i], side.curve[i])
	}

	if cols := s.Waveform.Columns; len(cols) > 0 {
		last := cols[len(cols)-1]
		fmt.Fprintf(w, "  waveform  post [%+.3f, %+.3f]  gain %+6.2f dB\n", last.PostMin, last.PostMax, last.GainDB)
	}
	return nil
}

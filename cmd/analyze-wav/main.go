// Command analyze-wav streams a WAV file through a simulated processing
// chain and prints what the chain does to the signal.
//
// Usage:
//
//	analyze-wav input.wav
//	analyze-wav -chain gain:-6,delay:256 -every 0.5 input.wav
//	analyze-wav -chain invert:1 -mode ms -out post.wav input.wav
//	analyze-wav -chain gain:3,delay:64,gain:-3 -bypass 2 input.wav
//
// Each stage of -chain occupies the next processor slot. The reported
// latency of the chain is fed back as the processing delay so the pre and
// post measurements line up.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	analyzer "github.com/tphakala/go-audio-analyzer"
	"github.com/tphakala/go-audio-analyzer/internal/pipeline"
)

const (
	// Buffer size for file reads (frames per chunk)
	bufferSize = 65536

	// Sample format constants
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// CLI defaults
	defaultBlockSize    = 512
	defaultWidth        = 64
	defaultEverySeconds = 1.0
	minRequiredArgs     = 1

	wavPCMFormat = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() (err error) {
	chainSpec := flag.String("chain", "", "Comma-separated stages: gain:<dB>, delay:<samples>, invert[:<channel>]")
	bypass := flag.String("bypass", "", "Comma-separated slot indices to bypass")
	block := flag.Int("block", defaultBlockSize, "Audio block size in frames")
	fftSize := flag.Int("fft", 2048, "FFT size: 1024, 2048 or 4096")
	mode := flag.String("mode", "mono", "Difference mode: mono, lr, ms")
	width := flag.Int("width", defaultWidth, "Display columns")
	every := flag.Float64("every", defaultEverySeconds, "Report interval in seconds of audio")
	outPath := flag.String("out", "", "Write the post-chain signal to this WAV file")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -chain gain:-6 music.wav               # Expect -6 dB everywhere\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -chain delay:512 music.wav             # Latency is compensated\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -chain invert:1 -mode ms music.wav     # Swaps mid and side\n", os.Args[0])
		return errors.New("insufficient arguments")
	}
	if *block < 1 {
		return fmt.Errorf("block size must be positive, got %d", *block)
	}

	analyseMode, err := parseMode(*mode)
	if err != nil {
		return err
	}

	input, err := openWAVInput(args[0], *verbose)
	if err != nil {
		return err
	}
	defer func() { _ = input.Close() }()

	chain, err := buildChain(input.channels, *chainSpec, *bypass)
	if err != nil {
		return err
	}
	if *verbose {
		log.Printf("Chain: %v (latency %d samples)", chain.Describe(), chain.GetTotalLatency())
		log.Printf("Route: %v", chain.Chain().Route())
	}

	config := analyzer.DefaultConfig(float64(input.rate), input.channels)
	config.FFTSize = *fftSize
	config.Width = *width
	if *verbose {
		config.Logger = log.Default()
	}
	a, err := analyzer.New(&config)
	if err != nil {
		return err
	}
	if err := a.Params().SetAnalyseMode(analyseMode); err != nil {
		return err
	}
	if *verbose {
		info := a.GetInfo()
		log.Printf("History: %d samples, SIMD: %s", info.HistoryCapacity, info.SIMDType)
	}

	var output *wavOutputWriter
	if *outPath != "" {
		output, err = createWAVOutput(*outPath, input.rate, input.bitDepth, input.channels)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := output.Close(); err == nil {
				err = closeErr
			}
		}()
	}

	return analyzeStream(input, chain, a, output, *block, int64(*every*float64(input.rate)), os.Stdout)
}

// analyzeStream reads the whole input, runs it through chain and the
// analyzer in blocks and prints a report every reportEvery frames.
func analyzeStream(
	input *wavInputInfo,
	chain *pipeline.Pipeline,
	a *analyzer.Analyzer,
	output *wavOutputWriter,
	blockSize int,
	reportEvery int64,
	w io.Writer,
) error {
	buffers := newAnalyzeBuffers(input.channels, input.bitDepth, blockSize, input.format)
	reportEvery = max(reportEvery, 1)

	var frames, nextReport int64
	nextReport = reportEvery
	for {
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		n /= input.channels
		buffers.intBuffer.Data = buffers.intBuffer.Data[:n*input.channels]
		analyzer.Deinterleave(buffers.frames, buffers.normalise(buffers.intBuffer.Data), input.channels)

		for start := 0; start < n; start += blockSize {
			m := min(blockSize, n-start)
			buffers.load(start, m)
			chain.Process(buffers.post, m)
			a.ProcessBlock(buffers.pre, buffers.post, m, chain.GetTotalLatency())

			if output != nil {
				if err := output.WriteBlock(buffers.post, m); err != nil {
					return fmt.Errorf("failed to write audio data: %w", err)
				}
			}

			frames += int64(m)
			if frames >= nextReport {
				if err := report(w, a, frames, input.rate); err != nil {
					return err
				}
				nextReport += reportEvery
			}
		}
		buffers.intBuffer.Data = buffers.intBuffer.Data[:cap(buffers.intBuffer.Data)]
	}

	return report(w, a, frames, input.rate)
}

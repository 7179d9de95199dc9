// Package analyzer measures what an audio processing chain does to a signal
// by comparing the audio before the chain (pre) with the audio after it
// (post), in real time.
//
// The audio callback hands every block to the analyzer twice, once per tap.
// Each tap is stored in a short-term ring that the callback fills and then
// migrates into a longer history ring. A separate analysis goroutine reads
// windows out of history at any lookback, shifted by the chain latency so
// that pre and post line up sample for sample.
//
// # Features
//
//   - Lock-free, allocation-free audio path built on two-region ring indices
//   - Peak-held pre and post magnitude spectra on a logarithmic axis
//   - Post/pre gain and phase difference curves in mono, left/right or
//     mid/side, smoothed by a rolling average
//   - Stereo correlation meters and fading vectorscope point clouds
//   - Per-channel RMS and peak meters with gain read-outs and peak hold
//   - Scrolling waveform overview with a post/pre RMS gain curve
//   - SIMD dot products via github.com/tphakala/simd and gonum FFTs
//
// # Quick Start
//
// Create an analyzer and feed it from the audio callback:
//
//	a, err := analyzer.NewStereo(48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// audio goroutine, once per block
//	a.ProcessBlock(preBlock, postBlock, n, chainLatency)
//
// Then poll it from the display side:
//
//	err = a.Run(ctx, analyzer.DefaultRefreshInterval, func(s analyzer.Snapshot) {
//	    draw(s)
//	})
//
// Hosts that run the chain in place can call [Analyzer.WriteBlock] with
// [Pre], process the block, call it again with [Post] and finish with
// [Analyzer.Migrate].
//
// Custom displays can read history directly with [Analyzer.CopyFromHistory],
// [Analyzer.RMS] and [Analyzer.Peak] at any lookback, and locate the newest
// sample with [Analyzer.LastWrittenIndex].
//
// # Knobs
//
// [Params] holds the runtime settings: FFT size, display ranges, peak-hold
// return time, averaging depth, analyse mode, vectorscope zoom and vanish
// depth, waveform span and range, and freeze. Setters validate their input
// and return [ErrInvalidParam]; changes take effect on the next refresh.
//
// # Thread Safety
//
// [Analyzer.ProcessBlock], [Analyzer.WriteBlock], [Analyzer.Migrate] and
// [Analyzer.SetProcessingDelay] belong to a single audio goroutine.
// [Analyzer.Snapshot] and [Analyzer.Run] belong to a single analysis
// goroutine, as do the history reads. [Params] may be changed from anywhere.
// [Analyzer.Reset] and [Analyzer.Reconfigure] must only be called while
// audio is stopped.
//
// Sample data is shared between the two goroutines without locks. A window
// read while a migration is in flight may mix old and new samples at its
// edge; the index bookkeeping itself is atomic and never tears.
package analyzer

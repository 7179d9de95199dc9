package spectral

// FFT sizing constants
const (
	minFFTSize = 16 // Smallest transform accepted

	// fftHermitianDivisor is used to calculate unique frequency bins in real FFT.
	// Due to Hermitian symmetry, a real FFT of size N has N/2 + 1 unique complex coefficients.
	fftHermitianDivisor = 2

	// magnitudeReferenceDivisor scales |X| so a full-scale sine reads 0 dB:
	// a Hann-windowed sine of amplitude A peaks at A*N/4.
	magnitudeReferenceDivisor = 4
)

// Peak hold and averaging defaults
const (
	DefaultDecayRatio = 0.92 // Per-frame decay of held spectrum peaks
	DefaultDepth      = 8    // Rolling-average depth for difference curves

	gainHistoryInit  = 1.0 // Rolling gain history starts at unity
	phaseHistoryInit = 0.0 // Rolling phase history starts aligned
)

// Logarithmic axis constants
const (
	lowestAxisFrequency = 10.0 // Frequency of the first pixel column in Hz
	nyquistDivisor      = 2.0
)

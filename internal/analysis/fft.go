package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// FFT returns the n/2+1 non-negative frequency coefficients of data after
// zero-padding it to the next power of two n.
func FFT(data []float64) []complex128 {
	n := 1
	for n < len(data) {
		n <<= 1
	}
	buf := make([]float64, n)
	copy(buf, data)
	return fourier.NewFFT(n).Coefficients(nil, buf)
}

// PowerSpectrum holds the magnitudes of bins 0 to n/2-1.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(data)
	ps := make([]float64, len(f)-1)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// DominantFrequency returns the frequency (in cycles per time unit) of the
// strongest non-constant component of a series sampled every dt. The mean
// is removed first; a flat or too short series gives 0.
func DominantFrequency(series []float64, dt float64) float64 {
	if len(series) < 4 || dt <= 0 {
		return 0
	}
	mean := stat.Mean(series, nil)
	centred := make([]float64, len(series))
	for i, v := range series {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	best, bestPow := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPow {
			best, bestPow = k, ps[k]
		}
	}
	if bestPow < 1e-12 {
		return 0
	}
	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt)
}

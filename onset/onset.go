package onset

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/jsphweid/melodex/constants"
)

// Only the low bins matter for attack transients; cutting the spectrum
// here keeps the flux cheap without hurting detection.
const fluxBins = 256

// Half-width of the adaptive threshold window, in flux frames.
const localWindow = 10

// Width of the energy-trough search around a flux peak, in seconds.
const refineWindowSec = 0.02

type Options struct {
	WindowSize int
	HopSize    int
	ThresholdK float64
	MinGap     float64 // seconds
}

func DefaultOptions() Options {
	return Options{
		WindowSize: constants.DefaultWindowSize,
		HopSize:    constants.DefaultHopSize,
		ThresholdK: constants.DefaultThresholdK,
		MinGap:     constants.DefaultMinGapSec,
	}
}

type peak struct {
	time     float64
	strength float64
}

// Detect finds note attack times from spectral-flux peaks. The result
// is strictly increasing with at least MinGap between entries; fewer
// than 2 usable frames yields an empty result.
func Detect(samples []float32, sampleRate int, opts Options) []float64 {
	flux := spectralFlux(samples, opts.WindowSize, opts.HopSize)
	if len(flux) < 2 {
		return nil
	}

	secondsPerFrame := float64(opts.HopSize) / float64(sampleRate)

	var accepted []peak
	for i := 1; i < len(flux)-1; i++ {
		if flux[i] <= flux[i-1] || flux[i] <= flux[i+1] {
			continue
		}
		// A global threshold fails under crescendo/decrescendo, so the
		// bar is local: mean + k*stddev over the surrounding frames.
		mean, std := localStats(flux, i, localWindow)
		if flux[i] <= mean+opts.ThresholdK*std {
			continue
		}

		p := peak{time: float64(i) * secondsPerFrame, strength: flux[i]}
		if n := len(accepted); n > 0 && p.time-accepted[n-1].time < opts.MinGap {
			// Too close to the previous onset: keep whichever is stronger.
			if p.strength > accepted[n-1].strength {
				accepted[n-1] = p
			}
			continue
		}
		accepted = append(accepted, p)
	}

	res := make([]float64, 0, len(accepted))
	for _, p := range accepted {
		res = append(res, refine(samples, sampleRate, p.time))
	}

	// Refinement can nudge neighbors toward each other; keep the
	// sequence strictly increasing.
	sort.Float64s(res)
	var out []float64
	for _, t := range res {
		if len(out) == 0 || t > out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

// spectralFlux returns the positive-only frame-to-frame magnitude
// change, summed over the low spectrum. Half-wave rectification is what
// makes this an onset signal instead of a generic energy signal.
func spectralFlux(samples []float32, windowSize, hopSize int) []float64 {
	if len(samples) < windowSize {
		return nil
	}
	numFrames := (len(samples)-windowSize)/hopSize + 1
	bins := fluxBins
	if windowSize/2 < bins {
		bins = windowSize / 2
	}

	flux := make([]float64, numFrames)
	prev := make([]float64, bins)
	frame := make([]float64, windowSize)
	for i := 0; i < numFrames; i++ {
		offset := i * hopSize
		for j := 0; j < windowSize; j++ {
			frame[j] = float64(samples[offset+j])
		}
		window.Apply(frame, window.Hann)
		spectrum := fft.FFTReal(frame)

		var sum float64
		for b := 0; b < bins; b++ {
			mag := cmplx.Abs(spectrum[b])
			if d := mag - prev[b]; d > 0 {
				sum += d
			}
			prev[b] = mag
		}
		if i > 0 {
			flux[i] = sum
		}
	}
	return flux
}

func localStats(flux []float64, center, halfWidth int) (mean, std float64) {
	lo := center - halfWidth
	if lo < 0 {
		lo = 0
	}
	hi := center + halfWidth
	if hi > len(flux)-1 {
		hi = len(flux) - 1
	}
	n := float64(hi - lo + 1)
	for i := lo; i <= hi; i++ {
		mean += flux[i]
	}
	mean /= n
	for i := lo; i <= hi; i++ {
		d := flux[i] - mean
		std += d * d
	}
	std = math.Sqrt(std / n)
	return mean, std
}

// refine snaps an onset to the short-term energy trough near the flux
// peak. The true attack sits just after the pre-attack trough, not at
// the peak itself.
func refine(samples []float32, sampleRate int, t float64) float64 {
	half := int(refineWindowSec / 2 * float64(sampleRate))
	center := int(t * float64(sampleRate))
	lo := center - half
	if lo < 0 {
		lo = 0
	}
	hi := center + half
	if hi > len(samples) {
		hi = len(samples)
	}

	const block = 64
	best := t
	bestEnergy := math.Inf(1)
	for pos := lo; pos+block <= hi; pos += block / 2 {
		var e float64
		for j := pos; j < pos+block; j++ {
			e += float64(samples[j]) * float64(samples[j])
		}
		if e < bestEnergy {
			bestEnergy = e
			best = float64(pos) / float64(sampleRate)
		}
	}
	return best
}

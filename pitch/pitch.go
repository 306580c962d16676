package pitch

import (
	"math"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

type Options struct {
	WindowSize       int
	HopSize          int
	MinFreq          float64
	MaxFreq          float64
	ClarityThreshold float64
	EnergyFloor      float64 // RMS below this marks the frame invalid
}

func DefaultOptions() Options {
	return Options{
		WindowSize:       constants.DefaultWindowSize,
		HopSize:          constants.DefaultHopSize,
		MinFreq:          constants.DefaultMinFreq,
		MaxFreq:          constants.DefaultMaxFreq,
		ClarityThreshold: constants.DefaultClarityThreshold,
		EnergyFloor:      0.01,
	}
}

// DetectContour runs an NSDF (autocorrelation-family) estimator over
// overlapping windows and returns a frame-per-hop contour. Frames that
// fail the energy or clarity gates are marked invalid, never guessed.
// Isolation removal and octave correction run afterwards, in that
// order.
func DetectContour(samples []float32, sampleRate int, opts Options) model.PitchContour {
	contour := model.PitchContour{SampleRate: sampleRate, HopSize: opts.HopSize}
	if len(samples) < opts.WindowSize {
		return contour
	}

	numFrames := (len(samples)-opts.WindowSize)/opts.HopSize + 1
	frame := make([]float64, opts.WindowSize)
	for i := 0; i < numFrames; i++ {
		offset := i * opts.HopSize
		for j := 0; j < opts.WindowSize; j++ {
			frame[j] = float64(samples[offset+j])
		}

		pf := model.PitchFrame{Time: float64(offset) / float64(sampleRate)}
		if rms(frame) >= opts.EnergyFloor {
			freq, clarity := estimate(frame, sampleRate, opts.MinFreq, opts.MaxFreq)
			pf.Clarity = clarity
			if freq >= opts.MinFreq && freq <= opts.MaxFreq && clarity >= opts.ClarityThreshold {
				setFrequency(&pf, freq)
			}
		}
		contour.Frames = append(contour.Frames, pf)
	}

	removeIsolated(contour.Frames)
	correctOctaveErrors(contour.Frames)
	return contour
}

func setFrequency(pf *model.PitchFrame, freq float64) {
	m := util.FreqToMidi(freq)
	pf.Frequency = freq
	pf.Midi = int(math.Round(m))
	pf.CentsDeviation = (m - math.Round(m)) * 100
	pf.Valid = true
}

func rms(frame []float64) float64 {
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// estimate returns the fundamental frequency of one window and a
// periodicity clarity score in [0,1], via the normalized square
// difference function with parabolic peak interpolation.
func estimate(frame []float64, sampleRate int, minFreq, maxFreq float64) (float64, float64) {
	maxLag := int(float64(sampleRate) / minFreq)
	minLag := int(float64(sampleRate) / maxFreq)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 2 {
		minLag = 2
	}
	if minLag >= maxLag {
		return 0, 0
	}

	nsdf := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var acf, norm float64
		for i := 0; i < len(frame)-lag; i++ {
			acf += frame[i] * frame[i+lag]
			norm += frame[i]*frame[i] + frame[i+lag]*frame[i+lag]
		}
		if norm > 0 {
			nsdf[lag] = 2 * acf / norm
		}
	}

	// Collect local maxima, then take the first one that comes close to
	// the global best. Taking the global best outright causes octave
	// errors toward subharmonics.
	type candidate struct {
		lag   int
		value float64
	}
	var peaks []candidate
	globalBest := 0.0
	for lag := minLag + 1; lag < maxLag; lag++ {
		if nsdf[lag] > nsdf[lag-1] && nsdf[lag] >= nsdf[lag+1] && nsdf[lag] > 0 {
			peaks = append(peaks, candidate{lag, nsdf[lag]})
			if nsdf[lag] > globalBest {
				globalBest = nsdf[lag]
			}
		}
	}
	if len(peaks) == 0 {
		return 0, 0
	}

	chosen := peaks[0]
	for _, p := range peaks {
		if p.value >= 0.9*globalBest {
			chosen = p
			break
		}
	}

	lag := refineLag(nsdf, chosen.lag)
	clarity := util.Clamp(chosen.value, 0, 1)
	return float64(sampleRate) / lag, clarity
}

// refineLag fits a parabola through the peak and its neighbors for
// sub-sample lag resolution.
func refineLag(nsdf []float64, lag int) float64 {
	if lag <= 0 || lag >= len(nsdf)-1 {
		return float64(lag)
	}
	a := nsdf[lag-1]
	b := nsdf[lag]
	c := nsdf[lag+1]
	denom := a - 2*b + c
	if denom == 0 {
		return float64(lag)
	}
	return float64(lag) + 0.5*(a-c)/denom
}

// removeIsolated invalidates a valid frame when fewer than 2 of its ±3
// valid neighbors sit within 2 semitones. Single-frame spikes go away
// without smearing real note boundaries.
func removeIsolated(frames []model.PitchFrame) {
	var drop []int
	for i, f := range frames {
		if !f.Valid {
			continue
		}
		support := 0
		for j := i - 3; j <= i+3; j++ {
			if j == i || j < 0 || j >= len(frames) || !frames[j].Valid {
				continue
			}
			if math.Abs(util.FreqToMidi(frames[j].Frequency)-util.FreqToMidi(f.Frequency)) <= 2 {
				support++
			}
		}
		if support < 2 {
			drop = append(drop, i)
		}
	}
	for _, i := range drop {
		frames[i] = model.PitchFrame{Time: frames[i].Time, Clarity: frames[i].Clarity}
	}
}

// correctOctaveErrors compares each valid frame against the median MIDI
// of its ±5 valid neighbors and folds clean octave outliers back.
func correctOctaveErrors(frames []model.PitchFrame) {
	for i := range frames {
		if !frames[i].Valid {
			continue
		}
		var neighbors []int
		for j := i - 5; j <= i+5; j++ {
			if j == i || j < 0 || j >= len(frames) || !frames[j].Valid {
				continue
			}
			neighbors = append(neighbors, frames[j].Midi)
		}
		if len(neighbors) == 0 {
			continue
		}
		median := util.MedianInt(neighbors)
		diff := frames[i].Midi - median
		switch {
		case diff >= 10 && diff <= 14:
			setFrequency(&frames[i], frames[i].Frequency/2)
		case diff <= -10 && diff >= -14:
			setFrequency(&frames[i], frames[i].Frequency*2)
		}
	}
}

// SmoothContour median-filters frequency and cents deviation. Only
// neighbor frames within 2 semitones of the center pool into the
// median, so a real pitch change never blurs into an in-between value.
func SmoothContour(contour model.PitchContour, windowSize int) model.PitchContour {
	if windowSize < 2 {
		return contour
	}
	half := windowSize / 2
	out := model.PitchContour{
		Frames:     make([]model.PitchFrame, len(contour.Frames)),
		SampleRate: contour.SampleRate,
		HopSize:    contour.HopSize,
	}
	copy(out.Frames, contour.Frames)

	for i, f := range contour.Frames {
		if !f.Valid {
			continue
		}
		centerMidi := util.FreqToMidi(f.Frequency)
		var freqs, cents []float64
		for j := i - half; j <= i+half; j++ {
			if j < 0 || j >= len(contour.Frames) || !contour.Frames[j].Valid {
				continue
			}
			if math.Abs(util.FreqToMidi(contour.Frames[j].Frequency)-centerMidi) > 2 {
				continue
			}
			freqs = append(freqs, contour.Frames[j].Frequency)
			cents = append(cents, contour.Frames[j].CentsDeviation)
		}
		if len(freqs) == 0 {
			continue
		}
		setFrequency(&out.Frames[i], util.Median(freqs))
		out.Frames[i].CentsDeviation = util.Median(cents)
	}
	return out
}

// SnapContour is the aggressive "auto-tune" variant: every valid frame
// snaps to the exact equal-tempered semitone and loses its cents
// deviation. It is a separate opt-in mode; nothing in the pipeline
// blends it with the expressive tracker.
func SnapContour(contour model.PitchContour) model.PitchContour {
	out := model.PitchContour{
		Frames:     make([]model.PitchFrame, len(contour.Frames)),
		SampleRate: contour.SampleRate,
		HopSize:    contour.HopSize,
	}
	copy(out.Frames, contour.Frames)
	for i := range out.Frames {
		if !out.Frames[i].Valid {
			continue
		}
		out.Frames[i].Frequency = util.MidiToFreq(out.Frames[i].Midi)
		out.Frames[i].CentsDeviation = 0
	}
	return out
}

package pitch

import (
	"math"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// SegmentPitch is the dominant pitch of a time range of the contour.
type SegmentPitch struct {
	Midi           int
	Frequency      float64
	CentsDeviation float64
	Confidence     float64
}

// GetSegmentPitch takes the mode of the rounded MIDI values across
// valid frames in [startTime, endTime). The mode, not the mean: frames
// at segment edges carry transient artifacts that would drag a mean
// off-pitch. Frequency and cents average over only the frames matching
// the mode; confidence = modeFraction * meanClarity of those frames.
// ok=false means no valid frame fell in range.
func GetSegmentPitch(contour model.PitchContour, startTime, endTime float64) (SegmentPitch, bool) {
	var midis []int
	var inRange []model.PitchFrame
	for _, f := range contour.Frames {
		if f.Time < startTime || f.Time >= endTime || !f.Valid {
			continue
		}
		midis = append(midis, f.Midi)
		inRange = append(inRange, f)
	}
	if len(midis) == 0 {
		return SegmentPitch{}, false
	}

	mode, count := util.Mode(midis)
	var freqSum, centsSum, claritySum float64
	matched := 0
	for _, f := range inRange {
		if f.Midi != mode {
			continue
		}
		freqSum += f.Frequency
		centsSum += f.CentsDeviation
		claritySum += f.Clarity
		matched++
	}

	modeFraction := float64(count) / float64(len(midis))
	return SegmentPitch{
		Midi:           mode,
		Frequency:      freqSum / float64(matched),
		CentsDeviation: centsSum / float64(matched),
		Confidence:     modeFraction * (claritySum / float64(matched)),
	}, true
}

const (
	minVibratoFrames = 10
	minVibratoRate   = 3.0
	maxVibratoRate   = 12.0
	minVibratoDepth  = 10.0 // cents
)

// DetectVibrato looks for periodic cents modulation in a frame range.
// Returns nil when the range is too short, too slow/fast, or too
// shallow to count as vibrato.
func DetectVibrato(contour model.PitchContour, startFrame, endFrame int) *model.VibratoShape {
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > len(contour.Frames) {
		endFrame = len(contour.Frames)
	}

	var cents []float64
	var times []float64
	for i := startFrame; i < endFrame; i++ {
		f := contour.Frames[i]
		if !f.Valid {
			continue
		}
		// modulation around the note center, not around the semitone
		cents = append(cents, util.FreqToMidi(f.Frequency)*100)
		times = append(times, f.Time)
	}
	if len(cents) < minVibratoFrames {
		return nil
	}

	mean := util.Mean(cents)
	centered := make([]float64, len(cents))
	var sq float64
	for i, c := range cents {
		centered[i] = c - mean
		sq += centered[i] * centered[i]
	}

	crossings := 0
	for i := 1; i < len(centered); i++ {
		if (centered[i-1] < 0) != (centered[i] < 0) {
			crossings++
		}
	}
	span := times[len(times)-1] - times[0]
	if span <= 0 {
		return nil
	}

	// each full cycle crosses zero twice
	rate := float64(crossings) / 2 / span
	depth := math.Sqrt2 * math.Sqrt(sq/float64(len(centered)))
	if rate < minVibratoRate || rate > maxVibratoRate || depth < minVibratoDepth {
		return nil
	}
	return &model.VibratoShape{RateHz: rate, DepthCents: depth}
}

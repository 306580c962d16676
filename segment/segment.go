package segment

import (
	"math"
	"sort"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/pitch"
)

type Options struct {
	MinNoteDuration float64
	UsePitchChanges bool
}

func DefaultOptions() Options {
	return Options{
		MinNoteDuration: constants.DefaultMinNoteDurationSec,
		UsePitchChanges: true,
	}
}

// fallback when the dynamics stage produced nothing for a segment
const defaultVelocity = 80

// Notes fuses onsets, the pitch contour, and per-segment dynamics into
// discrete note events. Segments shorter than MinNoteDuration or
// without a dominant pitch are dropped, never emitted as silent or
// zero-length notes. An empty onset list degrades to an empty result.
func Notes(onsets []float64, contour model.PitchContour, velocities []model.VelocityInfo, totalDuration float64, opts Options) []model.NoteEvent {
	var res []model.NoteEvent
	for i, start := range onsets {
		end := totalDuration
		if i+1 < len(onsets) {
			end = onsets[i+1]
		}
		if end-start < opts.MinNoteDuration {
			continue
		}

		sp, ok := pitch.GetSegmentPitch(contour, start, end)
		if !ok {
			continue
		}

		velocity := defaultVelocity
		if i < len(velocities) {
			velocity = velocities[i].Velocity
		}

		note := model.NoteEvent{
			MidiNumber:     sp.Midi,
			Frequency:      sp.Frequency,
			StartTime:      start,
			Duration:       end - start,
			Velocity:       velocity,
			CentsDeviation: sp.CentsDeviation,
			Vibrato:        vibratoInRange(contour, start, end),
		}

		if opts.UsePitchChanges {
			res = append(res, splitAtPitchChanges(note, contour)...)
		} else {
			res = append(res, note)
		}
	}
	return res
}

func vibratoInRange(contour model.PitchContour, start, end float64) *model.VibratoShape {
	lo, hi := frameRange(contour, start, end)
	return pitch.DetectVibrato(contour, lo, hi)
}

func frameRange(contour model.PitchContour, start, end float64) (int, int) {
	lo := sort.Search(len(contour.Frames), func(i int) bool {
		return contour.Frames[i].Time >= start
	})
	hi := sort.Search(len(contour.Frames), func(i int) bool {
		return contour.Frames[i].Time >= end
	})
	return lo, hi
}

// splitAtPitchChanges breaks one onset-bounded note wherever the
// contour moves more than a semitone after at least 3 stable frames.
// This catches slurred changes the onset detector has no transient
// for. Sub-segments under 50ms are discarded.
func splitAtPitchChanges(note model.NoteEvent, contour model.PitchContour) []model.NoteEvent {
	const minSplitDuration = 0.05
	const stableFramesNeeded = 3

	lo, hi := frameRange(contour, note.StartTime, note.EndTime())

	var cuts []float64
	stable := 0
	prevMidi := 0
	havePrev := false
	for i := lo; i < hi; i++ {
		f := contour.Frames[i]
		if !f.Valid {
			continue
		}
		if !havePrev {
			prevMidi = f.Midi
			havePrev = true
			stable = 1
			continue
		}
		diff := f.Midi - prevMidi
		if diff == 0 {
			stable++
			continue
		}
		if abs(diff) > 1 && stable >= stableFramesNeeded {
			cuts = append(cuts, f.Time)
		}
		prevMidi = f.Midi
		stable = 1
	}
	if len(cuts) == 0 {
		return []model.NoteEvent{note}
	}

	bounds := append([]float64{note.StartTime}, cuts...)
	bounds = append(bounds, note.EndTime())

	var res []model.NoteEvent
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if end-start < minSplitDuration {
			continue
		}
		sp, ok := pitch.GetSegmentPitch(contour, start, end)
		if !ok {
			continue
		}
		sub := note
		sub.StartTime = start
		sub.Duration = end - start
		sub.MidiNumber = sp.Midi
		sub.Frequency = sp.Frequency
		sub.CentsDeviation = sp.CentsDeviation
		sub.Vibrato = vibratoInRange(contour, start, end)
		res = append(res, sub)
	}
	if len(res) == 0 {
		return []model.NoteEvent{note}
	}
	return res
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// MergeConsecutiveNotes joins adjacent same-pitch notes separated by
// less than maxGap, averaging their velocities. Idempotent: merging an
// already-merged list changes nothing.
func MergeConsecutiveNotes(notes []model.NoteEvent, maxGap float64) []model.NoteEvent {
	var res []model.NoteEvent
	for _, n := range notes {
		if len(res) > 0 {
			last := &res[len(res)-1]
			gap := n.StartTime - last.EndTime()
			if n.MidiNumber == last.MidiNumber && gap < maxGap {
				last.Duration = n.EndTime() - last.StartTime
				last.Velocity = (last.Velocity + n.Velocity) / 2
				continue
			}
		}
		res = append(res, n)
	}
	return res
}

// FilterShortNotes drops notes below the duration floor. Zero-length
// notes never survive regardless of the floor.
func FilterShortNotes(notes []model.NoteEvent, minDuration float64) []model.NoteEvent {
	var res []model.NoteEvent
	for _, n := range notes {
		if n.Duration <= 0 || n.Duration < minDuration {
			continue
		}
		res = append(res, n)
	}
	return res
}

// NormalizeStartTimes shifts the whole sequence so the first note
// starts at time 0, removing leading silence.
func NormalizeStartTimes(notes []model.NoteEvent) []model.NoteEvent {
	if len(notes) == 0 {
		return notes
	}
	offset := notes[0].StartTime
	res := make([]model.NoteEvent, len(notes))
	for i, n := range notes {
		n.StartTime = math.Max(0, n.StartTime-offset)
		res[i] = n
	}
	return res
}

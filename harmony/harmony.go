package harmony

import (
	"fmt"
	"sort"

	"github.com/jsphweid/melodex/keysig"
	"github.com/jsphweid/melodex/model"
)

type Style string

const (
	ThirdsAbove Style = "thirds-above"
	ThirdsBelow Style = "thirds-below"
	SixthsAbove Style = "sixths-above"
	SixthsBelow Style = "sixths-below"
	Fifths      Style = "fifths"
	OctaveUp    Style = "octave-up"
	OctaveDown  Style = "octave-down"
	Triads      Style = "triads"
	SATB        Style = "satb"
	Chordal     Style = "chordal"
)

// Generate produces 1-3 harmony voices for a finalized melody. The
// melody is never mutated; every voice is built from scratch on each
// call. The chordal style requires a chord progression; diatonic and
// SATB styles ignore one.
func Generate(melody []model.NoteEvent, style Style, keyName string, chords []model.ChordEvent, tempo float64) ([]model.HarmonyVoice, error) {
	key, err := keysig.Parse(keyName)
	if err != nil {
		return nil, err
	}
	if len(melody) == 0 {
		return nil, nil
	}

	sorted := make([]model.NoteEvent, len(melody))
	copy(sorted, melody)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	switch style {
	case ThirdsAbove:
		return []model.HarmonyVoice{diatonicVoice(sorted, key, 2, "Thirds Above", "#e4572e")}, nil
	case ThirdsBelow:
		return []model.HarmonyVoice{diatonicVoice(sorted, key, -2, "Thirds Below", "#17bebb")}, nil
	case SixthsAbove:
		return []model.HarmonyVoice{diatonicVoice(sorted, key, 5, "Sixths Above", "#ffc914")}, nil
	case SixthsBelow:
		return []model.HarmonyVoice{diatonicVoice(sorted, key, -5, "Sixths Below", "#2e282a")}, nil
	case Fifths:
		return []model.HarmonyVoice{chromaticVoice(sorted, -7, "Fifths", "#76b041")}, nil
	case OctaveUp:
		return []model.HarmonyVoice{chromaticVoice(sorted, 12, "Octave Up", "#b33951")}, nil
	case OctaveDown:
		return []model.HarmonyVoice{chromaticVoice(sorted, -12, "Octave Down", "#3c91e6")}, nil
	case Triads:
		return []model.HarmonyVoice{
			diatonicVoice(sorted, key, -2, "Triad Third", "#17bebb"),
			diatonicVoice(sorted, key, -4, "Triad Fifth", "#76b041"),
		}, nil
	case SATB:
		return satbVoices(sorted, key), nil
	case Chordal:
		if len(chords) == 0 {
			return nil, fmt.Errorf("style %q requires a chord progression", style)
		}
		return []model.HarmonyVoice{chordalVoice(sorted, chords, tempo)}, nil
	default:
		return nil, fmt.Errorf("unknown harmony style %q", style)
	}
}

// chromaticVoice applies a fixed semitone offset with no counterpoint
// correction. Parallel motion is the intended sound of power fifths
// and octave doubling.
func chromaticVoice(melody []model.NoteEvent, offset int, name, color string) model.HarmonyVoice {
	notes := make([]model.NoteEvent, 0, len(melody))
	for _, n := range melody {
		h := n
		h.MidiNumber = clampMidi(n.MidiNumber + offset)
		h.Frequency = 0
		h.Vibrato = nil
		notes = append(notes, h)
	}
	return model.HarmonyVoice{DisplayName: name, Notes: notes, Color: color}
}

// CombineForPlayback merges the melody with any enabled voices and
// chord-derived notes, re-sorted by start time. The inputs are copied,
// never mutated.
func CombineForPlayback(melody []model.NoteEvent, voices []model.HarmonyVoice, chordNotes []model.NoteEvent) []model.NoteEvent {
	var res []model.NoteEvent
	res = append(res, melody...)
	for _, v := range voices {
		res = append(res, v.Notes...)
	}
	res = append(res, chordNotes...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartTime < res[j].StartTime
	})
	return res
}

func clampMidi(midi int) int {
	if midi < 0 {
		return 0
	}
	if midi > 127 {
		return 127
	}
	return midi
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// normInterval is the interval between two voices folded to one
// octave, order-independent.
func normInterval(a, b int) int {
	d := (a - b) % 12
	if d < 0 {
		d += 12
	}
	return d
}

// isParallelPerfect reports whether moving from (prevMel, prevHarm) to
// (mel, harm) keeps a perfect fifth or octave while both voices move
// in the same direction.
func isParallelPerfect(prevMel, prevHarm, mel, harm int) bool {
	prev := normInterval(prevMel, prevHarm)
	cur := normInterval(mel, harm)
	if prev != cur || (prev != 0 && prev != 7) {
		return false
	}
	melDir := sign(mel - prevMel)
	harmDir := sign(harm - prevHarm)
	return melDir != 0 && melDir == harmDir
}

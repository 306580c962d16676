package harmony

import (
	"github.com/jsphweid/melodex/keysig"
	"github.com/jsphweid/melodex/model"
)

// counterpoint scoring weights for diatonic styles
const (
	penaltyParallelPerfect = -50
	penaltyVoiceCrossing   = -40
	bonusContraryMotion    = 20
	penaltyParallelMotion  = -10
	bonusStepwise          = 15
	bonusSmallLeap         = 5
	penaltyLargeLeap       = -10
	bonusHomeOctave        = 10
)

// diatonicVoice harmonizes at a fixed scale-degree offset (+2 = third
// above, -5 = sixth below), then lets findBestHarmonyNote pull each
// note up or down an octave when the counterpoint rules prefer it.
func diatonicVoice(melody []model.NoteEvent, key keysig.KeySignature, degreeShift int, name, color string) model.HarmonyVoice {
	notes := make([]model.NoteEvent, 0, len(melody))
	var prevMel, prevHarm int
	havePrev := false
	for _, n := range melody {
		target := shiftByDegrees(n.MidiNumber, key, degreeShift)
		harm := findBestHarmonyNote(n.MidiNumber, target, degreeShift, prevMel, prevHarm, havePrev)

		h := n
		h.MidiNumber = clampMidi(harm)
		h.Frequency = 0
		h.Vibrato = nil
		notes = append(notes, h)

		prevMel = n.MidiNumber
		prevHarm = harm
		havePrev = true
	}
	return model.HarmonyVoice{DisplayName: name, Notes: notes, Color: color}
}

// shiftByDegrees moves a pitch through the scale by a number of
// degrees. Chromatic melody notes borrow the nearest scale degree
// below before shifting.
func shiftByDegrees(midi int, key keysig.KeySignature, degreeShift int) int {
	scale := key.ScalePitchClasses()

	degree, ok := key.DegreeOfMidi(midi)
	baseOffset := 0
	if !ok {
		// nearest diatonic neighbor below
		for delta := 1; delta <= 6; delta++ {
			if d, found := key.DegreeOfMidi(midi - delta); found {
				degree = d
				baseOffset = -delta
				break
			}
		}
	}

	idx := degree + degreeShift
	target := ((idx % 7) + 7) % 7
	octaves := (idx - target) / 7

	// semitone interval of each degree above the tonic; monotonic in
	// the degree, so degree arithmetic maps cleanly onto semitones
	ivFrom := (scale[degree] - scale[0] + 12) % 12
	ivTo := (scale[target] - scale[0] + 12) % 12

	return midi + baseOffset + ivTo - ivFrom + 12*octaves
}

// findBestHarmonyNote scores the target and its ±1 octave transpositions
// against classic counterpoint heuristics and keeps the winner. Until a
// previous melody/harmony pair exists there is nothing to score, so the
// plain target wins.
func findBestHarmonyNote(mel, target, degreeShift, prevMel, prevHarm int, havePrev bool) int {
	if !havePrev {
		return target
	}

	candidates := []int{target, target - 12, target + 12}
	best := target
	bestScore := -1 << 30
	for _, cand := range candidates {
		score := 0

		if isParallelPerfect(prevMel, prevHarm, mel, cand) {
			score += penaltyParallelPerfect
		}

		// crossing to the wrong side of the melody for the style's
		// intended direction
		if degreeShift < 0 && cand > mel {
			score += penaltyVoiceCrossing
		}
		if degreeShift > 0 && cand < mel {
			score += penaltyVoiceCrossing
		}

		melDir := sign(mel - prevMel)
		harmDir := sign(cand - prevHarm)
		switch {
		case melDir != 0 && harmDir != 0 && melDir != harmDir:
			score += bonusContraryMotion
		case melDir == harmDir && melDir != 0:
			score += penaltyParallelMotion
		}

		leap := cand - prevHarm
		if leap < 0 {
			leap = -leap
		}
		switch {
		case leap <= 2:
			score += bonusStepwise
		case leap <= 5:
			score += bonusSmallLeap
		case leap > 7:
			score += penaltyLargeLeap
		}

		if cand == target {
			score += bonusHomeOctave
		}

		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

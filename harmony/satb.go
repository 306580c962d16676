package harmony

import (
	"github.com/jsphweid/melodex/keysig"
	"github.com/jsphweid/melodex/model"
)

// fixed SATB voice ranges, MIDI
const (
	sopranoLow, sopranoHigh = 60, 84
	altoLow, altoHigh       = 53, 77
	tenorLow, tenorHigh     = 48, 72
	bassLow, bassHigh       = 40, 64
)

// satbVoices harmonizes the melody (treated as soprano) into alto,
// tenor, and bass. The triad for each note is the diatonic chord built
// on the melody note's scale degree: root, third, fifth.
func satbVoices(melody []model.NoteEvent, key keysig.KeySignature) []model.HarmonyVoice {
	alto := model.HarmonyVoice{DisplayName: "Alto", Color: "#ffc914"}
	tenor := model.HarmonyVoice{DisplayName: "Tenor", Color: "#76b041"}
	bass := model.HarmonyVoice{DisplayName: "Bass", Color: "#3c91e6"}

	var prevTenor, prevBass int
	havePrev := false
	for _, n := range melody {
		root, third, fifth := chordTones(n.MidiNumber, key)

		a := nearestBelow(n.MidiNumber, third, altoLow, altoHigh)
		if a > n.MidiNumber {
			a -= 12
		}

		t := nearestBelow(a, fifth, tenorLow, tenorHigh)
		if a-t > 12 {
			t += 12
		}
		if t > a {
			t -= 12
		}
		// spacing nudges can leave the band; fold back by octaves
		for t < tenorLow {
			t += 12
		}
		for t > tenorHigh {
			t -= 12
		}

		b := bassNote(n.MidiNumber, root, t, prevTenor, prevBass, havePrev)

		alto.Notes = append(alto.Notes, voiceNote(n, a))
		tenor.Notes = append(tenor.Notes, voiceNote(n, t))
		bass.Notes = append(bass.Notes, voiceNote(n, b))

		prevTenor = t
		prevBass = b
		havePrev = true
	}
	return []model.HarmonyVoice{alto, tenor, bass}
}

func voiceNote(n model.NoteEvent, midi int) model.NoteEvent {
	h := n
	h.MidiNumber = clampMidi(midi)
	h.Frequency = 0
	h.Vibrato = nil
	return h
}

// chordTones returns root/third/fifth pitch classes of the diatonic
// triad on the melody note's degree.
func chordTones(midi int, key keysig.KeySignature) (root, third, fifth int) {
	scale := key.ScalePitchClasses()
	degree, ok := key.DegreeOfMidi(midi)
	if !ok {
		for delta := 1; delta <= 6; delta++ {
			if d, found := key.DegreeOfMidi(midi - delta); found {
				degree = d
				break
			}
		}
	}
	return scale[degree], scale[(degree+2)%7], scale[(degree+4)%7]
}

// nearestBelow finds the instance of pitch class pc closest below
// reference, folded into [low, high].
func nearestBelow(reference, pc, low, high int) int {
	cand := reference - ((reference-pc)%12+12)%12
	if cand == reference {
		cand -= 12
	}
	for cand < low {
		cand += 12
	}
	for cand > high {
		cand -= 12
	}
	return cand
}

// bassNote picks the chord root nearest below the melody, folds it
// into bass range, then nudges by a step or skip if the plain choice
// forms parallel fifths/octaves against the tenor.
func bassNote(mel, rootPC, tenor, prevTenor, prevBass int, havePrev bool) int {
	b := nearestBelow(mel, rootPC, bassLow, bassHigh)
	if !havePrev || !isParallelPerfect(prevTenor, prevBass, tenor, b) {
		return b
	}
	for _, delta := range []int{-2, 2, -4, 4} {
		alt := b + delta
		if alt < bassLow || alt > bassHigh {
			continue
		}
		if !isParallelPerfect(prevTenor, prevBass, tenor, alt) {
			return alt
		}
	}
	return b
}

package harmony

import (
	"github.com/jsphweid/melodex/model"
)

// chordal scoring weights
const (
	bonusCorrectSide   = 50
	bonusThirdToFifth  = 30
	bonusSixthToOctave = 20
	penaltyTooClose    = -20
	penaltyUnison      = -100
)

// chordalVoice picks one chord tone per melody note, guided by the
// chord active at the note's start time rather than by counterpoint
// heuristics. Chord beats convert to seconds through the tempo.
func chordalVoice(melody []model.NoteEvent, chords []model.ChordEvent, tempo float64) model.HarmonyVoice {
	secondsPerBeat := 60.0 / tempo
	notes := make([]model.NoteEvent, 0, len(melody))
	for _, n := range melody {
		chord := activeChordAt(chords, n.StartTime/secondsPerBeat)
		harm := bestChordTone(n.MidiNumber, chord)
		notes = append(notes, voiceNote(n, harm))
	}
	return model.HarmonyVoice{DisplayName: "Chord Tones", Notes: notes, Color: "#b33951"}
}

// activeChordAt returns the chord sounding at the given beat: the last
// chord whose start is at or before it, else the first chord.
func activeChordAt(chords []model.ChordEvent, beat float64) model.ChordEvent {
	active := chords[0]
	for _, c := range chords {
		if c.StartBeat <= beat {
			active = c
		}
	}
	return active
}

// bestChordTone expands the chord's pitch classes across ±2 octaves
// around the melody note and scores each candidate: prefer tones below
// the melody, a third to a fifth away; punish crowding and unisons.
func bestChordTone(mel int, chord model.ChordEvent) int {
	base := mel - (mel % 12)
	best := mel - 12
	bestScore := -1 << 30
	for _, pc := range chord.PitchClasses() {
		for oct := -2; oct <= 2; oct++ {
			cand := base + pc + oct*12
			if cand < 0 || cand > 127 {
				continue
			}
			score := scoreChordTone(mel, cand)
			if score > bestScore {
				bestScore = score
				best = cand
			}
		}
	}
	return best
}

func scoreChordTone(mel, cand int) int {
	score := 0
	if cand < mel {
		score += bonusCorrectSide
	}
	dist := mel - cand
	if dist < 0 {
		dist = -dist
	}
	switch {
	case dist == 0:
		score += penaltyUnison
	case dist <= 2:
		score += penaltyTooClose
	case dist <= 7:
		score += bonusThirdToFifth
	case dist <= 12:
		score += bonusSixthToOctave
	}
	return score
}

package chords

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/melodex/model"
)

func arpeggio(midis []int, start float64) []model.NoteEvent {
	var res []model.NoteEvent
	for i, m := range midis {
		res = append(res, model.NoteEvent{
			MidiNumber: m,
			StartTime:  start + float64(i)*0.5,
			Duration:   0.5,
		})
	}
	return res
}

func TestSuggestPicksTheObviousTriads(t *testing.T) {
	// measure 1 spells C major, measure 2 spells G major (120 BPM, 4/4)
	melody := append(arpeggio([]int{60, 64, 67}, 0), arpeggio([]int{67, 71, 74}, 2.0)...)
	progression, err := Suggest(melody, "C", 4, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(progression, 2)
	assert.Equal(progression[0].Root, 0)
	assert.Equal(progression[0].Quality, model.TriadMajor)
	assert.Equal(progression[0].StartBeat, 0.0)
	assert.Equal(progression[1].Root, 7)
	assert.Equal(progression[1].Quality, model.TriadMajor)
	assert.Equal(progression[1].StartBeat, 4.0)
}

func TestSuggestMinorKeyUsesMinorTonic(t *testing.T) {
	melody := arpeggio([]int{57, 60, 64}, 0) // A C E
	progression, err := Suggest(melody, "Am", 4, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(progression, 1)
	assert.Equal(progression[0].Root, 9)
	assert.Equal(progression[0].Quality, model.TriadMinor)
}

func TestSuggestSkipsEmptyWindows(t *testing.T) {
	// notes only in measures 1 and 3
	melody := append(arpeggio([]int{60, 64, 67}, 0), arpeggio([]int{60, 64, 67}, 4.0)...)
	progression, err := Suggest(melody, "C", 4, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(progression, 2)
	// the first chord stretches across the silent measure
	assert.Equal(progression[0].DurationBeats, 8.0)
}

func TestSuggestRejectsUnknownKey(t *testing.T) {
	_, err := Suggest(arpeggio([]int{60}, 0), "H", 4, 120)

	assert := assert.New(t)
	assert.Error(err)
}

func TestSuggestEmptyMelody(t *testing.T) {
	progression, err := Suggest(nil, "C", 4, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Nil(progression)
}

func TestRecalcDurationsTilesTheTimeline(t *testing.T) {
	progression := []model.ChordEvent{
		{Root: 7, StartBeat: 4},
		{Root: 0, StartBeat: 0},
		{Root: 5, StartBeat: 6},
	}
	res := RecalcDurations(progression, 8)

	assert := assert.New(t)
	assert.Len(res, 3)
	// sorted by start, each chord runs exactly to the next start
	assert.Equal(res[0].Root, 0)
	assert.Equal(res[0].DurationBeats, 4.0)
	assert.Equal(res[1].DurationBeats, 2.0)
	assert.Equal(res[2].DurationBeats, 2.0)

	var total float64
	for _, c := range res {
		total += c.DurationBeats
	}
	assert.Equal(total, 8.0)

	// input order is untouched
	assert.Equal(progression[0].Root, 7)
}

func TestRecalcDurationsLastChordNeverZeroLength(t *testing.T) {
	res := RecalcDurations([]model.ChordEvent{{Root: 0, StartBeat: 8}}, 8)

	assert := assert.New(t)
	assert.Equal(res[0].DurationBeats, 1.0)
}

func TestToNotesRendersBlockChordsInOctave3(t *testing.T) {
	progression := []model.ChordEvent{
		{Root: 0, Quality: model.TriadMajor, StartBeat: 0, DurationBeats: 4},
	}
	notes := ToNotes(progression, 120, 70)

	assert := assert.New(t)
	assert.Len(notes, 3)
	assert.ElementsMatch(
		[]int{notes[0].MidiNumber, notes[1].MidiNumber, notes[2].MidiNumber},
		[]int{48, 52, 55},
	)
	assert.Equal(notes[0].StartTime, 0.0)
	assert.InDelta(notes[0].Duration, 2.0, 1e-9)
	assert.Equal(notes[0].Velocity, 70)
}

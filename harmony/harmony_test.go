package harmony

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/melodex/model"
)

func melodyOf(midis ...int) []model.NoteEvent {
	var res []model.NoteEvent
	for i, m := range midis {
		res = append(res, model.NoteEvent{
			MidiNumber: m,
			StartTime:  float64(i) * 0.5,
			Duration:   0.5,
			Velocity:   80,
		})
	}
	return res
}

func voiceMidis(v model.HarmonyVoice) []int {
	res := make([]int, len(v.Notes))
	for i, n := range v.Notes {
		res[i] = n.MidiNumber
	}
	return res
}

func TestGenerateOctaveStyles(t *testing.T) {
	melody := melodyOf(60, 62, 64)

	assert := assert.New(t)

	up, err := Generate(melody, OctaveUp, "C", nil, 120)
	assert.NoError(err)
	assert.Len(up, 1)
	assert.Equal(voiceMidis(up[0]), []int{72, 74, 76})

	down, err := Generate(melody, OctaveDown, "C", nil, 120)
	assert.NoError(err)
	assert.Equal(voiceMidis(down[0]), []int{48, 50, 52})
}

func TestGenerateFifthsAreChromatic(t *testing.T) {
	voices, err := Generate(melodyOf(60, 61), Fifths, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(voiceMidis(voices[0]), []int{53, 54})
}

func TestGenerateThirdsAboveStaysDiatonic(t *testing.T) {
	voices, err := Generate(melodyOf(60, 62, 64), ThirdsAbove, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	// C->E is a major third, D->F and E->G are minor thirds
	assert.Equal(voiceMidis(voices[0]), []int{64, 65, 67})
}

func TestGenerateThirdsBelowAvoidsParallelPerfects(t *testing.T) {
	melody := melodyOf(60, 62, 64, 65, 67, 69, 71, 72)
	voices, err := Generate(melody, ThirdsBelow, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	harm := voiceMidis(voices[0])
	for i := 1; i < len(melody); i++ {
		assert.False(isParallelPerfect(
			melody[i-1].MidiNumber, harm[i-1],
			melody[i].MidiNumber, harm[i],
		))
	}
}

func TestGenerateTriadsReturnsTwoVoices(t *testing.T) {
	voices, err := Generate(melodyOf(72, 74), Triads, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(voices, 2)
	// third below the melody throughout; the fifth voice dodges down
	// an octave on the second note to avoid parallel fifths
	assert.Equal(voiceMidis(voices[0]), []int{69, 71})
	assert.Equal(voiceMidis(voices[1]), []int{65, 55})
}

func TestGenerateSATBReturnsThreeVoicesBelowMelody(t *testing.T) {
	melody := melodyOf(72, 74, 76)
	voices, err := Generate(melody, SATB, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(voices, 3)
	assert.Equal(voices[0].DisplayName, "Alto")
	assert.Equal(voices[1].DisplayName, "Tenor")
	assert.Equal(voices[2].DisplayName, "Bass")

	for _, v := range voices[:2] {
		for i, n := range v.Notes {
			assert.LessOrEqual(n.MidiNumber, melody[i].MidiNumber)
		}
	}
	// alto carries the triad third below the soprano
	assert.Equal(voices[0].Notes[0].MidiNumber, 64)
}

func TestGenerateSATBTenorStaysInItsBand(t *testing.T) {
	// a C4 soprano drags the alto low, and the tenor's voice-crossing
	// nudge would land at G2 without the octave fold
	voices, err := Generate(melodyOf(60), SATB, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	tenor := voices[1]
	assert.Equal(tenor.DisplayName, "Tenor")
	assert.Equal(tenor.Notes[0].MidiNumber, 55)
	assert.GreaterOrEqual(tenor.Notes[0].MidiNumber, tenorLow)
	assert.LessOrEqual(tenor.Notes[0].MidiNumber, tenorHigh)
}

func TestGenerateChordalFollowsTheProgression(t *testing.T) {
	progression := []model.ChordEvent{
		{Root: 0, Quality: model.TriadMajor, StartBeat: 0, DurationBeats: 4},
	}
	voices, err := Generate(melodyOf(72), Chordal, "C", progression, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(voices, 1)
	// G4, a fourth below the melody C5, is the best-scoring chord tone
	assert.Equal(voices[0].Notes[0].MidiNumber, 67)
}

func TestGenerateChordalRequiresAProgression(t *testing.T) {
	_, err := Generate(melodyOf(72), Chordal, "C", nil, 120)

	assert := assert.New(t)
	assert.Error(err)
}

func TestGenerateRejectsUnknownStyleAndKey(t *testing.T) {
	assert := assert.New(t)

	_, err := Generate(melodyOf(60), Style("jazz"), "C", nil, 120)
	assert.Error(err)

	_, err = Generate(melodyOf(60), ThirdsAbove, "H", nil, 120)
	assert.Error(err)
}

func TestGenerateDoesNotMutateTheMelody(t *testing.T) {
	melody := melodyOf(60, 62)
	_, err := Generate(melody, ThirdsBelow, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(melody[0].MidiNumber, 60)
	assert.Equal(melody[1].MidiNumber, 62)
}

func TestGenerateEmptyMelody(t *testing.T) {
	voices, err := Generate(nil, ThirdsAbove, "C", nil, 120)

	assert := assert.New(t)
	assert.NoError(err)
	assert.Nil(voices)
}

func TestIsParallelPerfect(t *testing.T) {
	assert := assert.New(t)

	// parallel fifths, both voices rising
	assert.True(isParallelPerfect(60, 53, 62, 55))
	// parallel octaves
	assert.True(isParallelPerfect(60, 48, 62, 50))
	// harmony holds still: oblique motion, fine
	assert.False(isParallelPerfect(60, 53, 62, 53))
	// interval changes between the two moments
	assert.False(isParallelPerfect(60, 55, 62, 58))
	// contrary motion into a fifth is not parallel
	assert.False(isParallelPerfect(60, 53, 58, 51))
}

func TestCombineForPlaybackSortsByStart(t *testing.T) {
	melody := melodyOf(60, 62)
	voices := []model.HarmonyVoice{{Notes: melodyOf(48, 50)}}
	combined := CombineForPlayback(melody, voices, nil)

	assert := assert.New(t)
	assert.Len(combined, 4)
	for i := 1; i < len(combined); i++ {
		assert.GreaterOrEqual(combined[i].StartTime, combined[i-1].StartTime)
	}
}

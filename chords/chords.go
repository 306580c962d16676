package chords

import (
	"math"
	"sort"

	"github.com/jsphweid/melodex/keysig"
	"github.com/jsphweid/melodex/model"
)

// diatonic triad qualities by scale degree
var majorQualities = [7]model.TriadQuality{
	model.TriadMajor, model.TriadMinor, model.TriadMinor, model.TriadMajor,
	model.TriadMajor, model.TriadMinor, model.TriadDiminished,
}

var minorQualities = [7]model.TriadQuality{
	model.TriadMinor, model.TriadDiminished, model.TriadMajor, model.TriadMinor,
	model.TriadMinor, model.TriadMajor, model.TriadMajor,
}

// root-presence tiebreak on top of the pitch-class match count
const rootBonus = 0.5

// Suggest proposes one diatonic triad per measure-length window by
// scoring every scale-degree triad against the pitch classes sounding
// in that window. Windows with no notes get no chord. The result is
// retiled before returning, so the duration invariant holds.
func Suggest(melody []model.NoteEvent, keyName string, beatsPerMeasure int, tempo float64) ([]model.ChordEvent, error) {
	key, err := keysig.Parse(keyName)
	if err != nil {
		return nil, err
	}
	if len(melody) == 0 || beatsPerMeasure <= 0 || tempo <= 0 {
		return nil, nil
	}

	windowSec := float64(beatsPerMeasure) * 60 / tempo
	var end float64
	for _, n := range melody {
		if n.EndTime() > end {
			end = n.EndTime()
		}
	}
	numWindows := int(math.Ceil(end / windowSec))

	scale := key.ScalePitchClasses()
	qualities := majorQualities
	if key.Minor {
		qualities = minorQualities
	}

	var res []model.ChordEvent
	for w := 0; w < numWindows; w++ {
		lo := float64(w) * windowSec
		hi := lo + windowSec
		pcs := pitchClassesIn(melody, lo, hi)
		if len(pcs) == 0 {
			continue
		}

		bestScore := 0.0
		bestDegree := -1
		for degree := 0; degree < 7; degree++ {
			chord := model.ChordEvent{Root: scale[degree], Quality: qualities[degree]}
			score := 0.0
			for _, pc := range chord.PitchClasses() {
				if pcs[pc] {
					score++
				}
			}
			if pcs[chord.Root] {
				score += rootBonus
			}
			if score > bestScore {
				bestScore = score
				bestDegree = degree
			}
		}
		if bestDegree < 0 {
			continue
		}
		res = append(res, model.ChordEvent{
			Root:      scale[bestDegree],
			Quality:   qualities[bestDegree],
			StartBeat: float64(w * beatsPerMeasure),
		})
	}

	return RecalcDurations(res, float64(numWindows*beatsPerMeasure)), nil
}

func pitchClassesIn(melody []model.NoteEvent, lo, hi float64) map[int]bool {
	res := make(map[int]bool)
	for _, n := range melody {
		if n.StartTime < hi && n.EndTime() > lo {
			res[((n.MidiNumber%12)+12)%12] = true
		}
	}
	return res
}

// RecalcDurations re-derives every chord's duration so the progression
// exactly tiles the timeline: each chord runs to the next chord's
// start, the last to at least totalBeats. Runs after every
// add/edit/delete; the input is copied, not mutated.
func RecalcDurations(progression []model.ChordEvent, totalBeats float64) []model.ChordEvent {
	if len(progression) == 0 {
		return nil
	}
	res := make([]model.ChordEvent, len(progression))
	copy(res, progression)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartBeat < res[j].StartBeat
	})
	for i := range res {
		if i+1 < len(res) {
			res[i].DurationBeats = res[i+1].StartBeat - res[i].StartBeat
			continue
		}
		res[i].DurationBeats = totalBeats - res[i].StartBeat
		if res[i].DurationBeats <= 0 {
			res[i].DurationBeats = 1
		}
	}
	return res
}

// ToNotes renders a progression as block chords for playback or
// export: every pitch class in octave 3, one NoteEvent per tone.
func ToNotes(progression []model.ChordEvent, tempo float64, velocity int) []model.NoteEvent {
	secondsPerBeat := 60.0 / tempo
	var res []model.NoteEvent
	for _, c := range progression {
		for _, pc := range c.PitchClasses() {
			res = append(res, model.NoteEvent{
				MidiNumber: 48 + pc,
				StartTime:  c.StartBeat * secondsPerBeat,
				Duration:   c.DurationBeats * secondsPerBeat,
				Velocity:   velocity,
			})
		}
	}
	return res
}

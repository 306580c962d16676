package quantize

import (
	"fmt"
	"math"

	"github.com/jsphweid/melodex/keysig"
	"github.com/jsphweid/melodex/model"
)

type durationEntry struct {
	symbol model.DurationSymbol
	beats  float64
}

// The nine legal rhythmic values, coarsest to finest. minQuantization
// picks a prefix of this list as the allowed vocabulary.
var durationTable = []durationEntry{
	{model.DottedWhole, 6},
	{model.Whole, 4},
	{model.DottedHalf, 3},
	{model.Half, 2},
	{model.DottedQuarter, 1.5},
	{model.Quarter, 1},
	{model.DottedEighth, 0.75},
	{model.Eighth, 0.5},
	{model.Sixteenth, 0.25},
}

// BeatsFor returns the beat value of a duration symbol.
func BeatsFor(symbol model.DurationSymbol) (float64, bool) {
	for _, e := range durationTable {
		if e.symbol == symbol {
			return e.beats, true
		}
	}
	return 0, false
}

func allowedDurations(minQuantization model.DurationSymbol) ([]durationEntry, error) {
	for i, e := range durationTable {
		if e.symbol == minQuantization {
			return durationTable[:i+1], nil
		}
	}
	return nil, fmt.Errorf("unknown quantization level %q", minQuantization)
}

// gridUnit is the base, non-dotted beat value of the minimum allowed
// symbol; start times snap to multiples of it.
func gridUnit(entries []durationEntry) float64 {
	finest := entries[len(entries)-1]
	switch finest.symbol {
	case model.DottedWhole, model.DottedHalf, model.DottedQuarter, model.DottedEighth:
		return finest.beats / 1.5
	}
	return finest.beats
}

// Notes maps continuous start/duration onto the rhythmic grid. The
// result is derived data: any tempo, grid, or key change regenerates
// it wholesale.
func Notes(notes []model.NoteEvent, tempo float64, minQuantization model.DurationSymbol, keyName string) ([]model.QuantizedNote, error) {
	if tempo <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %v", tempo)
	}
	entries, err := allowedDurations(minQuantization)
	if err != nil {
		return nil, err
	}
	key, err := keysig.Parse(keyName)
	if err != nil {
		return nil, err
	}

	grid := gridUnit(entries)
	beatsPerSecond := tempo / 60

	res := make([]model.QuantizedNote, 0, len(notes))
	for _, n := range notes {
		startBeat := math.Round(n.StartTime*beatsPerSecond/grid) * grid
		actualBeats := n.Duration * beatsPerSecond
		symbol, beats := matchDuration(actualBeats, entries)
		res = append(res, model.QuantizedNote{
			MidiNumber:    n.MidiNumber,
			SpelledName:   key.SpellMidi(n.MidiNumber),
			Duration:      symbol,
			DurationBeats: beats,
			StartBeat:     startBeat,
		})
	}
	return res, nil
}

// Stretching a note to a longer symbol reads better than shrinking it:
// players release early far more often than they hold long. Candidates
// that would stretch the played duration by more than ~43% take a
// score penalty, which biases ties toward the longer symbol.
const stretchPenalty = 0.3

func matchDuration(actualBeats float64, entries []durationEntry) (model.DurationSymbol, float64) {
	shortest := entries[len(entries)-1]
	if actualBeats < 0.2 {
		return shortest.symbol, shortest.beats
	}
	if actualBeats > 6.5 {
		return model.DottedWhole, 6
	}

	best := shortest
	bestScore := math.Inf(1)
	for _, e := range entries {
		ratio := actualBeats / e.beats
		score := math.Abs(1 - ratio)
		if ratio < 0.7 {
			score += stretchPenalty
		}
		if score < bestScore {
			bestScore = score
			best = e
		}
	}
	return best.symbol, best.beats
}

// GroupIntoMeasures buckets quantized notes by measure, inserting
// empty measures for gaps, and rewrites each note's StartBeat relative
// to its measure start.
func GroupIntoMeasures(notes []model.QuantizedNote, beatsPerMeasure int) [][]model.QuantizedNote {
	if beatsPerMeasure <= 0 || len(notes) == 0 {
		return nil
	}

	lastMeasure := 0
	byMeasure := make(map[int][]model.QuantizedNote)
	for _, n := range notes {
		m := int(n.StartBeat) / beatsPerMeasure
		if n.StartBeat < 0 {
			m = 0
		}
		rel := n.StartBeat - float64(m*beatsPerMeasure)
		n.StartBeat = rel
		byMeasure[m] = append(byMeasure[m], n)
		if m > lastMeasure {
			lastMeasure = m
		}
	}

	res := make([][]model.QuantizedNote, lastMeasure+1)
	for m := 0; m <= lastMeasure; m++ {
		if byMeasure[m] == nil {
			res[m] = []model.QuantizedNote{}
			continue
		}
		res[m] = byMeasure[m]
	}
	return res
}

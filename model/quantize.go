package model

// DurationSymbol is one of the nine legal rhythmic values. The quantizer
// never emits anything outside this set.
type DurationSymbol string

const (
	DottedWhole   DurationSymbol = "dotted-whole"
	Whole         DurationSymbol = "whole"
	DottedHalf    DurationSymbol = "dotted-half"
	Half          DurationSymbol = "half"
	DottedQuarter DurationSymbol = "dotted-quarter"
	Quarter       DurationSymbol = "quarter"
	DottedEighth  DurationSymbol = "dotted-eighth"
	Eighth        DurationSymbol = "eighth"
	Sixteenth     DurationSymbol = "sixteenth"
)

// QuantizedNote is derived from a NoteEvent plus tempo/grid/key; it is
// regenerated on any tempo, quantization, or key change rather than
// edited in place. After measure grouping StartBeat is relative to the
// start of the note's measure.
type QuantizedNote struct {
	MidiNumber    int            `json:"midi_number"`
	SpelledName   string         `json:"spelled_name"`
	Duration      DurationSymbol `json:"duration"`
	DurationBeats float64        `json:"duration_beats"`
	StartBeat     float64        `json:"start_beat"`
}

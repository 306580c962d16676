package keysig

import (
	"fmt"
	"strings"
)

// KeySignature is a parsed key name: root pitch class, mode, and
// whether the signature spells accidentals as flats.
type KeySignature struct {
	Name  string
	Root  int // pitch class 0..11
	Minor bool
	Flats bool
}

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// the 15 standard major signatures; value is true when the signature
// uses flats
var majorKeys = map[string]bool{
	"C": false, "G": false, "D": false, "A": false, "E": false,
	"B": false, "F#": false, "C#": false,
	"F": true, "Bb": true, "Eb": true, "Ab": true, "Db": true,
	"Gb": true, "Cb": true,
}

var noteRoots = map[string]int{
	"C": 0, "C#": 1, "Db": 1, "D": 2, "D#": 3, "Eb": 3, "E": 4, "Fb": 4,
	"E#": 5, "F": 5, "F#": 6, "Gb": 6, "G": 7, "G#": 8, "Ab": 8, "A": 9,
	"A#": 10, "Bb": 10, "B": 11, "Cb": 11,
}

// Parse accepts the 15 standard major names ("C", "F#", "Bb") and their
// relative minors ("Am", "D# minor"). An unknown name is a
// configuration error surfaced immediately, not a silent C-major
// default.
func Parse(name string) (KeySignature, error) {
	trimmed := strings.TrimSpace(name)
	minor := false
	base := trimmed
	switch {
	case strings.HasSuffix(trimmed, " minor"):
		minor = true
		base = strings.TrimSuffix(trimmed, " minor")
	case strings.HasSuffix(trimmed, " major"):
		base = strings.TrimSuffix(trimmed, " major")
	case strings.HasSuffix(trimmed, "m") && len(trimmed) > 1:
		minor = true
		base = strings.TrimSuffix(trimmed, "m")
	}
	base = strings.TrimSpace(base)
	if len(base) > 0 {
		base = strings.ToUpper(base[:1]) + base[1:]
	}

	root, ok := noteRoots[base]
	if !ok {
		return KeySignature{}, fmt.Errorf("unknown key signature %q", name)
	}

	lookup := base
	if minor {
		// accidentals come from the relative major
		lookup = relativeMajorName(base)
	}
	flats, ok := majorKeys[lookup]
	if !ok {
		return KeySignature{}, fmt.Errorf("unknown key signature %q", name)
	}
	return KeySignature{Name: trimmed, Root: root, Minor: minor, Flats: flats}, nil
}

var relativeMajor = map[string]string{
	"A": "C", "E": "G", "B": "D", "F#": "A", "C#": "E", "G#": "B",
	"D#": "F#", "A#": "C#", "D": "F", "G": "Bb", "C": "Eb", "F": "Ab",
	"Bb": "Db", "Eb": "Gb", "Ab": "Cb",
}

func relativeMajorName(minorRoot string) string {
	if maj, ok := relativeMajor[minorRoot]; ok {
		return maj
	}
	return minorRoot
}

// SpellMidi renders a MIDI number as pitch-class name + octave, using
// the signature's accidental preference (A#5 in sharp keys, Bb5 in
// flat keys).
func (k KeySignature) SpellMidi(midi int) string {
	pc := ((midi % 12) + 12) % 12
	octave := midi/12 - 1
	name := sharpNames[pc]
	if k.Flats {
		name = flatNames[pc]
	}
	return fmt.Sprintf("%s%d", name, octave)
}

var majorScale = [7]int{0, 2, 4, 5, 7, 9, 11}
var minorScale = [7]int{0, 2, 3, 5, 7, 8, 10}

// ScalePitchClasses returns the 7 diatonic pitch classes, tonic first.
func (k KeySignature) ScalePitchClasses() []int {
	intervals := majorScale
	if k.Minor {
		intervals = minorScale
	}
	res := make([]int, 7)
	for i, iv := range intervals {
		res[i] = (k.Root + iv) % 12
	}
	return res
}

// DegreeOf returns the 0-based scale degree of a pitch class, or
// ok=false for a chromatic (non-diatonic) pitch.
func (k KeySignature) DegreeOf(pc int) (int, bool) {
	for i, scalePC := range k.ScalePitchClasses() {
		if scalePC == ((pc%12)+12)%12 {
			return i, true
		}
	}
	return 0, false
}

// DegreeOfMidi is DegreeOf on a MIDI note number.
func (k KeySignature) DegreeOfMidi(midi int) (int, bool) {
	return k.DegreeOf(midi % 12)
}

package model

type TriadQuality string

const (
	TriadMajor      TriadQuality = "major"
	TriadMinor      TriadQuality = "minor"
	TriadDiminished TriadQuality = "diminished"
	TriadAugmented  TriadQuality = "augmented"
	TriadSus2       TriadQuality = "sus2"
	TriadSus4       TriadQuality = "sus4"
	TriadPower      TriadQuality = "power"
)

type SeventhType string

const (
	SeventhMajor      SeventhType = "maj7"
	SeventhMinor      SeventhType = "min7"
	SeventhDominant   SeventhType = "dom7"
	SeventhDiminished SeventhType = "dim7"
)

type ChordExtension string

const (
	Ext9  ChordExtension = "9"
	Ext11 ChordExtension = "11"
	Ext13 ChordExtension = "13"
)

type ChordAlteration string

const (
	AltFlat5   ChordAlteration = "b5"
	AltSharp5  ChordAlteration = "#5"
	AltFlat9   ChordAlteration = "b9"
	AltSharp9  ChordAlteration = "#9"
	AltSharp11 ChordAlteration = "#11"
	AltFlat13  ChordAlteration = "b13"
)

// ChordEvent is one chord in a beat-sorted progression. A progression
// maintains the invariant that every chord's duration runs exactly to
// the next chord's start (or the piece end); callers re-run the retiling
// step after any add/edit/delete.
type ChordEvent struct {
	Root          int               `json:"root"` // pitch class 0..11
	Quality       TriadQuality      `json:"quality"`
	Seventh       *SeventhType      `json:"seventh,omitempty"`
	Extensions    []ChordExtension  `json:"extensions,omitempty"`
	Alterations   []ChordAlteration `json:"alterations,omitempty"`
	StartBeat     float64           `json:"start_beat"`
	DurationBeats float64           `json:"duration_beats"`
	Inversion     int               `json:"inversion,omitempty"`
	SlashBass     *int              `json:"slash_bass,omitempty"` // pitch class, nil when the root is in the bass
}

// PitchClasses expands the chord to its sounding pitch classes.
func (c ChordEvent) PitchClasses() []int {
	var res []int
	for _, off := range triadOffsets[c.Quality] {
		res = append(res, (c.Root+off)%12)
	}
	if c.Seventh != nil {
		res = append(res, (c.Root+seventhOffsets[*c.Seventh])%12)
	}
	if c.SlashBass != nil {
		res = append(res, *c.SlashBass%12)
	}
	return res
}

var triadOffsets = map[TriadQuality][]int{
	TriadMajor:      {0, 4, 7},
	TriadMinor:      {0, 3, 7},
	TriadDiminished: {0, 3, 6},
	TriadAugmented:  {0, 4, 8},
	TriadSus2:       {0, 2, 7},
	TriadSus4:       {0, 5, 7},
	TriadPower:      {0, 7},
}

var seventhOffsets = map[SeventhType]int{
	SeventhMajor:      11,
	SeventhMinor:      10,
	SeventhDominant:   10,
	SeventhDiminished: 9,
}

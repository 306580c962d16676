package model

type KeyGuessInfo struct {
	Name       string  `json:"name"`
	Root       int     `json:"root"`
	Minor      bool    `json:"minor"`
	Confidence float64 `json:"confidence"`
}

// DynamicContourInfo labels a run of notes moving consistently louder
// or softer; indexes are into the notes list, end inclusive.
type DynamicContourInfo struct {
	Kind       string `json:"kind"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

type AnalyzeResponse struct {
	RequestId       string               `json:"request_id"`
	Tempo           TempoEstimate        `json:"tempo"`
	Key             *KeyGuessInfo        `json:"key,omitempty"`
	Notes           []NoteEvent          `json:"notes"`
	Measures        [][]QuantizedNote    `json:"measures"`
	DynamicRangeDb  float64              `json:"dynamic_range_db"`
	DynamicContours []DynamicContourInfo `json:"dynamic_contours,omitempty"`
}

type HarmonizeRequestBody struct {
	Notes  []NoteEvent  `json:"notes"`
	Style  string       `json:"style"`
	Key    string       `json:"key"`
	Chords []ChordEvent `json:"chords,omitempty"`
	Tempo  float64      `json:"tempo"`
}

type HarmonizeResponse struct {
	Voices []HarmonyVoice `json:"voices"`
}

type ChordsRequestBody struct {
	Notes           []NoteEvent `json:"notes"`
	Key             string      `json:"key"`
	BeatsPerMeasure int         `json:"beats_per_measure"`
	Tempo           float64     `json:"tempo"`
}

type ChordsResponse struct {
	Chords []ChordEvent `json:"chords"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

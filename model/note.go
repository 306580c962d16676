package model

// Onsets is an ordered list of detected note attack times in seconds.
type Onsets = []float64

// VibratoShape describes periodic pitch modulation within a note.
type VibratoShape struct {
	RateHz     float64 `json:"rate_hz"`
	DepthCents float64 `json:"depth_cents"`
}

// NoteEvent is a value object; copies are cheap and nothing shares one
// by reference across voices.
type NoteEvent struct {
	MidiNumber     int           `json:"midi_number"`
	Frequency      float64       `json:"frequency"`
	StartTime      float64       `json:"start_time"`
	Duration       float64       `json:"duration"`
	Velocity       int           `json:"velocity"`
	CentsDeviation float64       `json:"cents_deviation"`
	Vibrato        *VibratoShape `json:"vibrato,omitempty"`
}

// EndTime is StartTime + Duration.
func (n NoteEvent) EndTime() float64 {
	return n.StartTime + n.Duration
}

// PitchFrame is one hop of the pitch contour. Frames that fail the
// energy or clarity gates have Valid=false and carry no pitch.
type PitchFrame struct {
	Time           float64
	Frequency      float64
	Clarity        float64
	Midi           int
	CentsDeviation float64
	Valid          bool
}

type PitchContour struct {
	Frames     []PitchFrame
	SampleRate int
	HopSize    int
}

// VelocityInfo is loudness for one onset-bounded segment, index-aligned
// with the onset list that produced it.
type VelocityInfo struct {
	Velocity int     `json:"velocity"`
	RMS      float64 `json:"rms"`
	Peak     float64 `json:"peak"`
}

// HarmonyVoice is regenerated wholesale on every request, never patched.
type HarmonyVoice struct {
	DisplayName string      `json:"display_name"`
	Notes       []NoteEvent `json:"notes"`
	Color       string      `json:"color"`
}

// TempoEstimate carries its own confidence so degraded results stay
// observable (confidence 0 means the 120 BPM fallback).
type TempoEstimate struct {
	BPM        float64 `json:"bpm"`
	Confidence float64 `json:"confidence"`
}

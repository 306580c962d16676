package pipeline

import (
	"github.com/google/uuid"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/dynamics"
	"github.com/jsphweid/melodex/keydetect"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/onset"
	"github.com/jsphweid/melodex/pitch"
	"github.com/jsphweid/melodex/quantize"
	"github.com/jsphweid/melodex/segment"
	"github.com/jsphweid/melodex/tempo"
	"github.com/jsphweid/melodex/wavfile"
)

// ProgressFunc is called between stages. No stage yields internally; a
// new analysis superseding this one is the caller's problem to discard.
type ProgressFunc func(stage string, fraction float64)

type Options struct {
	Onset   onset.Options
	Pitch   pitch.Options
	Segment segment.Options

	MinBPM, MaxBPM float64
	// TempoOverride skips estimation entirely when positive.
	TempoOverride float64

	MinVelocity, MaxVelocity int

	// Key is a key signature name; empty means detect one from the
	// transcribed notes.
	Key string

	// SnapPitch turns on the semitone-snapping contour mode. Off by
	// default; the expressive tracker is the normal path.
	SnapPitch bool

	SmoothingWindow int

	MinQuantization model.DurationSymbol
	BeatsPerMeasure int
}

func DefaultOptions() Options {
	return Options{
		Onset:           onset.DefaultOptions(),
		Pitch:           pitch.DefaultOptions(),
		Segment:         segment.DefaultOptions(),
		MinBPM:          constants.DefaultMinBPM,
		MaxBPM:          constants.DefaultMaxBPM,
		MinVelocity:     constants.DefaultMinVelocity,
		MaxVelocity:     constants.DefaultMaxVelocity,
		SmoothingWindow: 5,
		MinQuantization: model.Sixteenth,
		BeatsPerMeasure: constants.DefaultBeatsPerMeasure,
	}
}

// Result is immutable once returned. Harmony and chord generation read
// copies of Notes, so they can run while a caller re-quantizes.
type Result struct {
	RequestId string

	Onsets     model.Onsets
	Contour    model.PitchContour
	Tempo      model.TempoEstimate
	Velocities []model.VelocityInfo

	DynamicRangeDB  float64
	DynamicContours []dynamics.Contour

	Key *model.KeyGuessInfo
	// KeyName is what quantization actually used: the requested key,
	// or the detected one, or C when detection had nothing to go on.
	KeyName string

	Notes     []model.NoteEvent
	Quantized []model.QuantizedNote
	Measures  [][]model.QuantizedNote
}

// Run executes the full analysis synchronously: onsets, pitch contour,
// tempo, dynamics, segmentation, key, quantization, measures. Stages
// degrade per their own contracts (empty slices, zero confidence) and
// never abort the run; only configuration errors do.
func Run(buf wavfile.Buffer, opts Options, progress ProgressFunc) (*Result, error) {
	report := func(stage string, fraction float64) {
		if progress != nil {
			progress(stage, fraction)
		}
	}

	res := &Result{RequestId: uuid.New().String()}

	report("onsets", 0)
	res.Onsets = onset.Detect(buf.Samples, buf.SampleRate, opts.Onset)

	report("pitch", 0.2)
	contour := pitch.DetectContour(buf.Samples, buf.SampleRate, opts.Pitch)
	if opts.SmoothingWindow > 1 {
		contour = pitch.SmoothContour(contour, opts.SmoothingWindow)
	}
	if opts.SnapPitch {
		contour = pitch.SnapContour(contour)
	}
	res.Contour = contour

	report("tempo", 0.5)
	if opts.TempoOverride > 0 {
		res.Tempo = model.TempoEstimate{BPM: opts.TempoOverride, Confidence: 1}
	} else {
		res.Tempo = tempo.Analyze(res.Onsets, opts.MinBPM, opts.MaxBPM)
		if res.Tempo.Confidence > 0 {
			res.Tempo.BPM = tempo.Refine(res.Onsets, res.Tempo.BPM, 5)
		}
	}

	report("dynamics", 0.6)
	res.Velocities = dynamics.Analyze(buf.Samples, res.Onsets, buf.Duration, buf.SampleRate, opts.MinVelocity, opts.MaxVelocity)
	res.DynamicRangeDB = dynamics.RangeDB(res.Velocities)
	res.DynamicContours = dynamics.DetectContours(res.Velocities)

	report("segment", 0.7)
	notes := segment.Notes(res.Onsets, contour, res.Velocities, buf.Duration, opts.Segment)
	notes = segment.NormalizeStartTimes(notes)
	res.Notes = notes

	report("key", 0.85)
	res.KeyName = opts.Key
	if res.KeyName == "" {
		if guess, ok := keydetect.FromNotes(notes); ok {
			res.Key = &model.KeyGuessInfo{
				Name:       guess.Name,
				Root:       guess.Root,
				Minor:      guess.Minor,
				Confidence: guess.Score,
			}
			res.KeyName = guess.Name
		} else {
			res.KeyName = "C"
		}
	}

	report("quantize", 0.9)
	quantized, err := quantize.Notes(notes, res.Tempo.BPM, opts.MinQuantization, res.KeyName)
	if err != nil {
		return nil, err
	}
	res.Quantized = quantized
	res.Measures = quantize.GroupIntoMeasures(quantized, opts.BeatsPerMeasure)

	report("done", 1)
	return res, nil
}

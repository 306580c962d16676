// Package keydetect guesses a key signature from pitch-class content
// so the pipeline can spell and harmonize a take without asking the
// user first. The guess is advisory; callers override it freely.
package keydetect

import (
	"math"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gopkg.in/music-theory.v0/key"

	"github.com/jsphweid/melodex/model"
)

// Krumhansl-Schmuckler key profiles
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}

	// root spellings matching the standard key signatures, so every
	// guess name parses back as a key signature (Eb major, not D#)
	majorNames = []string{"C", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
	minorNames = []string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "G#", "A", "Bb", "B"}
)

type Guess struct {
	Root  int
	Minor bool
	Name  string
	Score float64
	// Key carries the full music-theory representation. Name always
	// parses back as a key signature ("Eb", "F#m").
	Key key.Key
}

// FromNotes correlates the melody's duration-weighted pitch-class
// histogram against the 24 major/minor profiles.
func FromNotes(notes []model.NoteEvent) (Guess, bool) {
	if len(notes) == 0 {
		return Guess{}, false
	}
	chroma := make([]float64, 12)
	for _, n := range notes {
		chroma[((n.MidiNumber%12)+12)%12] += n.Duration
	}
	return bestGuess(chroma)
}

// FromSamples builds a chroma vector straight from audio and guesses
// from that; used when the caller wants a key before segmentation.
func FromSamples(samples []float32, sampleRate int) (Guess, bool) {
	chroma := computeChroma(samples, sampleRate)
	return bestGuess(chroma)
}

func bestGuess(chroma []float64) (Guess, bool) {
	var total float64
	for _, v := range chroma {
		total += v
	}
	if total == 0 {
		return Guess{}, false
	}

	var guesses []Guess
	for root := 0; root < 12; root++ {
		majKey := key.Of(majorNames[root] + " major")
		guesses = append(guesses, Guess{
			Root:  root,
			Minor: false,
			Name:  majKey.Root.String(majKey.AdjSymbol),
			Score: correlate(chroma, shiftProfile(majorProfile, root)),
			Key:   majKey,
		})
		// minor names come from the table; AdjSymbolOf reads a leading
		// F as flattish and would respell F# minor as Gb
		guesses = append(guesses, Guess{
			Root:  root,
			Minor: true,
			Name:  minorNames[root] + "m",
			Score: correlate(chroma, shiftProfile(minorProfile, root)),
			Key:   key.Of(minorNames[root] + " minor"),
		})
	}
	sort.Slice(guesses, func(i, j int) bool { return guesses[i].Score > guesses[j].Score })
	return guesses[0], true
}

func shiftProfile(profile []float64, shift int) []float64 {
	shifted := make([]float64, 12)
	for i := 0; i < 12; i++ {
		shifted[i] = profile[(i-shift+12)%12]
	}
	return shifted
}

func correlate(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(len(a))
	meanB /= float64(len(b))
	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func computeChroma(samples []float32, sampleRate int) []float64 {
	chroma := make([]float64, 12)
	frameSize := 4096
	hopSize := 2048
	if frameSize > len(samples) {
		return chroma
	}

	frame := make([]float64, frameSize)
	for pos := 0; pos+frameSize <= len(samples); pos += hopSize {
		for i := 0; i < frameSize; i++ {
			frame[i] = float64(samples[pos+i])
		}
		window.Apply(frame, window.Hann)
		spectrum := fft.FFTReal(frame)
		for bin := 1; bin < frameSize/2; bin++ {
			freq := float64(bin) * float64(sampleRate) / float64(frameSize)
			if freq < 60 || freq > 2000 {
				continue
			}
			mag := math.Hypot(real(spectrum[bin]), imag(spectrum[bin]))
			midi := 12*math.Log2(freq/440.0) + 69
			pc := ((int(math.Round(midi)) % 12) + 12) % 12
			chroma[pc] += mag
		}
	}
	return chroma
}

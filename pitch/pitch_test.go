package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/melodex/model"
)

const testSampleRate = 44100

func sine(freq, amplitude, seconds float64) []float32 {
	n := int(seconds * testSampleRate)
	res := make([]float32, n)
	for i := range res {
		res[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/testSampleRate))
	}
	return res
}

func TestDetectContourTracksAPureTone(t *testing.T) {
	contour := DetectContour(sine(440, 0.3, 0.5), testSampleRate, DefaultOptions())

	assert := assert.New(t)
	assert.NotEmpty(contour.Frames)

	valid := 0
	for _, f := range contour.Frames {
		if !f.Valid {
			continue
		}
		valid++
		assert.Equal(f.Midi, 69)
		assert.InDelta(f.Frequency, 440.0, 2.0)
		assert.GreaterOrEqual(f.Clarity, 0.8)
	}
	assert.Greater(valid, len(contour.Frames)/2)
}

func TestDetectContourMarksSilenceInvalid(t *testing.T) {
	contour := DetectContour(make([]float32, testSampleRate/2), testSampleRate, DefaultOptions())

	assert := assert.New(t)
	for _, f := range contour.Frames {
		assert.False(f.Valid)
	}
}

func TestDetectContourTooFewSamples(t *testing.T) {
	contour := DetectContour(make([]float32, 100), testSampleRate, DefaultOptions())

	assert := assert.New(t)
	assert.Empty(contour.Frames)
}

// contourAt builds frames 10ms apart directly from a frequency series.
func contourAt(freqs []float64) model.PitchContour {
	contour := model.PitchContour{SampleRate: testSampleRate, HopSize: 441}
	for i, freq := range freqs {
		f := model.PitchFrame{Time: float64(i) * 0.01, Clarity: 0.9}
		if freq > 0 {
			setFrequency(&f, freq)
		}
		contour.Frames = append(contour.Frames, f)
	}
	return contour
}

func TestGetSegmentPitchTakesTheMode(t *testing.T) {
	// 3 stray frames against 7 on the note
	freqs := []float64{440, 440, 440, 440, 523.25, 440, 523.25, 440, 466.16, 440}
	sp, ok := GetSegmentPitch(contourAt(freqs), 0, 1)

	assert := assert.New(t)
	assert.True(ok)
	assert.Equal(sp.Midi, 69)
	assert.InDelta(sp.Frequency, 440.0, 0.01)
	assert.InDelta(sp.Confidence, 0.7*0.9, 1e-6)
}

func TestGetSegmentPitchNoValidFrames(t *testing.T) {
	_, ok := GetSegmentPitch(contourAt([]float64{0, 0, 0}), 0, 1)

	assert := assert.New(t)
	assert.False(ok)
}

func TestSmoothContourRemovesSingleFrameSpike(t *testing.T) {
	freqs := []float64{440, 440, 442, 440, 440}
	smoothed := SmoothContour(contourAt(freqs), 5)

	assert := assert.New(t)
	assert.InDelta(smoothed.Frames[2].Frequency, 440.0, 0.5)
}

func TestSmoothContourKeepsRealPitchChanges(t *testing.T) {
	// an octave step must not blur into an in-between value
	freqs := []float64{220, 220, 220, 440, 440, 440}
	smoothed := SmoothContour(contourAt(freqs), 5)

	assert := assert.New(t)
	assert.Equal(smoothed.Frames[2].Midi, 57)
	assert.Equal(smoothed.Frames[3].Midi, 69)
}

func TestSnapContourZeroesCentsDeviation(t *testing.T) {
	snapped := SnapContour(contourAt([]float64{442, 0, 438}))

	assert := assert.New(t)
	assert.Equal(snapped.Frames[0].CentsDeviation, 0.0)
	assert.InDelta(snapped.Frames[0].Frequency, 440.0, 1e-9)
	assert.False(snapped.Frames[1].Valid)
}

func TestDetectVibratoFindsModulation(t *testing.T) {
	// 5 Hz modulation, 25 cents deep, over one second
	freqs := make([]float64, 100)
	for i := range freqs {
		ts := float64(i) * 0.01
		midi := 69 + 0.25*math.Sin(2*math.Pi*5*ts)
		freqs[i] = 440 * math.Pow(2, (midi-69)/12)
	}
	shape := DetectVibrato(contourAt(freqs), 0, 100)

	assert := assert.New(t)
	assert.NotNil(shape)
	assert.InDelta(shape.RateHz, 5.0, 1.0)
	assert.InDelta(shape.DepthCents, 25.0, 5.0)
}

func TestDetectVibratoRejectsSteadyPitch(t *testing.T) {
	freqs := make([]float64, 100)
	for i := range freqs {
		freqs[i] = 440
	}

	assert := assert.New(t)
	assert.Nil(DetectVibrato(contourAt(freqs), 0, 100))
}

func TestDetectVibratoRejectsShortRange(t *testing.T) {
	freqs := []float64{440, 442, 438, 440}

	assert := assert.New(t)
	assert.Nil(DetectVibrato(contourAt(freqs), 0, 4))
}

func TestRemoveIsolatedDropsLoneSpikes(t *testing.T) {
	// a single valid frame surrounded by silence has no support
	freqs := []float64{0, 0, 440, 0, 0}
	contour := contourAt(freqs)
	removeIsolated(contour.Frames)

	assert := assert.New(t)
	assert.False(contour.Frames[2].Valid)
}

func TestCorrectOctaveErrorsFoldsOutliers(t *testing.T) {
	freqs := []float64{440, 440, 880, 440, 440, 440}
	contour := contourAt(freqs)
	correctOctaveErrors(contour.Frames)

	assert := assert.New(t)
	assert.Equal(contour.Frames[2].Midi, 69)
	assert.InDelta(contour.Frames[2].Frequency, 440.0, 0.01)
}

package dynamics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/melodex/model"
)

// constant-amplitude samples, one value per sample
func constantSamples(amplitude float32, n int) []float32 {
	res := make([]float32, n)
	for i := range res {
		res[i] = amplitude
	}
	return res
}

func TestAnalyzeUniformLoudnessMapsToReferenceVelocity(t *testing.T) {
	samples := constantSamples(0.5, 4000)
	infos := Analyze(samples, []float64{0, 1, 2, 3}, 4, 1000, 30, 120)

	assert := assert.New(t)
	assert.Len(infos, 4)
	for _, info := range infos {
		assert.Equal(info.Velocity, 100)
		assert.InDelta(info.RMS, 0.5, 1e-6)
		assert.InDelta(info.Peak, 0.5, 1e-6)
	}
}

func TestAnalyzeQuietSegmentGetsLowerVelocity(t *testing.T) {
	samples := constantSamples(0.5, 4000)
	// first attack window much quieter
	for i := 0; i < 100; i++ {
		samples[i] = 0.05
	}
	infos := Analyze(samples, []float64{0, 1, 2, 3}, 4, 1000, 30, 120)

	assert := assert.New(t)
	assert.Less(infos[0].Velocity, infos[1].Velocity)
	assert.Equal(infos[1].Velocity, 100)
}

func TestAnalyzeNoOnsets(t *testing.T) {
	assert := assert.New(t)
	assert.Nil(Analyze(constantSamples(0.5, 1000), nil, 1, 1000, 30, 120))
}

func TestAnalyzeSilenceClampsToFloor(t *testing.T) {
	infos := Analyze(make([]float32, 2000), []float64{0, 1}, 2, 1000, 30, 120)

	assert := assert.New(t)
	assert.Len(infos, 2)
	assert.Equal(infos[0].Velocity, 30)
	assert.Equal(infos[1].Velocity, 30)
}

func TestRangeDB(t *testing.T) {
	assert := assert.New(t)

	uniform := []model.VelocityInfo{{RMS: 0.5}, {RMS: 0.5}}
	assert.InDelta(RangeDB(uniform), 0.0, 1e-9)

	spread := []model.VelocityInfo{{RMS: 0.05}, {RMS: 0.5}}
	assert.InDelta(RangeDB(spread), 20.0, 1e-6)

	assert.Equal(RangeDB(nil), 0.0)
	assert.Equal(RangeDB([]model.VelocityInfo{{RMS: 0}}), 0.0)
}

func velocities(vels ...int) []model.VelocityInfo {
	res := make([]model.VelocityInfo, len(vels))
	for i, v := range vels {
		res[i] = model.VelocityInfo{Velocity: v}
	}
	return res
}

func TestDetectContoursFindsCrescendo(t *testing.T) {
	contours := DetectContours(velocities(50, 60, 70, 80))

	assert := assert.New(t)
	assert.Len(contours, 1)
	assert.Equal(contours[0].Kind, Crescendo)
	assert.Equal(contours[0].StartIndex, 0)
	assert.Equal(contours[0].EndIndex, 3)
}

func TestDetectContoursFindsDecrescendo(t *testing.T) {
	contours := DetectContours(velocities(100, 90, 80, 70, 60))

	assert := assert.New(t)
	assert.Len(contours, 1)
	assert.Equal(contours[0].Kind, Decrescendo)
}

func TestDetectContoursIgnoresFlatAndShortRuns(t *testing.T) {
	assert := assert.New(t)
	assert.Empty(DetectContours(velocities(80, 80, 80, 80)))
	// two segments rising is not enough of a run
	assert.Empty(DetectContours(velocities(60, 80, 60, 80)))
	// consistent direction but under the total swing
	assert.Empty(DetectContours(velocities(60, 66, 72, 78)))
}

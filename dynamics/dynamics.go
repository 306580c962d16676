package dynamics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
)

// Loudness is judged on the attack transient only. Sustain level says
// more about the instrument's decay than about how hard the note was
// played.
const attackWindowSec = 0.05

// Analyze measures one VelocityInfo per onset-bounded segment,
// index-aligned with the onsets. The reference loudness is the 75th
// percentile RMS across segments, which a couple of outliers can't
// drag around; reference RMS maps to velocity 100 and the rest follow
// a log curve.
func Analyze(samples []float32, onsets []float64, totalDuration float64, sampleRate, minVel, maxVel int) []model.VelocityInfo {
	if len(onsets) == 0 {
		return nil
	}

	rmss := make([]float64, len(onsets))
	peaks := make([]float64, len(onsets))
	for i, start := range onsets {
		end := totalDuration
		if i+1 < len(onsets) {
			end = onsets[i+1]
		}
		if end > start+attackWindowSec {
			end = start + attackWindowSec
		}
		rmss[i], peaks[i] = measure(samples, sampleRate, start, end)
	}

	reference := referenceRMS(rmss)

	res := make([]model.VelocityInfo, len(onsets))
	for i := range onsets {
		vel := minVel
		if rmss[i] > 0 && reference > 0 {
			raw := 100 + 40*math.Log10(rmss[i]/reference)
			vel = util.Clamp(int(math.Round(raw)), minVel, maxVel)
		}
		res[i] = model.VelocityInfo{Velocity: vel, RMS: rmss[i], Peak: peaks[i]}
	}
	return res
}

func measure(samples []float32, sampleRate int, start, end float64) (rms, peak float64) {
	lo := int(start * float64(sampleRate))
	hi := int(end * float64(sampleRate))
	if lo < 0 {
		lo = 0
	}
	if hi > len(samples) {
		hi = len(samples)
	}
	if hi <= lo {
		return 0, 0
	}
	var sum float64
	for i := lo; i < hi; i++ {
		v := math.Abs(float64(samples[i]))
		sum += v * v
		if v > peak {
			peak = v
		}
	}
	return math.Sqrt(sum / float64(hi-lo)), peak
}

func referenceRMS(rmss []float64) float64 {
	var nonzero []float64
	for _, r := range rmss {
		if r > 0 {
			nonzero = append(nonzero, r)
		}
	}
	if len(nonzero) == 0 {
		return 0
	}
	sort.Float64s(nonzero)
	return stat.Quantile(0.75, stat.Empirical, nonzero, nil)
}

// RangeDB is the global dynamic range over segments with nonzero RMS.
func RangeDB(infos []model.VelocityInfo) float64 {
	min := math.Inf(1)
	max := 0.0
	for _, info := range infos {
		if info.RMS <= 0 {
			continue
		}
		if info.RMS < min {
			min = info.RMS
		}
		if info.RMS > max {
			max = info.RMS
		}
	}
	if max == 0 || math.IsInf(min, 1) || min == 0 {
		return 0
	}
	return 20 * math.Log10(max/min)
}

type ContourKind string

const (
	Crescendo   ContourKind = "crescendo"
	Decrescendo ContourKind = "decrescendo"
)

// Contour is a labeled run of segments moving consistently louder or
// softer.
type Contour struct {
	Kind       ContourKind `json:"kind"`
	StartIndex int         `json:"start_index"`
	EndIndex   int         `json:"end_index"` // inclusive
}

const (
	contourMinRun   = 3
	contourMinStep  = 5  // velocity units per segment
	contourMinSwing = 20 // total velocity units across the run
)

// DetectContours finds crescendo/decrescendo runs: at least 3 segments
// stepping more than 5 velocity units in one direction with at least a
// 20-unit total swing.
func DetectContours(infos []model.VelocityInfo) []Contour {
	var res []Contour
	i := 0
	for i < len(infos)-1 {
		dir := direction(infos[i].Velocity, infos[i+1].Velocity)
		if dir == 0 {
			i++
			continue
		}
		j := i + 1
		for j < len(infos)-1 && direction(infos[j].Velocity, infos[j+1].Velocity) == dir {
			j++
		}
		runLen := j - i + 1
		swing := infos[j].Velocity - infos[i].Velocity
		if dir < 0 {
			swing = -swing
		}
		if runLen >= contourMinRun && swing >= contourMinSwing {
			kind := Crescendo
			if dir < 0 {
				kind = Decrescendo
			}
			res = append(res, Contour{Kind: kind, StartIndex: i, EndIndex: j})
		}
		i = j
	}
	return res
}

func direction(a, b int) int {
	switch {
	case b-a > contourMinStep:
		return 1
	case a-b > contourMinStep:
		return -1
	default:
		return 0
	}
}

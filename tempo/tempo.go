package tempo

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
)

const (
	binWidth = 0.010 // seconds

	// IOIs outside this range are noise or phrase gaps, not beats
	minPlausibleIOI = 0.1
	maxPlausibleIOI = 2.0

	// share of total mass a bin would have if it clearly dominated;
	// confidence is normalized against it
	dominanceBaseline = 0.30
)

// Analyze derives BPM from inter-onset timing statistics. Fewer than 4
// onsets degrades to the observable fallback {120, confidence 0}
// instead of erroring, so downstream stages always get a usable tempo.
func Analyze(onsets []float64, minBPM, maxBPM float64) model.TempoEstimate {
	fallback := model.TempoEstimate{BPM: constants.FallbackBPM, Confidence: 0}
	if len(onsets) < constants.MinOnsetsForTempo {
		return fallback
	}

	iois := gatherIOIs(onsets)
	if len(iois) == 0 {
		return fallback
	}

	minIOI := 60.0 / maxBPM
	maxIOI := 60.0 / minBPM

	bins := make(map[int][]float64)
	var total int
	for _, ioi := range iois {
		if ioi < minIOI || ioi > maxIOI {
			continue
		}
		bins[int(ioi/binWidth)] = append(bins[int(ioi/binWidth)], ioi)
		total++
	}
	if total == 0 {
		return fallback
	}

	candidates := rankCandidates(bins)
	top := candidates[0]

	bpm := 60.0 / top.ioi
	confidence := math.Min(float64(top.count)/float64(total)/dominanceBaseline, 1)

	// Missed onsets make the double-period bin win; an overeager flux
	// stage makes the half-period bin win. When the runner-up sits at a
	// clean 2:1 against the winner with enough weight and lands in the
	// more believable 60-140 range, trust it instead.
	if len(candidates) > 1 {
		second := candidates[1]
		ratio := second.ioi / top.ioi
		weight := float64(second.count) / float64(top.count)
		altBPM := 60.0 / second.ioi
		nearDouble := ratio > 1.8 && ratio < 2.2 && weight >= 0.5
		nearHalf := ratio > 0.45 && ratio < 0.55 && weight >= 0.7
		if (nearDouble || nearHalf) && altBPM >= 60 && altBPM <= 140 && (bpm < 60 || bpm > 140) {
			bpm = altBPM
			confidence *= 0.9
		}
	}

	return model.TempoEstimate{BPM: bpm, Confidence: confidence}
}

// gatherIOIs collects consecutive intervals plus half of every
// skip-one interval; the latter recovers the beat period when the
// onset detector missed every other note.
func gatherIOIs(onsets []float64) []float64 {
	var res []float64
	add := func(ioi float64) {
		if ioi >= minPlausibleIOI && ioi <= maxPlausibleIOI {
			res = append(res, ioi)
		}
	}
	for i := 1; i < len(onsets); i++ {
		add(onsets[i] - onsets[i-1])
	}
	for i := 2; i < len(onsets); i++ {
		add((onsets[i] - onsets[i-2]) / 2)
	}
	return res
}

type candidate struct {
	ioi   float64
	count int
}

// rankCandidates smooths each bin with its immediate neighbors and
// sorts by the summed count. A candidate's IOI is the weighted mean of
// the raw intervals in its 3-bin window, not the bin center.
func rankCandidates(bins map[int][]float64) []candidate {
	var res []candidate
	for bin := range bins {
		var pooled []float64
		for _, b := range []int{bin - 1, bin, bin + 1} {
			pooled = append(pooled, bins[b]...)
		}
		res = append(res, candidate{ioi: stat.Mean(pooled, nil), count: len(pooled)})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].count != res[j].count {
			return res[i].count > res[j].count
		}
		return res[i].ioi < res[j].ioi
	})
	return res
}

// Refine grid-searches BPM around an initial estimate in 0.5 steps,
// scoring each candidate by how tightly the onsets phase-lock to its
// beat period.
func Refine(onsets []float64, initialBPM, toleranceBPM float64) float64 {
	if len(onsets) == 0 {
		return initialBPM
	}
	best := initialBPM
	bestScore := math.Inf(-1)
	for bpm := initialBPM - toleranceBPM; bpm <= initialBPM+toleranceBPM; bpm += 0.5 {
		if bpm <= 0 {
			continue
		}
		period := 60.0 / bpm
		var score float64
		for _, t := range onsets {
			phase := t/period - math.Floor(t/period)
			score += math.Cos(2 * math.Pi * phase)
		}
		if score > bestScore {
			bestScore = score
			best = bpm
		}
	}
	return best
}

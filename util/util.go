package util

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Clamp[A constraints.Ordered](v A, lo A, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Sum[A constraints.Integer | constraints.Float](nums []A) A {
	var total A
	for _, v := range nums {
		total += v
	}
	return total
}

func Mean(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	return Sum(nums) / float64(len(nums))
}

// Median copies its input; the caller's slice is left unsorted.
func Median(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	sorted := make([]float64, len(nums))
	copy(sorted, nums)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// MedianInt returns the median of a copy of nums, lower-middle on ties.
func MedianInt(nums []int) int {
	if len(nums) == 0 {
		return 0
	}
	sorted := make([]int, len(nums))
	copy(sorted, nums)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// Mode returns the most frequent value and its count. Ties break toward
// the smaller value so the result is deterministic.
func Mode[A constraints.Integer](nums []A) (A, int) {
	var best A
	var bestCount int
	counts := make(map[A]int)
	for _, v := range nums {
		counts[v]++
	}
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best = v
			bestCount = c
		}
	}
	return best, bestCount
}

// FreqToMidi converts Hz to fractional MIDI (A4=440 → 69).
func FreqToMidi(freq float64) float64 {
	return 12*math.Log2(freq/440.0) + 69
}

// MidiToFreq converts integer MIDI to Hz.
func MidiToFreq(midi int) float64 {
	return 440.0 * math.Pow(2, float64(midi-69)/12)
}

package constants

import "os"

func GetServeAddr() string {
	addr := os.Getenv("MELODEX_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

// Analysis defaults. Every stage takes these as explicit parameters;
// nothing reads them through shared state.
const (
	DefaultWindowSize = 2048
	DefaultHopSize    = 512

	// onset detection
	DefaultThresholdK = 1.5
	DefaultMinGapSec  = 0.05

	// pitch tracking
	DefaultMinFreq          = 80.0
	DefaultMaxFreq          = 1100.0
	DefaultClarityThreshold = 0.8

	// tempo
	DefaultMinBPM     = 60.0
	DefaultMaxBPM     = 180.0
	FallbackBPM       = 120.0
	MinOnsetsForTempo = 4

	// dynamics
	DefaultMinVelocity = 30
	DefaultMaxVelocity = 120

	// segmentation
	DefaultMinNoteDurationSec = 0.05

	DefaultBeatsPerMeasure = 4
)

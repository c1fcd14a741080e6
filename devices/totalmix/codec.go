package totalmix

import (
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// The console represents every parameter as a float in [0, 1]. These
// functions map between that wire form and engineering units. Ranges are
// fixed properties of the console's EQ, not tunables.
const (
	minFreqHz = 20.0
	maxFreqHz = 20000.0
	minGainDb = -20.0
	maxGainDb = 20.0
	minQ      = 0.4
	maxQ      = 9.9

	// Wire value the console uses for a shelf filter. Anything below the
	// shelf threshold reads back as a peak.
	shelfNorm      = 0.333333
	shelfThreshold = 0.2
)

// Section identifies which EQ section a band slot belongs to. The two
// sections live on different console pages and have different slot counts.
type Section int

const (
	RoomEQ Section = iota
	ParametricEQ
)

// FilterKind is the Squig-style filter type string used on the HTTP
// surface.
type FilterKind string

const (
	Peak      FilterKind = "PK"
	LowShelf  FilterKind = "LSQ"
	HighShelf FilterKind = "HSQ"
)

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FreqToNorm converts Hz (20-20000) to the wire form, logarithmic.
func FreqToNorm(hz float64) float64 {
	logMin, logMax := math.Log10(minFreqHz), math.Log10(maxFreqHz)
	logFreq := math.Log10(clamp(hz, minFreqHz, maxFreqHz))
	return (logFreq - logMin) / (logMax - logMin)
}

// NormToFreq converts the wire form back to Hz, logarithmic.
func NormToFreq(norm float64) float64 {
	logMin, logMax := math.Log10(minFreqHz), math.Log10(maxFreqHz)
	return math.Pow(10, logMin+norm*(logMax-logMin))
}

// GainToNorm converts dB (-20 to +20) to the wire form, linear.
func GainToNorm(db float64) float64 {
	return (clamp(db, minGainDb, maxGainDb) - minGainDb) / (maxGainDb - minGainDb)
}

// NormToGain converts the wire form to dB.
func NormToGain(norm float64) float64 {
	return norm*(maxGainDb-minGainDb) + minGainDb
}

// QToNorm converts Q (0.4-9.9) to the wire form, linear.
func QToNorm(q float64) float64 {
	return (clamp(q, minQ, maxQ) - minQ) / (maxQ - minQ)
}

// NormToQ converts the wire form to Q.
func NormToQ(norm float64) float64 {
	return minQ + norm*(maxQ-minQ)
}

// NormToKind decodes a wire type value for the band at the given slot.
//
// The wire carries only a peak/shelf distinction; shelf direction is
// inferred from the slot's position within its section (Room EQ: slot 1 is
// a low shelf, slots 8 and 9 are high shelves; Parametric EQ: slot 1 low,
// slot 3 high). A shelf written to any other slot reads back as a peak.
// This is a limitation of the console protocol and cannot round-trip.
func NormToKind(norm float64, slot int, section Section) FilterKind {
	if norm < shelfThreshold {
		return Peak
	}

	switch section {
	case RoomEQ:
		switch slot {
		case 1:
			return LowShelf
		case 8, 9:
			return HighShelf
		}
	case ParametricEQ:
		switch slot {
		case 1:
			return LowShelf
		case 3:
			return HighShelf
		}
	}

	return Peak
}

// KindToNorm encodes a Squig filter type string to the wire form. The
// console only distinguishes peak (0.0) and shelf; high-pass and low-pass
// requests are not supported and encode as peak.
func KindToNorm(kind string) float64 {
	switch strings.ToUpper(kind) {
	case "LSQ", "LS", "LSC", "HSQ", "HS", "HSC":
		return shelfNorm
	default:
		return 0.0
	}
}

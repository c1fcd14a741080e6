package totalmix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreqCodecRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for _, hz := range []float64{20, 25, 63, 100, 440, 1000, 2500, 8000, 16000, 20000} {
		norm := FreqToNorm(hz)
		assert.GreaterOrEqual(norm, 0.0)
		assert.LessOrEqual(norm, 1.0)
		assert.InDelta(hz, NormToFreq(norm), hz*1e-9, "round trip failed for %v Hz", hz)
	}
}

func TestFreqToNormMonotonic(t *testing.T) {
	prev := FreqToNorm(20)
	for hz := 21.0; hz <= 20000; hz += 7 {
		norm := FreqToNorm(hz)
		assert.Greater(t, norm, prev, "not strictly increasing at %v Hz", hz)
		prev = norm
	}
}

func TestFreqToNormClamps(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.0, FreqToNorm(5))
	assert.Equal(1.0, FreqToNorm(96000))
}

func TestGainCodec(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		db   float64
		norm float64
	}{
		{-20, 0.0},
		{0, 0.5},
		{6, 0.65},
		{20, 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(tt.norm, GainToNorm(tt.db), 1e-9)
		assert.InDelta(tt.db, NormToGain(tt.norm), 1e-9)
	}

	// Out-of-range requests clamp before transmission.
	assert.Equal(1.0, GainToNorm(35))
	assert.Equal(0.0, GainToNorm(-35))
}

func TestQCodec(t *testing.T) {
	assert := assert.New(t)

	for _, q := range []float64{0.4, 0.71, 1.0, 4.3, 9.9} {
		assert.InDelta(q, NormToQ(QToNorm(q)), 1e-9, "round trip failed for Q=%v", q)
	}
	assert.Equal(0.0, QToNorm(0.1))
	assert.Equal(1.0, QToNorm(42))
}

func TestNormToKindBoundary(t *testing.T) {
	assert := assert.New(t)

	// The shelf threshold is exactly 0.2.
	assert.Equal(Peak, NormToKind(0.199999, 1, RoomEQ))
	assert.Equal(LowShelf, NormToKind(0.2, 1, RoomEQ))
	assert.Equal(LowShelf, NormToKind(0.333333, 1, RoomEQ))
	assert.Equal(Peak, NormToKind(0.0, 1, RoomEQ))
}

func TestShelfDirectionBySlot(t *testing.T) {
	assert := assert.New(t)

	// Shelf direction is inferred from slot position; the wire does not
	// carry it. A shelf value on a non-edge slot reads back as a peak --
	// that is the protocol's lossy mapping, pinned here on purpose.
	tests := []struct {
		section Section
		slot    int
		expect  FilterKind
	}{
		{RoomEQ, 1, LowShelf},
		{RoomEQ, 5, Peak},
		{RoomEQ, 8, HighShelf},
		{RoomEQ, 9, HighShelf},
		{ParametricEQ, 1, LowShelf},
		{ParametricEQ, 2, Peak},
		{ParametricEQ, 3, HighShelf},
	}
	for _, tt := range tests {
		assert.Equal(tt.expect, NormToKind(shelfNorm, tt.slot, tt.section),
			"section=%v slot=%d", tt.section, tt.slot)
	}
}

func TestKindToNorm(t *testing.T) {
	assert := assert.New(t)

	for _, kind := range []string{"LSQ", "LS", "LSC", "HSQ", "HS", "HSC", "hsq"} {
		assert.InDelta(shelfNorm, KindToNorm(kind), 1e-9, "kind %q should encode as shelf", kind)
	}
	// The console has no high-pass or low-pass; those fall back to peak.
	for _, kind := range []string{"PK", "HP", "LP", "", "bogus"} {
		assert.Equal(0.0, KindToNorm(kind), "kind %q should encode as peak", kind)
	}
}

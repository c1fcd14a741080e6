package totalmix

import (
	"math"

	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

const (
	roomEQSlots       = 9
	parametricEQSlots = 3
	maxBands          = roomEQSlots + parametricEQSlots

	// Bands whose gain magnitude is at or below this are treated as
	// unused, in both directions.
	neutralGainDb = 0.1

	// Wire form of 0 dB, sent to clear a slot.
	neutralGainNorm = 0.5
)

// Band is one EQ stage in engineering units, as carried on the HTTP
// surface.
type Band struct {
	Type string  `json:"type"`
	Freq float64 `json:"freq"`
	Gain float64 `json:"gain"`
	Q    float64 `json:"q"`
}

// WriteResult counts the non-neutral bands actually transmitted per
// section.
type WriteResult struct {
	RoomEQ       int
	ParametricEQ int
}

// ReadEQ returns the channel's EQ profile: Room EQ slots 1..9 followed by
// Parametric EQ slots 1..3, in slot order, with neutral-gain slots
// omitted. It navigates the console but changes no parameter.
//
// Values come from the state cache; an address the console has never
// reported decodes from the documented mid-scale default rather than
// failing.
func (t *TotalMix) ReadEQ(channel int) ([]Band, error) {
	t.session.Lock()
	defer t.session.Unlock()

	filters := []Band{}

	if err := t.selectChannel(PageRoomEQ, channel, t.settle.OffsetRead); err != nil {
		return nil, err
	}
	for slot := 1; slot <= roomEQSlots; slot++ {
		if band, ok := t.readBand(PageRoomEQ, slot, RoomEQ); ok {
			filters = append(filters, band)
		}
	}

	if err := t.selectChannel(PageParametricEQ, channel, t.settle.OffsetRead); err != nil {
		return nil, err
	}
	for slot := 1; slot <= parametricEQSlots; slot++ {
		if band, ok := t.readBand(PageParametricEQ, slot, ParametricEQ); ok {
			filters = append(filters, band)
		}
	}

	logging.Get(logging.APP).Info("read eq", "channel", channel, "bands", len(filters))
	return filters, nil
}

// readBand decodes one slot from the cache. The bool is false for slots
// holding neutral gain; those are absent from the profile.
func (t *TotalMix) readBand(page, slot int, section Section) (Band, bool) {
	gainDb := NormToGain(t.store.GetFloat(bandAddr(page, "Gain", slot), 0.5))
	if math.Abs(gainDb) <= neutralGainDb {
		return Band{}, false
	}

	freqHz := NormToFreq(t.store.GetFloat(bandAddr(page, "Freq", slot), 0.5))
	q := NormToQ(t.store.GetFloat(bandAddr(page, "Q", slot), 0.5))
	kind := NormToKind(t.store.GetFloat(bandAddr(page, "Type", slot), 0.0), slot, section)

	return Band{
		Type: string(kind),
		Freq: math.Round(freqHz),
		Gain: math.Round(gainDb*10) / 10,
		Q:    math.Round(q*100) / 100,
	}, true
}

// WriteEQ applies up to maxBands filters to the channel: the first nine go
// to the Room EQ section, the remainder to Parametric EQ. Unused slots are
// neutralized. Room EQ is always left enabled; Parametric EQ is enabled
// only when it received a non-neutral band, otherwise cleared and turned
// off.
//
// Commands are fire-and-forget. A caller that aborts mid-sequence leaves
// the console in whatever partial state the sent commands produced; there
// is no rollback.
func (t *TotalMix) WriteEQ(channel int, filters []Band) (WriteResult, error) {
	t.session.Lock()
	defer t.session.Unlock()

	if len(filters) > maxBands {
		filters = filters[:maxBands]
	}
	room := filters
	var peq []Band
	if len(filters) > roomEQSlots {
		room = filters[:roomEQSlots]
		peq = filters[roomEQSlots:]
	}

	if err := t.selectChannel(PageRoomEQ, channel, t.settle.OffsetWrite); err != nil {
		return WriteResult{}, err
	}
	if err := t.writeSection(PageRoomEQ, roomEQSlots, room); err != nil {
		return WriteResult{}, err
	}
	// An empty Room EQ stays enabled with its bands neutralized; only the
	// Parametric section gets switched off when unused.
	if err := t.syncEnable(PageRoomEQ, true); err != nil {
		return WriteResult{}, err
	}

	if err := t.selectChannel(PageParametricEQ, channel, t.settle.OffsetWrite); err != nil {
		return WriteResult{}, err
	}
	hasFilters := countActive(peq) > 0
	if hasFilters {
		if err := t.writeSection(PageParametricEQ, parametricEQSlots, peq); err != nil {
			return WriteResult{}, err
		}
	} else {
		if err := t.writeSection(PageParametricEQ, parametricEQSlots, nil); err != nil {
			return WriteResult{}, err
		}
	}
	if err := t.syncEnable(PageParametricEQ, hasFilters); err != nil {
		return WriteResult{}, err
	}

	result := WriteResult{RoomEQ: countActive(room), ParametricEQ: countActive(peq)}
	logging.Get(logging.APP).Info("wrote eq",
		"channel", channel, "roomEQ", result.RoomEQ, "peq", result.ParametricEQ)
	return result, nil
}

// writeSection sends every slot of a section: the band's four parameters
// where an input band exists, a lone neutral gain where it does not. Each
// slot is followed by a short settle so the console's sequential state
// machine keeps up.
func (t *TotalMix) writeSection(page, slots int, bands []Band) error {
	for slot := 1; slot <= slots; slot++ {
		if slot <= len(bands) {
			band := bands[slot-1]
			q := band.Q
			if q == 0 {
				q = 1.0
			}
			if err := t.out.SetFloat(bandAddr(page, "Type", slot), KindToNorm(band.Type)); err != nil {
				return err
			}
			if err := t.out.SetFloat(bandAddr(page, "Freq", slot), FreqToNorm(band.Freq)); err != nil {
				return err
			}
			if err := t.out.SetFloat(bandAddr(page, "Gain", slot), GainToNorm(band.Gain)); err != nil {
				return err
			}
			if err := t.out.SetFloat(bandAddr(page, "Q", slot), QToNorm(q)); err != nil {
				return err
			}
		} else {
			if err := t.out.SetFloat(bandAddr(page, "Gain", slot), neutralGainNorm); err != nil {
				return err
			}
		}
		t.sleep(t.settle.SlotWrite)
	}
	return nil
}

// syncEnable brings a section's enable flag to the wanted state. The wire
// command is a toggle, not a set, so the cached state decides whether to
// send it at all; toggling an already-correct flag would flip it the wrong
// way.
func (t *TotalMix) syncEnable(page int, want bool) error {
	t.sleep(t.settle.EnableRead)
	enabled := t.store.GetFloat(enableAddr(page), 0.0) >= 0.5
	if enabled == want {
		return nil
	}
	logging.Get(logging.APP).Debug("toggling section enable", "page", page, "want", want)
	return t.out.SetFloat(enableAddr(page), 1.0)
}

func countActive(bands []Band) int {
	n := 0
	for _, band := range bands {
		if math.Abs(band.Gain) > neutralGainDb {
			n++
		}
	}
	return n
}

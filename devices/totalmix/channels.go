package totalmix

import (
	"fmt"

	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

// noChannel is the name the console reports for an unpopulated slot.
const noChannel = "n.a."

// ChannelName pairs a 1-based channel index with its console name.
type ChannelName struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// EnumerateChannels discovers the console's named channels by walking
// successive banks and reading the trackname slots from the cache after
// each bank settles.
//
// The console repeats the first bank's names once the real channels are
// exhausted, so names are deduplicated on a (name, slot) key and the walk
// stops at the first bank that contributes nothing new. The result is a
// snapshot; call again to refresh.
func (t *TotalMix) EnumerateChannels() ([]ChannelName, error) {
	t.session.Lock()
	defer t.session.Unlock()

	if err := t.out.SetFloat(pageAddr(PageMain), 1.0); err != nil {
		return nil, err
	}
	t.sleep(t.settle.PageSelect)

	channels := []ChannelName{}
	seen := map[string]bool{}

	for bank := 0; bank < t.maxChannels; bank += WindowWidth {
		if err := t.out.SetFloat("/setBankStart", float64(bank)); err != nil {
			return nil, err
		}
		// Wait for the console to rebroadcast this bank's tracknames.
		t.sleep(t.settle.BankNames)

		bankHasNew := false
		for slot := 1; slot <= WindowWidth; slot++ {
			name, ok := t.store.GetString(tracknameAddr(slot))
			if !ok || name == "" || name == noChannel {
				continue
			}
			// A repeated (name, slot) pair means the window wrapped around.
			key := fmt.Sprintf("%s_%d", name, slot)
			if bank > 0 && seen[key] {
				continue
			}
			seen[key] = true
			channels = append(channels, ChannelName{Index: bank + slot, Name: name})
			bankHasNew = true
		}

		if !bankHasNew {
			break
		}
	}

	logging.Get(logging.APP).Info("enumerated channels", "count", len(channels))
	return channels, nil
}

package totalmix

import (
	"fmt"
	"sync"
	"time"

	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

// WindowWidth is the number of channels the console exposes at once
// through its bank window.
const WindowWidth = 8

// Console pages. The page number is the first segment of every data
// address on that page.
const (
	PageMain         = 1
	PageParametricEQ = 2
	PageRoomEQ       = 4
)

// Sender is the fire-and-forget outbound half of the console connection.
// *devices.OscDevice satisfies it.
type Sender interface {
	SetFloat(addr string, val float64) error
}

// Settle holds the waits inserted after navigation and write commands.
// The console has no acknowledgement of any kind; these durations stand in
// for one and bound the probability that a dependent read or write lands
// before the console has caught up. Tune them against firmware latency
// rather than hardcoding new values downstream.
type Settle struct {
	// PageSelect follows a page-select command.
	PageSelect time.Duration
	// BankSelect follows a bank-start command.
	BankSelect time.Duration
	// OffsetRead follows an offset-select when the transaction is about to
	// read cached state; it must cover the console's full rebroadcast.
	OffsetRead time.Duration
	// OffsetWrite follows an offset-select when the transaction only
	// writes.
	OffsetWrite time.Duration
	// BankNames follows a bank-start during channel enumeration, covering
	// the trackname rebroadcast.
	BankNames time.Duration
	// SlotWrite follows each band's parameter burst.
	SlotWrite time.Duration
	// EnableRead precedes sampling a cached enable flag, giving the
	// console time to echo the flag after the band writes.
	EnableRead time.Duration
}

// DefaultSettle returns the waits tuned against TotalMix FX 1.96.
func DefaultSettle() Settle {
	return Settle{
		PageSelect:  30 * time.Millisecond,
		BankSelect:  30 * time.Millisecond,
		OffsetRead:  150 * time.Millisecond,
		OffsetWrite: 50 * time.Millisecond,
		BankNames:   150 * time.Millisecond,
		SlotWrite:   10 * time.Millisecond,
		EnableRead:  50 * time.Millisecond,
	}
}

// TotalMix drives one console through its OSC remote-controller protocol.
//
// The protocol is connectionless and order-dependent: only one bank of
// WindowWidth channels is addressable at a time, and repositioning the
// window is itself a sequence of timed commands. Every exported operation
// therefore takes the session lock for its whole navigate-then-act
// sequence; without it, concurrent transactions interleave navigation on
// the shared connection and corrupt each other's channel selection.
type TotalMix struct {
	out   Sender
	store *Store

	settle Settle
	// sleep is the wait-for-settle primitive; tests replace it.
	sleep func(time.Duration)

	// session serializes whole transactions against the console.
	session sync.Mutex

	// maxChannels bounds enumeration when the cache misbehaves.
	maxChannels int
}

func New(out Sender, store *Store, settle Settle) *TotalMix {
	return &TotalMix{
		out:         out,
		store:       store,
		settle:      settle,
		sleep:       time.Sleep,
		maxChannels: 256,
	}
}

// bankFor maps a 1-based channel index to its bank start and 0-based
// offset within the bank.
func bankFor(channel int) (bank, offset int) {
	return (channel - 1) / WindowWidth * WindowWidth, (channel - 1) % WindowWidth
}

func pageAddr(page int) string {
	return fmt.Sprintf("/%d/busOutput", page)
}

func tracknameAddr(slot int) string {
	return fmt.Sprintf("/%d/trackname%d", PageMain, slot)
}

// bandAddr builds a per-band data address. Room EQ parameters carry a
// "req" prefix on page 4; Parametric EQ parameters carry "eq" on page 2.
func bandAddr(page int, param string, slot int) string {
	prefix := "eq"
	if page == PageRoomEQ {
		prefix = "req"
	}
	return fmt.Sprintf("/%d/%s%s%d", page, prefix, param, slot)
}

func enableAddr(page int) string {
	prefix := "eq"
	if page == PageRoomEQ {
		prefix = "req"
	}
	return fmt.Sprintf("/%d/%sEnable", page, prefix)
}

// selectChannel points the console's bank window at the given 1-based
// channel on the given page: page select, bank start, offset select, each
// followed by its settle wait. offsetWait is the post-offset settle; reads
// need a longer one than writes because they depend on the rebroadcast
// completing. There is no way to verify the selection took.
func (t *TotalMix) selectChannel(page, channel int, offsetWait time.Duration) error {
	bank, offset := bankFor(channel)
	logging.Get(logging.APP).Debug("selecting channel",
		"page", page, "channel", channel, "bank", bank, "offset", offset)

	if err := t.out.SetFloat(pageAddr(page), 1.0); err != nil {
		return err
	}
	t.sleep(t.settle.PageSelect)
	if err := t.out.SetFloat("/setBankStart", float64(bank)); err != nil {
		return err
	}
	t.sleep(t.settle.BankSelect)
	if err := t.out.SetFloat("/setOffsetInBank", float64(offset)); err != nil {
		return err
	}
	t.sleep(offsetWait)
	return nil
}

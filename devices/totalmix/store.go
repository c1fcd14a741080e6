package totalmix

import (
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/kr0mka/totalmix-osc-bridge/devices"
)

// Store is the last-write-wins cache of every parameter the console has
// broadcast since the process started.
//
// The console never answers a read; the only way to observe its state is
// to cache the unsolicited updates it streams at us. The listener
// goroutine is the sole writer on the inbound path, but transactions also
// read (and never write) concurrently, so every access is serialized.
// There is no entry for an address until the console has mentioned it at
// least once; readers supply their own defaults.
type Store struct {
	mu    sync.Mutex
	cache map[string]any
}

func NewStore() *Store {
	return &Store{cache: make(map[string]any)}
}

// Put unconditionally overwrites the value for addr.
func (s *Store) Put(addr string, val any) {
	s.mu.Lock()
	s.cache[addr] = val
	s.mu.Unlock()
}

// GetFloat returns the cached value for addr as a float64, or def when the
// address has never been observed or cannot be read as a number.
func (s *Store) GetFloat(addr string, def float64) float64 {
	s.mu.Lock()
	val, ok := s.cache[addr]
	s.mu.Unlock()
	if !ok {
		return def
	}
	f, ok := devices.ToFloat(val)
	if !ok {
		return def
	}
	return f
}

// GetString returns the cached value for addr as a string. The second
// return is false when the address has never been observed.
func (s *Store) GetString(addr string) (string, bool) {
	s.mu.Lock()
	val, ok := s.cache[addr]
	s.mu.Unlock()
	if !ok {
		return "", false
	}
	return devices.ToString(val)
}

// Handle consumes one inbound message. Register it as the dispatcher's
// default handler so every broadcast lands in the cache.
func (s *Store) Handle(msg *osc.Message) {
	// "/" is the console's heartbeat; it carries no parameter.
	if msg.Address == "/" || len(msg.Arguments) == 0 {
		return
	}
	s.Put(msg.Address, msg.Arguments[len(msg.Arguments)-1])
}

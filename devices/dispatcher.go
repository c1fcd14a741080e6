package devices

import (
	"strings"
	"time"

	"github.com/hypebeast/go-osc/osc"

	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

type namedHandler struct {
	name    string
	handler func(*osc.Message)
}

// Dispatcher is a custom osc.Dispatcher, implementing the osc.Dispatcher interface.
//
// Handlers are matched against incoming addresses with matchAddr; an
// optional default handler sees every message regardless of address.
type Dispatcher struct {
	handlers       []namedHandler
	defaultHandler func(*osc.Message)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: []namedHandler{}}
}

func (s *Dispatcher) AddMsgHandler(addr string, handler func(*osc.Message)) error {
	s.handlers = append(s.handlers, namedHandler{addr, handler})
	return nil
}

// SetDefaultHandler registers a handler that receives every incoming
// message before any pattern handlers run.
func (s *Dispatcher) SetDefaultHandler(handler func(*osc.Message)) {
	s.defaultHandler = handler
}

// matchAddr checks if messageAddr matches the path pattern.
// Each "@" in path acts as a wildcard for a segment, and captured segments are returned.
// If path ends with "*", any additional segments in messageAddr are ignored.
// "*" does not capture anything.
func matchAddr(path, messageAddr string) (bool, []string) {
	pathSegs := splitSegs(path)
	addrSegs := splitSegs(messageAddr)

	endsWithStar := len(pathSegs) > 0 && pathSegs[len(pathSegs)-1] == "*"
	matchLen := len(pathSegs)
	if endsWithStar {
		// Remove the "*" for matching; allow extra segments in addrSegs
		matchLen--
		if len(addrSegs) < matchLen {
			return false, nil
		}
	} else {
		if len(pathSegs) != len(addrSegs) {
			return false, nil
		}
	}

	var captures []string
	for i := 0; i < matchLen; i++ {
		p := pathSegs[i]
		if p == "@" {
			captures = append(captures, addrSegs[i])
		} else if p != addrSegs[i] {
			return false, nil
		}
	}

	// If endsWithStar, allow any suffix
	return true, captures
}

// splitSegs splits an OSC address into segments, tolerating a leading "/".
func splitSegs(path string) []string {
	segs := strings.Split(path, "/")
	out := segs[:0]
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *Dispatcher) dispatchMessage(msg *osc.Message) {
	logging.Get(logging.OSC_IN).Debug("received", "addr", msg.Address, "args", msg.Arguments)
	if s.defaultHandler != nil {
		s.defaultHandler(msg)
	}
	for _, namedHandler := range s.handlers {
		if match, args := matchAddr(namedHandler.name, msg.Address); match {
			for _, arg := range args {
				msg.Arguments = append(msg.Arguments, arg)
			}
			namedHandler.handler(msg)
		}
	}
}

// Dispatch dispatches OSC packets. Implements the Dispatcher interface.
func (s *Dispatcher) Dispatch(packet osc.Packet) {
	switch p := packet.(type) {
	default:
		return

	case *osc.Message:
		s.dispatchMessage(p)

	case *osc.Bundle:
		timer := time.NewTimer(p.Timetag.ExpiresIn())

		go func() {
			<-timer.C
			for _, message := range p.Messages {
				s.dispatchMessage(message)
			}

			// Process all bundles
			for _, b := range p.Bundles {
				s.Dispatch(b)
			}
		}()
	}
}

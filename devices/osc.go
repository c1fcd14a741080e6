package devices

import (
	"fmt"
	"strconv"

	"github.com/hypebeast/go-osc/osc"

	"github.com/kr0mka/totalmix-osc-bridge/logging"
)

// OscClient is the outbound, fire-and-forget half of an OSC connection.
type OscClient interface {
	Send(packet osc.Packet) error
}

// OscServer is the inbound half of an OSC connection.
type OscServer interface {
	ListenAndServe() error
}

// OscDevice pairs a fire-and-forget client with a listening server sharing
// one dispatcher. There is no correlation between messages sent and
// messages received; the remote device broadcasts state changes whenever
// it pleases.
type OscDevice struct {
	c OscClient
	s OscServer

	d *Dispatcher
}

func NewOscDevice(c OscClient, s OscServer, d *Dispatcher) *OscDevice {
	return &OscDevice{c: c, s: s, d: d}
}

// NewUDPOscDevice builds an OscDevice over real UDP sockets: sending to
// sendIP:sendPort and listening on listenIP:listenPort.
func NewUDPOscDevice(sendIP string, sendPort int, listenIP string, listenPort int) *OscDevice {
	d := NewDispatcher()
	return &OscDevice{
		c: osc.NewClient(sendIP, sendPort),
		s: &osc.Server{
			Addr:       fmt.Sprintf("%s:%d", listenIP, listenPort),
			Dispatcher: d,
		},
		d: d,
	}
}

// Run serves the inbound stream until the server fails. It blocks; run it
// on its own goroutine.
func (o *OscDevice) Run() error {
	return o.s.ListenAndServe()
}

func (o *OscDevice) SetInt(key string, val int64) error {
	logging.Get(logging.OSC_OUT).Debug("send", "addr", key, "val", val)
	return o.c.Send(osc.NewMessage(key, int32(val)))
}

// SetFloat sends val as an OSC float32, the only float representation the
// console understands.
func (o *OscDevice) SetFloat(key string, val float64) error {
	logging.Get(logging.OSC_OUT).Debug("send", "addr", key, "val", val)
	return o.c.Send(osc.NewMessage(key, float32(val)))
}

func (o *OscDevice) SetString(key string, val string) error {
	logging.Get(logging.OSC_OUT).Debug("send", "addr", key, "val", val)
	return o.c.Send(osc.NewMessage(key, val))
}

// BindDefault registers a callback to run for every incoming message,
// before any address-specific bindings.
func (o *OscDevice) BindDefault(handler func(*osc.Message)) {
	o.d.SetDefaultHandler(handler)
}

// BindFloat binds a callback to run whenever a message is received for the given OSC address.
//
// The last argument of the message is converted to float64 best-effort;
// messages whose argument cannot be interpreted as a float are dropped.
func (o *OscDevice) BindFloat(key string, effect Callback[float64]) error {
	return o.d.AddMsgHandler(key, func(msg *osc.Message) {
		val, ok := FloatArg(msg)
		if !ok {
			logging.Get(logging.OSC_IN).Warn("dropping message with non-float argument", "addr", msg.Address)
			return
		}
		if err := effect(val); err != nil {
			logging.Get(logging.OSC_IN).Error("callback failed", "addr", msg.Address, "err", err)
		}
	})
}

// BindString binds a callback to run whenever a message is received for the given OSC address.
//
// The last argument of the message is rendered as a string.
func (o *OscDevice) BindString(key string, effect Callback[string]) error {
	return o.d.AddMsgHandler(key, func(msg *osc.Message) {
		val, ok := StringArg(msg)
		if !ok {
			logging.Get(logging.OSC_IN).Warn("dropping message with no arguments", "addr", msg.Address)
			return
		}
		if err := effect(val); err != nil {
			logging.Get(logging.OSC_IN).Error("callback failed", "addr", msg.Address, "err", err)
		}
	})
}

// FloatArg converts the last argument of msg to float64.
func FloatArg(msg *osc.Message) (float64, bool) {
	if len(msg.Arguments) == 0 {
		return 0, false
	}
	return ToFloat(msg.Arguments[len(msg.Arguments)-1])
}

// ToFloat converts an OSC argument value to float64 best-effort.
func ToFloat(arg interface{}) (float64, bool) {
	switch val := arg.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		asNum, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return asNum, true
	default:
		return 0, false
	}
}

// StringArg converts the last argument of msg to a string.
func StringArg(msg *osc.Message) (string, bool) {
	if len(msg.Arguments) == 0 {
		return "", false
	}
	return ToString(msg.Arguments[len(msg.Arguments)-1])
}

// ToString renders an OSC argument value as a string.
func ToString(arg interface{}) (string, bool) {
	switch val := arg.(type) {
	case string:
		return val, true
	case float64:
		return fmt.Sprintf("%f", val), true
	case float32:
		return fmt.Sprintf("%f", val), true
	case int:
		return fmt.Sprintf("%d", val), true
	case int32:
		return fmt.Sprintf("%d", val), true
	case int64:
		return fmt.Sprintf("%d", val), true
	case nil:
		return "", true
	default:
		return fmt.Sprintf("%v", val), true
	}
}

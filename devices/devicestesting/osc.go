package devicestesting

import (
	"sync"
	"testing"

	"github.com/hypebeast/go-osc/osc"

	"github.com/kr0mka/totalmix-osc-bridge/devices"
)

// MockOscClient records every message sent through it instead of touching
// the network.
type MockOscClient struct {
	mu           sync.Mutex
	sentMessages []*osc.Message

	// OnSend, when set, runs after each send. Tests use it to simulate the
	// console echoing state changes back to the listener.
	OnSend func(msg *osc.Message)
}

func (m *MockOscClient) Send(packet osc.Packet) error {
	msg, ok := packet.(*osc.Message)
	if !ok {
		return nil
	}
	m.mu.Lock()
	m.sentMessages = append(m.sentMessages, msg)
	m.mu.Unlock()
	if m.OnSend != nil {
		m.OnSend(msg)
	}
	return nil
}

// SentMessages returns a snapshot of everything sent so far.
func (m *MockOscClient) SentMessages() []*osc.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*osc.Message, len(m.sentMessages))
	copy(out, m.sentMessages)
	return out
}

// SentAddresses returns the addresses of all sent messages, in order.
func (m *MockOscClient) SentAddresses() []string {
	msgs := m.SentMessages()
	addrs := make([]string, len(msgs))
	for i, msg := range msgs {
		addrs[i] = msg.Address
	}
	return addrs
}

type MockOscServer struct {
	running bool
}

func (m *MockOscServer) ListenAndServe() error {
	m.running = true
	return nil
}

// TestOscDevice wires an OscDevice to mock transport so tests can push
// inbound messages and inspect outbound ones.
type TestOscDevice struct {
	*devices.OscDevice
	Client     *MockOscClient
	Server     *MockOscServer
	Dispatcher *devices.Dispatcher
	Tracker    *CallbackTracker
}

func NewTestOscDevice(t *testing.T) *TestOscDevice {
	client := &MockOscClient{}
	server := &MockOscServer{}
	dispatcher := devices.NewDispatcher()

	device := devices.NewOscDevice(client, server, dispatcher)

	return &TestOscDevice{
		OscDevice:  device,
		Client:     client,
		Server:     server,
		Dispatcher: dispatcher,
		Tracker:    NewCallbackTracker(t),
	}
}

// SimulateMessage feeds a message through the dispatcher as if it arrived
// from the console.
func (d *TestOscDevice) SimulateMessage(addr string, args ...interface{}) {
	d.Dispatcher.Dispatch(osc.NewMessage(addr, args...))
}

// Bindings pre-wrapped with callback tracking
func (d *TestOscDevice) BindFloat(addr string, callback func(float64) error) {
	d.OscDevice.BindFloat(addr, WrapCallback(d.Tracker, callback))
}

func (d *TestOscDevice) BindString(addr string, callback func(string) error) {
	d.OscDevice.BindString(addr, WrapCallback(d.Tracker, callback))
}

package devices_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	devtest "github.com/kr0mka/totalmix-osc-bridge/devices/devicestesting"
)

func TestOscDeviceBindings(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name          string
		setupBindings func(*devtest.TestOscDevice)
		messages      []struct {
			addr string
			args []interface{}
		}
		expectCalls int
	}{
		{
			name: "float binding handles various numeric types",
			setupBindings: func(d *devtest.TestOscDevice) {
				d.BindFloat("/test/float", func(val float64) error {
					assert.InDelta(0.5, val, 0.001, "incorrect float value")
					return nil
				})
			},
			messages: []struct {
				addr string
				args []interface{}
			}{
				{"/test/float", []interface{}{float64(0.5)}},
				{"/test/float", []interface{}{float32(0.5)}},
				{"/test/float", []interface{}{"0.5"}},
			},
			expectCalls: 3,
		},
		{
			name: "float binding drops non-numeric strings",
			setupBindings: func(d *devtest.TestOscDevice) {
				d.BindFloat("/test/float", func(val float64) error {
					assert.Fail("callback should not run for a non-numeric argument")
					return nil
				})
			},
			messages: []struct {
				addr string
				args []interface{}
			}{
				{"/test/float", []interface{}{"n.a."}},
			},
			expectCalls: 0,
		},
		{
			name: "string binding handles type conversions",
			setupBindings: func(d *devtest.TestOscDevice) {
				var received []string
				d.BindString("/test/string", func(val string) error {
					received = append(received, val)
					return nil
				})
			},
			messages: []struct {
				addr string
				args []interface{}
			}{
				{"/test/string", []interface{}{"Mic1"}},
				{"/test/string", []interface{}{int32(42)}},
				{"/test/string", []interface{}{nil}},
			},
			expectCalls: 3,
		},
		{
			name: "message to wrong address does not trigger callback",
			setupBindings: func(d *devtest.TestOscDevice) {
				d.BindFloat("/test/correct", func(val float64) error {
					assert.Fail("callback should not be called for wrong address")
					return nil
				})
			},
			messages: []struct {
				addr string
				args []interface{}
			}{
				{"/test/wrong", []interface{}{float32(1)}},
			},
			expectCalls: 0,
		},
		{
			name: "last argument wins when several are present",
			setupBindings: func(d *devtest.TestOscDevice) {
				d.BindFloat("/test/multi-args", func(val float64) error {
					assert.InDelta(0.75, val, 0.001)
					return nil
				})
			},
			messages: []struct {
				addr string
				args []interface{}
			}{
				{"/test/multi-args", []interface{}{float32(0.25), float32(0.75)}},
			},
			expectCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := devtest.NewTestOscDevice(t)
			tt.setupBindings(device)

			for _, msg := range tt.messages {
				device.SimulateMessage(msg.addr, msg.args...)
			}

			device.Tracker.AssertCalled(tt.expectCalls, "unexpected callback count")
		})
	}
}

func TestOscDeviceSendsFloat32(t *testing.T) {
	require := require.New(t)

	device := devtest.NewTestOscDevice(t)
	require.NoError(device.SetFloat("/setBankStart", 8))

	msgs := device.Client.SentMessages()
	require.Len(msgs, 1)
	require.Equal("/setBankStart", msgs[0].Address)
	// The console only understands OSC float32 arguments.
	require.Equal(float32(8), msgs[0].Arguments[0])
}

func TestOscDeviceRun(t *testing.T) {
	device := devtest.NewTestOscDevice(t)
	if err := device.Run(); err != nil {
		t.Errorf("Failed to start server: %v", err)
	}
}

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devicesOutput = `* daemon not running; starting now at tcp:5037
* daemon started successfully
List of devices attached
3a4b5c6d               device usb:1-1 product:msm8909 model:Nokia_8110_4G device:msm8909 transport_id:1
emulator-5554          offline transport_id:2
f00dcafe               unauthorized usb:1-2 transport_id:3

`

func TestParseDevices(t *testing.T) {
	devices := ParseDevices(devicesOutput)

	require.Len(t, devices, 3)
	assert.Equal(t, Info{
		Serial:    "3a4b5c6d",
		State:     StateDevice,
		Product:   "msm8909",
		Model:     "Nokia_8110_4G",
		Device:    "msm8909",
		USB:       "1-1",
		Transport: "1",
	}, devices[0])
	assert.Equal(t, StateOffline, devices[1].State)
	assert.Equal(t, StateUnauthorized, devices[2].State)
	assert.Equal(t, "1-2", devices[2].USB)
}

func TestParseDevices_Empty(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{name: "nothing", out: ""},
		{name: "banner only", out: "List of devices attached\n\n"},
		{name: "crlf banner", out: "List of devices attached\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, ParseDevices(tt.out))
		})
	}
}

func TestParseDevices_CRLF(t *testing.T) {
	devices := ParseDevices("List of devices attached\r\nabc device product:p model:m\r\n")

	require.Len(t, devices, 1)
	assert.Equal(t, "m", devices[0].Model)
}

func TestReady(t *testing.T) {
	ready := Ready(ParseDevices(devicesOutput))

	require.Len(t, ready, 1)
	assert.Equal(t, "3a4b5c6d", ready[0].Serial)
	assert.True(t, ready[0].Ready())
}

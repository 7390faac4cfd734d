package device

import "strings"

// Device states reported by `adb devices`.
const (
	StateDevice       = "device"
	StateOffline      = "offline"
	StateUnauthorized = "unauthorized"
)

const devicesHeader = "List of devices attached"

// ParseDevices parses the output of `adb devices -l`. The banner line,
// daemon startup notices ("* daemon started successfully") and blank lines
// are ignored.
func ParseDevices(out string) []Info {
	var devices []Info
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || line == devicesHeader || strings.HasPrefix(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		info := Info{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			key, value, ok := strings.Cut(f, ":")
			if !ok {
				continue
			}
			switch key {
			case "product":
				info.Product = value
			case "model":
				info.Model = value
			case "device":
				info.Device = value
			case "usb":
				info.USB = value
			case "transport_id":
				info.Transport = value
			}
		}
		devices = append(devices, info)
	}
	return devices
}

// Ready filters devices down to the ones adb can talk to.
func Ready(devices []Info) []Info {
	var ready []Info
	for _, d := range devices {
		if d.Ready() {
			ready = append(ready, d)
		}
	}
	return ready
}

// Package device talks to a B2G device through adb: finding it, asking it
// for b2g-info output and restarting adbd as root when needed.
package device

import "context"

// Info identifies the attached device. It is read once per session.
type Info struct {
	Serial    string `json:"serial" yaml:"serial"`
	State     string `json:"state" yaml:"state"`
	Product   string `json:"product,omitempty" yaml:"product,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	Device    string `json:"device,omitempty" yaml:"device,omitempty"`
	USB       string `json:"usb,omitempty" yaml:"usb,omitempty"`
	Transport string `json:"transport_id,omitempty" yaml:"transport_id,omitempty"`
}

// Ready reports whether adb can talk to the device.
func (i Info) Ready() bool {
	return i.State == StateDevice
}

// Output is the captured result of one b2g-info query.
type Output struct {
	Stdout string
	Stderr string
}

// Source produces raw b2g-info text.
type Source interface {
	// Identify finds the device to talk to.
	Identify(ctx context.Context) (Info, error)
	// Query runs b2g-info once. A returned error means the transport
	// failed; Output.Stderr carries anything adb complained about.
	Query(ctx context.Context) (Output, error)
	// Elevate restarts adbd with root privileges and waits for the
	// device to come back.
	Elevate(ctx context.Context) error
}

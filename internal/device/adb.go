package device

import (
	"context"
	"strings"
	"time"

	b2gerrors "github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/exec"
	"github.com/rileyhilliard/b2gmon/internal/logger"
)

// DefaultBinary is the adb executable looked up on PATH.
const DefaultBinary = "adb"

// InfoCommand is the device-side program that reports memory usage.
const InfoCommand = "b2g-info"

// DefaultElevateTimeout bounds how long Elevate waits for the device to
// come back after adbd restarts.
const DefaultElevateTimeout = 30 * time.Second

const rootRefused = "cannot run as root"

// Picker chooses one device when several are ready.
type Picker func(devices []Info) (Info, error)

// ADB is a Source backed by the adb command line tool.
type ADB struct {
	runner         exec.Runner
	bin            string
	serial         string
	picker         Picker
	elevateTimeout time.Duration
	log            logger.Logger
}

// Option configures an ADB source.
type Option func(*ADB)

// WithBinary sets the adb executable.
func WithBinary(bin string) Option {
	return func(a *ADB) {
		if bin != "" {
			a.bin = bin
		}
	}
}

// WithSerial pins the source to one device.
func WithSerial(serial string) Option {
	return func(a *ADB) { a.serial = serial }
}

// WithPicker sets how Identify chooses between several ready devices.
// Without one the first ready device wins.
func WithPicker(p Picker) Option {
	return func(a *ADB) { a.picker = p }
}

// WithElevateTimeout bounds the wait after `adb root`.
func WithElevateTimeout(d time.Duration) Option {
	return func(a *ADB) { a.elevateTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *ADB) { a.log = l }
}

// NewADB creates an adb-backed source that runs commands through runner.
func NewADB(runner exec.Runner, opts ...Option) *ADB {
	a := &ADB{
		runner:         runner,
		bin:            DefaultBinary,
		elevateTimeout: DefaultElevateTimeout,
		log:            logger.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Serial returns the device the source is bound to, if any.
func (a *ADB) Serial() string {
	return a.serial
}

// Binary returns the adb executable the source runs.
func (a *ADB) Binary() string {
	return a.bin
}

// Devices lists every device adb knows about, ready or not.
func (a *ADB) Devices(ctx context.Context) ([]Info, error) {
	stdout, stderr, code, err := a.runner.Run(ctx, a.bin, "devices", "-l")
	if err != nil {
		return nil, b2gerrors.WrapWithCode(err, b2gerrors.ErrADB,
			"Couldn't list devices",
			"Check that adb is installed and the adb server can start.")
	}
	if code != 0 {
		return nil, b2gerrors.New(b2gerrors.ErrADB,
			"adb devices failed: "+strings.TrimSpace(string(stderr)),
			"Try 'adb kill-server' and run again.")
	}
	return ParseDevices(string(stdout)), nil
}

// Identify finds the device to monitor and binds the source to it.
func (a *ADB) Identify(ctx context.Context) (Info, error) {
	devices, err := a.Devices(ctx)
	if err != nil {
		return Info{}, err
	}

	if a.serial != "" {
		for _, d := range devices {
			if d.Serial != a.serial {
				continue
			}
			if !d.Ready() {
				return Info{}, b2gerrors.New(b2gerrors.ErrDevice,
					"Device "+d.Serial+" is "+d.State,
					"Unlock the device and accept the USB debugging prompt.")
			}
			return d, nil
		}
		return Info{}, b2gerrors.New(b2gerrors.ErrDevice,
			"Device "+a.serial+" is not attached",
			"Run 'b2gmon devices' to see what is connected.")
	}

	ready := Ready(devices)
	switch {
	case len(ready) == 0:
		return Info{}, b2gerrors.New(b2gerrors.ErrDevice,
			"No device connected",
			"Plug the device in over USB and enable debugging.")
	case len(ready) > 1 && a.picker != nil:
		chosen, err := a.picker(ready)
		if err != nil {
			return Info{}, err
		}
		a.serial = chosen.Serial
		return chosen, nil
	}

	if len(ready) > 1 {
		a.log.Warn("%d devices attached, using %s", len(ready), ready[0].Serial)
	}
	a.serial = ready[0].Serial
	return ready[0], nil
}

// Query runs b2g-info on the device.
func (a *ADB) Query(ctx context.Context) (Output, error) {
	stdout, stderr, _, err := a.runner.Run(ctx, a.bin, a.args("shell", InfoCommand)...)
	if err != nil {
		return Output{}, err
	}
	return Output{Stdout: string(stdout), Stderr: string(stderr)}, nil
}

// Elevate restarts adbd as root and waits for the device to reconnect.
func (a *ADB) Elevate(ctx context.Context) error {
	a.log.Info("restarting adbd as root on %s", a.serial)

	stdout, stderr, code, err := a.runner.Run(ctx, a.bin, a.args("root")...)
	if err != nil {
		return err
	}
	combined := string(stdout) + string(stderr)
	if code != 0 || strings.Contains(combined, rootRefused) {
		return b2gerrors.New(b2gerrors.ErrADB,
			"adb root refused: "+strings.TrimSpace(combined),
			"Production builds cannot run adbd as root. Use an engineering build.")
	}

	waitCtx := ctx
	if a.elevateTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.elevateTimeout)
		defer cancel()
	}
	_, stderr, code, err = a.runner.Run(waitCtx, a.bin, a.args("wait-for-device")...)
	if err != nil {
		return err
	}
	if code != 0 {
		return b2gerrors.New(b2gerrors.ErrADB,
			"Device did not come back after adb root: "+strings.TrimSpace(string(stderr)),
			"")
	}
	return nil
}

func (a *ADB) args(extra ...string) []string {
	if a.serial == "" {
		return extra
	}
	return append([]string{"-s", a.serial}, extra...)
}

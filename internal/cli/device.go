package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/exec"
	"github.com/rileyhilliard/b2gmon/internal/logger"
	"github.com/rileyhilliard/b2gmon/pkg/sshutil"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newRunner returns the runner adb commands go through: local, or over
// SSH when a host is configured. The closer releases the connection.
var newRunner = func(cfg *config.Config) (exec.Runner, io.Closer, error) {
	if !cfg.Remote() {
		return exec.NewLocalRunner(), closerFunc(func() error { return nil }), nil
	}

	client, err := sshutil.Dial(cfg.SSH.Host, sshutil.DialOptions{
		Timeout:               cfg.SSH.Timeout,
		InsecureIgnoreHostKey: cfg.SSH.InsecureIgnoreHostKey,
	})
	if err != nil {
		return nil, nil, err
	}
	runner := exec.NewSSHRunner(client)
	return runner, runner, nil
}

// stdinIsTerminal reports whether prompts can be shown.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newADB builds the adb source from cfg. With interactive set, several
// attached devices bring up a picker instead of taking the first one.
func newADB(runner exec.Runner, cfg *config.Config, log logger.Logger, interactive bool) *device.ADB {
	opts := []device.Option{
		device.WithBinary(cfg.ADB),
		device.WithLogger(log),
	}
	if cfg.Serial != "" {
		opts = append(opts, device.WithSerial(cfg.Serial))
	}
	if interactive {
		opts = append(opts, device.WithPicker(pickDevice))
	}
	return device.NewADB(runner, opts...)
}

// pickDevice asks which of several attached devices to use.
func pickDevice(devices []device.Info) (device.Info, error) {
	options := make([]huh.Option[string], len(devices))
	for i, d := range devices {
		options[i] = huh.NewOption(deviceLabel(d), d.Serial)
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("%d devices attached. Which one?", len(devices))).
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return device.Info{}, errors.WrapWithCode(err, errors.ErrDevice,
			"No device selected",
			"Pass --serial to choose a device without a prompt.")
	}

	for _, d := range devices {
		if d.Serial == selected {
			return d, nil
		}
	}
	return devices[0], nil
}

// deviceLabel is the picker line for d, e.g. "3a4b5c6d (Nokia 8110)".
func deviceLabel(d device.Info) string {
	switch {
	case d.Model != "":
		return fmt.Sprintf("%s (%s)", d.Serial, d.Model)
	case d.Product != "":
		return fmt.Sprintf("%s (%s)", d.Serial, d.Product)
	}
	return d.Serial
}

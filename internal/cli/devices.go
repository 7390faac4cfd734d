package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/ui"
)

// adbFlags select how adb is reached, for commands other than watch.
type adbFlags struct {
	serial string
	ssh    string
	adb    string
}

func addADBFlags(cmd *cobra.Command, f *adbFlags) {
	cmd.Flags().StringVarP(&f.serial, "serial", "s", "", "device serial when several are attached")
	cmd.Flags().StringVar(&f.ssh, "ssh", "", "run adb on this SSH host")
	cmd.Flags().StringVar(&f.adb, "adb", "", "adb executable (default adb on PATH)")
}

func (f *adbFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("serial") {
		cfg.Serial = f.serial
	}
	if cmd.Flags().Changed("ssh") {
		cfg.SSH.Host = f.ssh
	}
	if cmd.Flags().Changed("adb") {
		cfg.ADB = f.adb
	}
}

var devicesFlags adbFlags

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached devices",
	Long: `List the devices adb can see, with their state and model.

Examples:
  b2gmon devices
  b2gmon devices --ssh lab-box
  b2gmon devices --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		devicesFlags.apply(cmd, cfg)
		return devicesCommand(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func init() {
	addADBFlags(devicesCmd, &devicesFlags)
	devicesCmd.Flags().BoolVar(&machineMode, "json", false, "output as JSON")
	rootCmd.AddCommand(devicesCmd)
}

func devicesCommand(ctx context.Context, cfg *config.Config, w io.Writer) error {
	runner, closer, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	adb := newADB(runner, cfg, newLogger("adb"), false)
	devices, err := adb.Devices(ctx)
	if err != nil {
		return err
	}

	if machineMode {
		if devices == nil {
			devices = []device.Info{}
		}
		return WriteJSONSuccess(w, devices)
	}

	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices attached")
		return nil
	}
	fmt.Fprintln(w, renderDevices(devices))
	return nil
}

// renderDevices formats devices as a table, one row per device.
func renderDevices(devices []device.Info) string {
	titles := []string{"", "SERIAL", "STATE", "PRODUCT", "MODEL", "DEVICE"}
	rows := make([][]string, len(devices))
	for i, d := range devices {
		marker := ui.SymbolFail
		if d.Ready() {
			marker = ui.SymbolDevice
		}
		rows[i] = []string{marker, d.Serial, d.State, dash(d.Product), dash(d.Model), dash(d.Device)}
	}
	return ui.RenderSimpleTable(ui.FitColumns(titles, rows), rows)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/b2gmon/internal/b2ginfo"
	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/device"
	"github.com/rileyhilliard/b2gmon/internal/display"
	"github.com/rileyhilliard/b2gmon/internal/errors"
)

// Snapshot output formats.
const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatText = "text"
)

var (
	snapshotFlags  adbFlags
	snapshotFormat string
	snapshotNames  []string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Poll b2g-info once and print the parsed result",
	Long: `Run b2g-info once and print what the parser made of it. Useful for
checking column names and app names before a long run.

Examples:
  b2gmon snapshot
  b2gmon snapshot -n Messages --format json
  b2gmon snapshot --format text`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		snapshotFlags.apply(cmd, cfg)
		return snapshotCommand(cmd.Context(), cfg, snapshotNames, snapshotFormat, cmd.OutOrStdout())
	},
}

func init() {
	addADBFlags(snapshotCmd, &snapshotFlags)
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", formatYAML, "output format: yaml, json or text")
	snapshotCmd.Flags().StringSliceVarP(&snapshotNames, "name", "n", nil, "only keep these apps (repeatable or comma-separated)")
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotCommand(ctx context.Context, cfg *config.Config, names []string, format string, w io.Writer) error {
	format = strings.ToLower(format)
	switch format {
	case formatYAML, formatJSON, formatText:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown format '%s'", format),
			"Use yaml, json or text.")
	}

	runner, closer, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	adb := newADB(runner, cfg, newLogger("adb"), false)
	info, err := adb.Identify(ctx)
	if err != nil {
		return err
	}

	snap, err := pollOnce(ctx, adb, names)
	if err != nil {
		return err
	}

	return writeSnapshot(w, format, info, snap)
}

// pollOnce queries src and parses the result, elevating once if the
// device asks for root.
func pollOnce(ctx context.Context, src device.Source, names []string) (*b2ginfo.Snapshot, error) {
	for attempt := 0; ; attempt++ {
		out, err := src.Query(ctx)
		if err != nil {
			return nil, err
		}
		if msg := strings.TrimSpace(out.Stderr); msg != "" {
			return nil, errors.New(errors.ErrADB,
				"b2g-info failed: "+msg,
				"Check the device is still attached: b2gmon devices")
		}

		snap, err := b2ginfo.Parse(out.Stdout, names)
		if stderrors.Is(err, b2ginfo.ErrRootRequired) && attempt == 0 {
			if err := src.Elevate(ctx); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrParse,
				"Couldn't parse b2g-info output",
				"Run 'adb shell b2g-info' to see what the device prints.")
		}
		return snap, nil
	}
}

// snapshotDoc is the serialized form of one snapshot.
type snapshotDoc struct {
	Device   device.Info       `json:"device" yaml:"device"`
	Snapshot *b2ginfo.Snapshot `json:"snapshot" yaml:"snapshot"`
}

func writeSnapshot(w io.Writer, format string, info device.Info, snap *b2ginfo.Snapshot) error {
	switch format {
	case formatJSON:
		return WriteJSONSuccess(w, snapshotDoc{Device: info, Snapshot: snap})
	case formatText:
		console := display.NewConsole(w, display.WithoutClear())
		return console.Render(display.View{
			Device:    info,
			Apps:      snap.Apps,
			Memory:    snap.Memory,
			LowMemory: snap.LowMemory,
			Cycle:     1,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snapshotDoc{Device: info, Snapshot: snap}); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

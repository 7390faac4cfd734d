package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/ui"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string   // Where to write; defaults to ./.b2gmon.yaml
	Apps           []string // Apps to track
	SSHHost        string   // Optional adb host
	Overwrite      bool     // Overwrite existing config without asking
	NonInteractive bool     // Never prompt
}

var (
	initForce bool
	initApps  []string
	initSSH   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .b2gmon.yaml configuration",
	Long: `Write a starter .b2gmon.yaml in the current directory.

Examples:
  b2gmon init
  b2gmon init -n Messages -n Homescreen
  b2gmon init --ssh lab-box --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Apps:           initApps,
			SSHHost:        initSSH,
			Overwrite:      initForce,
			NonInteractive: !stdinIsTerminal(),
		}, cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().StringSliceVarP(&initApps, "name", "n", nil, "app to track (repeatable or comma-separated)")
	initCmd.Flags().StringVar(&initSSH, "ssh", "", "run adb on this SSH host")
	rootCmd.AddCommand(initCmd)
}

// Init creates a new .b2gmon.yaml configuration file.
func Init(opts InitOptions, w io.Writer) error {
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if len(opts.Apps) > 0 {
		cfg.Apps = opts.Apps
	}
	cfg.SSH.Host = opts.SSHHost

	if err := config.Write(cfg, configPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  b2gmon devices        - Check the device is visible")
	fmt.Fprintln(w, "  b2gmon track <app>    - Add an app to watch")
	fmt.Fprintln(w, "  b2gmon                - Start polling")
	return nil
}

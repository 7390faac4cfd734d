package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/b2gmon/internal/config"
	"github.com/rileyhilliard/b2gmon/internal/errors"
	"github.com/rileyhilliard/b2gmon/internal/ui"
)

var trackCmd = &cobra.Command{
	Use:   "track <app>",
	Short: "Add an app to the tracked list in the config",
	Long: `Append an app name to the apps list of the config file, keeping the
rest of the file (comments included) as it is. Names are matched against
the NAME column of b2g-info without regard to case.

Examples:
  b2gmon track Messages
  b2gmon track "Built-in Keyboard"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return trackCommand(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)
}

func trackCommand(app string, w io.Writer) error {
	app = strings.TrimSpace(app)
	if app == "" {
		return errors.New(errors.ErrConfig,
			"App name is empty",
			"Pass the name as b2g-info prints it, e.g. b2gmon track Messages")
	}

	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'b2gmon init' first, or point at one with --config")
	}

	changed, err := config.AddApp(path, app)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't update %s", path),
			"Check the file is valid YAML and writable")
	}

	if !changed {
		fmt.Fprintf(w, "%s already tracked in %s\n", app, path)
		return nil
	}
	fmt.Fprintf(w, "%s Tracking %s (%s)\n", ui.SymbolSuccess, app, path)
	return nil
}

// conduit evaluates pipe steering scripts from the command line: it
// reports validation problems, mesh statistics and, on request, how far
// the faceted mesh strays from the smooth reference solid.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "conduit",
		Short: "Procedural pipe meshes from steering scripts",
		Long: `conduit turns steering scripts such as

  (size 4) (up) (right 5) (size 6) (forward)

into a welded triangle mesh of round pipes with elbows at every turn and
cones at every size change.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML or YAML file with pipe parameters")
	cmd.AddCommand(
		newRunCmd(&configPath),
		newValidateCmd(&configPath),
		newConfigCmd(&configPath),
	)
	return cmd
}

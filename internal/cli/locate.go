package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h5interop/h5interop/internal/libpath"
)

// NewLocateCommand creates the locate-lib command, which runs the
// discovery chain and prints the winning candidate.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate-lib",
		Short: "Discover the shared HDF5 library path",
		Long: `Run the library discovery chain and print the first existing
candidate. Set ` + libpath.EnvOverride + ` to bypass discovery entirely.

No version or ABI check is performed on the result; a library that
exists but mismatches the binding surfaces later as read failures.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return locateLib(rootOpts, cmd)
		},
	}
	return cmd
}

func locateLib(opts *RootOptions, cmd *cobra.Command) error {
	c, err := libpath.NewLocator(libpath.DefaultChain()...).Locate()
	if err != nil {
		return WrapExitError(ExitFailure, "HDF5 library discovery failed", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if formatter.JSON() {
		return formatter.Success(map[string]string{"path": c.Path, "source": c.Source})
	}
	if opts.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (via %s)\n", c.Path, c.Source)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.Path)
	return nil
}

// h5peer is the counterpart executable for the interop harness. It
// speaks the same command-line contract as the Rust interop example:
//
//	h5peer --hdf5-lib <path> --mode <write|read> --file <path>
//
// In write mode it produces the peer fixture file; in read mode it
// verifies a file produced by the other side against the local
// catalog. The final stdout line on success is "SUCCESS", which the
// harness checks in addition to the exit code.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/h5interop/h5interop/internal/fixture"
)

type peerOptions struct {
	Lib  string
	Mode string
	File string
}

func newPeerCommand() *cobra.Command {
	opts := &peerOptions{}

	cmd := &cobra.Command{
		Use:   "h5peer",
		Short: "Interop peer: write or verify an HDF5 fixture file",
		Long: `h5peer plays the role of the second implementation in an interop
round trip. "write" creates the peer fixture file; "read" verifies a
file written by the other side. The last line printed on success is
SUCCESS.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPeer(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lib, "hdf5-lib", "", "HDF5 shared library path (informational; the binding is linked at build time)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "operation mode: write or read")
	cmd.Flags().StringVar(&opts.File, "file", "", "HDF5 file to write or verify")
	_ = cmd.MarkFlagRequired("mode")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPeer(opts *peerOptions, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if opts.Lib != "" {
		fmt.Fprintf(out, "Using HDF5 library: %s\n", opts.Lib)
	}

	switch opts.Mode {
	case "write":
		fmt.Fprintf(out, "Writing test file: %s\n", opts.File)
		if err := fixture.Write(opts.File, fixture.Peer()); err != nil {
			return fmt.Errorf("writing %s: %w", opts.File, err)
		}
	case "read":
		fmt.Fprintf(out, "Verifying test file: %s\n", opts.File)
		if err := fixture.Verify(opts.File, fixture.Local(), fixture.DefaultTolerance); err != nil {
			return fmt.Errorf("verifying %s: %w", opts.File, err)
		}
	default:
		return fmt.Errorf("invalid mode %q: must be write or read", opts.Mode)
	}

	fmt.Fprintln(out, "SUCCESS")
	return nil
}

func main() {
	if err := newPeerCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

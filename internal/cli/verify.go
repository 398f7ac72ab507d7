package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h5interop/h5interop/internal/fixture"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Catalogs  string
	Catalog   string
	Tolerance float64
}

// NewVerifyCommand creates the verify command: check an existing file
// against a catalog's literal values.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a fixture file against a catalog",
		Long: `Open an HDF5 file read-only and check every fixture entity against
the named catalog. Integers and strings must match exactly, floats
within the tolerance. Defaults to the peer catalog, the shape a peer
implementation is expected to have written.

Example:
  h5interop verify /tmp/peer-written.h5
  h5interop verify --catalog local --tolerance 1e-9 /tmp/reference.h5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return verifyFixture(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalogs, "catalogs", "", "CUE catalog file overriding the built-in catalogs")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", fixture.CatalogPeer, "catalog to verify against")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", fixture.DefaultTolerance, "absolute float comparison tolerance")

	return cmd
}

func verifyFixture(opts *VerifyOptions, path string, cmd *cobra.Command) error {
	cat, err := namedCatalog(opts.Catalogs, opts.Catalog)
	if err != nil {
		return WrapExitError(ExitUsageError, "invalid catalogs", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := fixture.Verify(path, cat, opts.Tolerance); err != nil {
		var ve *fixture.VerificationError
		if errors.As(err, &ve) {
			_ = formatter.Error(err.Error())
			return WrapExitError(ExitFailure, "verification failed", err)
		}
		return WrapExitError(ExitFailure, "could not verify file", err)
	}

	if formatter.JSON() {
		return formatter.Success(map[string]string{"file": path, "catalog": cat.Name})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s matches the %s catalog\n", path, cat.Name)
	return nil
}

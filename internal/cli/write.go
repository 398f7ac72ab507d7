package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h5interop/h5interop/internal/fixture"
)

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	*RootOptions
	Catalogs string
	Catalog  string
}

// NewWriteCommand creates the write command: produce a fixture file
// with the native binding, outside of any round trip.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "write <file>",
		Short: "Write a fixture file with the native binding",
		Long: `Create an HDF5 file containing every fixture entity from the named
catalog. Useful for inspecting what the harness writes, or for handing
a reference file to another implementation manually.

Example:
  h5interop write /tmp/reference.h5
  h5interop write --catalog peer /tmp/peer-shaped.h5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeFixture(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalogs, "catalogs", "", "CUE catalog file overriding the built-in catalogs")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", fixture.CatalogLocal, "catalog to write")

	return cmd
}

func writeFixture(opts *WriteOptions, path string, cmd *cobra.Command) error {
	cat, err := namedCatalog(opts.Catalogs, opts.Catalog)
	if err != nil {
		return WrapExitError(ExitUsageError, "invalid catalogs", err)
	}

	if err := fixture.Write(path, cat); err != nil {
		return WrapExitError(ExitFailure, "writing fixture", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if formatter.JSON() {
		return formatter.Success(map[string]string{"file": path, "catalog": cat.Name})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s catalog to %s\n", cat.Name, path)
	return nil
}

// namedCatalog loads the catalog set (built-in or from a CUE file)
// and selects one by name.
func namedCatalog(catalogFile, name string) (*fixture.Catalog, error) {
	cats, err := fixture.Defaults()
	if err != nil {
		return nil, err
	}
	if catalogFile != "" {
		if cats, err = fixture.LoadCatalogFile(catalogFile); err != nil {
			return nil, err
		}
	}
	cat, ok := cats[name]
	if !ok {
		return nil, fmt.Errorf("catalog %q not found", name)
	}
	return cat, nil
}

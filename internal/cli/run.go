package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/h5interop/h5interop/internal/cargo"
	"github.com/h5interop/h5interop/internal/fixture"
	"github.com/h5interop/h5interop/internal/interop"
	"github.com/h5interop/h5interop/internal/journal"
	"github.com/h5interop/h5interop/internal/libpath"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Lib       string
	Peer      string
	RustDir   string
	Scenario  string
	Catalogs  string
	Journal   string
	TempDir   string
	KeepFiles bool

	// Codec, Runner and RunIDs override harness collaborators in
	// tests. Nil means production defaults.
	Codec  interop.Codec
	Runner interop.PeerRunner
	RunIDs interop.RunIDGenerator
}

// NewRunCommand creates the run command: the full orchestration of
// library discovery, peer build, and both round trips.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run bidirectional interop round trips",
		Long: `Run the full interoperability orchestration: locate the shared HDF5
library, build (or reuse) the peer executable, execute both round-trip
directions, and print a summary.

The library is discovered automatically; set ` + libpath.EnvOverride + ` or --lib to
override. The peer executable is built with cargo from --rust-dir, or
supplied prebuilt with --peer.

Example:
  h5interop run --rust-dir ./hdf5
  h5interop run --peer ./target/debug/examples/interop_test --journal ./runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterop(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Lib, "lib", "", "path to the shared HDF5 library (skips discovery)")
	cmd.Flags().StringVar(&opts.Peer, "peer", "", "prebuilt peer executable (skips the cargo build)")
	cmd.Flags().StringVar(&opts.RustDir, "rust-dir", "", "Rust subproject root containing Cargo.toml")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "YAML scenario file")
	cmd.Flags().StringVar(&opts.Catalogs, "catalogs", "", "CUE catalog file overriding the built-in catalogs")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite database recording run history")
	cmd.Flags().StringVar(&opts.TempDir, "temp-dir", "", "directory for temporary files")
	cmd.Flags().BoolVar(&opts.KeepFiles, "keep-files", false, "retain temporary files for debugging")

	return cmd
}

func runInterop(opts *RunOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	scenario, err := loadScenario(opts)
	if err != nil {
		return WrapExitError(ExitUsageError, "invalid scenario", err)
	}

	local, peerCat, err := resolveCatalogs(opts, scenario)
	if err != nil {
		return WrapExitError(ExitUsageError, "invalid catalogs", err)
	}

	// Setup phase: library discovery and peer build are fatal on
	// failure, no partial testing is attempted.
	lib := opts.Lib
	if lib == "" {
		lib, err = libpath.Locate()
		if err != nil {
			return WrapExitError(ExitFailure, "HDF5 library discovery failed", err)
		}
	} else if _, statErr := os.Stat(lib); statErr != nil {
		return WrapExitError(ExitFailure, "HDF5 library not found", statErr)
	}
	slog.Info("HDF5 library located", "path", lib)
	fmt.Fprintf(out, "HDF5 library: %s\n", lib)

	peer := opts.Peer
	if peer == "" {
		if opts.RustDir == "" {
			return NewExitError(ExitUsageError, "either --peer or --rust-dir is required")
		}
		fmt.Fprintln(out, "Building peer executable...")
		builder := &cargo.Builder{ManifestDir: opts.RustDir}
		peer, err = builder.Build(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "peer build failed", err)
		}
	} else if _, statErr := os.Stat(peer); statErr != nil {
		return WrapExitError(ExitFailure, "peer executable not found", statErr)
	}
	slog.Info("peer executable ready", "path", peer)
	fmt.Fprintf(out, "Peer executable: %s\n", peer)

	h := &interop.Harness{
		Library:     lib,
		Peer:        peer,
		Local:       local,
		PeerCatalog: peerCat,
		Tolerance:   scenario.Tolerance,
		Codec:       opts.Codec,
		Runner:      opts.Runner,
		RunIDs:      opts.RunIDs,
		Logger:      slog.Default(),
		TempDir:     opts.TempDir,
		KeepFiles:   opts.KeepFiles || scenario.KeepFiles,
	}

	summary := h.Run(ctx, scenario.Directions...)

	formatter := &OutputFormatter{Format: opts.Format, Writer: out, Verbose: opts.Verbose}
	if formatter.JSON() {
		if err := formatter.Success(summary); err != nil {
			return err
		}
	} else {
		interop.WriteReport(out, summary)
	}

	if opts.Journal != "" {
		if err := recordRun(opts.Journal, summary, cmd); err != nil {
			return WrapExitError(ExitFailure, "recording run", err)
		}
	}

	if !summary.AllPassed() {
		return NewExitError(ExitFailure, "some round trips failed")
	}
	return nil
}

func loadScenario(opts *RunOptions) (*interop.Scenario, error) {
	if opts.Scenario == "" {
		return interop.DefaultScenario(), nil
	}
	return interop.LoadScenario(opts.Scenario)
}

// resolveCatalogs picks the local and peer catalogs from the built-in
// set or a --catalogs CUE file, honoring scenario catalog names.
func resolveCatalogs(opts *RunOptions, scenario *interop.Scenario) (*fixture.Catalog, *fixture.Catalog, error) {
	cats, err := fixture.Defaults()
	if err != nil {
		return nil, nil, err
	}
	if opts.Catalogs != "" {
		if cats, err = fixture.LoadCatalogFile(opts.Catalogs); err != nil {
			return nil, nil, err
		}
	}

	localName := scenario.LocalCatalog
	if localName == "" {
		localName = fixture.CatalogLocal
	}
	peerName := scenario.PeerCatalog
	if peerName == "" {
		peerName = fixture.CatalogPeer
	}

	local, ok := cats[localName]
	if !ok {
		return nil, nil, fmt.Errorf("catalog %q not found", localName)
	}
	peer, ok := cats[peerName]
	if !ok {
		return nil, nil, fmt.Errorf("catalog %q not found", peerName)
	}
	return local, peer, nil
}

func recordRun(path string, summary *interop.Summary, cmd *cobra.Command) error {
	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()
	return j.Record(cmd.Context(), summary)
}

// configureLogging installs the default slog handler on stderr.
func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if !verbose {
		logLevel = slog.LevelWarn
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

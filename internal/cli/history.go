package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/h5interop/h5interop/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Limit   int
}

// NewHistoryCommand creates the history command: list runs recorded
// in a journal database.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded interop runs",
		Long: `Read a journal database written by "run --journal" and list the
recorded runs, most recent first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many runs (0 = all)")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitFailure, "opening journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	runs, err := j.Runs(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "reading journal", err)
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[:opts.Limit]
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if formatter.JSON() {
		return formatter.Success(runs)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}
	for _, r := range runs {
		status := "FAIL"
		if r.Passed {
			status = "PASS"
		}
		fmt.Fprintf(out, "%s  %s  %s\n", r.Started.Format(time.RFC3339), status, r.ID)
		if opts.Verbose {
			for _, d := range r.Directions {
				mark := "FAIL"
				if d.Passed {
					mark = "PASS"
				}
				fmt.Fprintf(out, "    %-12s %s", d.Direction+":", mark)
				if d.Detail != "" {
					fmt.Fprintf(out, "  %s", d.Detail)
				}
				fmt.Fprintln(out)
			}
		}
	}
	return nil
}

package interop

import (
	"fmt"
	"io"
	"strings"
)

const rule = "============================================================"

// WriteReport renders the human-readable run report: one PASS/FAIL
// line per direction with captured peer output on failure, then a
// summary table. The report is console output for humans; nothing
// machine-parses it.
func WriteReport(w io.Writer, s *Summary) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "HDF5 interop run %s\n", s.RunID)
	fmt.Fprintf(w, "library: %s\n", s.Library)
	fmt.Fprintf(w, "peer:    %s\n", s.Peer)
	fmt.Fprintln(w, rule)

	for _, r := range s.Results {
		fmt.Fprintf(w, "%s: %s\n", r.Direction, passFail(r.Passed))
		if !r.Passed && r.Detail != "" {
			fmt.Fprintf(w, "  %s\n", r.Detail)
		}
		if !r.Passed && r.Output != "" {
			fmt.Fprintln(w, "  peer output:")
			for _, line := range strings.Split(strings.TrimRight(r.Output, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "SUMMARY")
	for _, r := range s.Results {
		fmt.Fprintf(w, "  %-12s %s\n", r.Direction+":", passFail(r.Passed))
	}
	if !s.Started.IsZero() && !s.Finished.IsZero() {
		fmt.Fprintf(w, "  elapsed:     %s\n", s.Finished.Sub(s.Started))
	}
	if s.AllPassed() {
		fmt.Fprintln(w, "All round trips passed.")
	} else {
		fmt.Fprintln(w, "Some round trips failed.")
	}
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

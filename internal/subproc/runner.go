// Package subproc invokes a peer implementation's test executable
// under the interop wire contract and captures the outcome as data.
//
// A non-zero exit from the tested executable is an expected result,
// not an error: the caller inspects Result.ExitCode and both output
// streams and decides pass/fail itself. Run returns an error only
// when the process could not be spawned at all.
package subproc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Mode selects what the peer executable does with the file.
type Mode string

const (
	// ModeWrite asks the peer to create the file with its own fixture.
	ModeWrite Mode = "write"
	// ModeRead asks the peer to open the file and verify every entity.
	ModeRead Mode = "read"
)

// Result is the completed-process record for one invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Invocation describes one run of a peer executable.
type Invocation struct {
	Executable string
	Library    string // absolute path passed as --hdf5-lib
	Mode       Mode
	File       string
	Dir        string   // working directory; empty = inherit
	Env        []string // extra environment entries; nil = inherit only
}

// Args renders the wire CLI contract argument vector:
//
//	<executable> --hdf5-lib <lib> --mode <write|read> --file <path>
func (inv Invocation) Args() []string {
	return []string{
		"--hdf5-lib", inv.Library,
		"--mode", string(inv.Mode),
		"--file", inv.File,
	}
}

// Run spawns the invocation, blocks until it completes, and captures
// both output streams as text. No timeout is imposed here; a caller
// that needs one passes a deadline context.
func Run(ctx context.Context, inv Invocation) (Result, error) {
	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args()...)
	cmd.Dir = inv.Dir
	if inv.Env != nil {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		// Spawn failure: executable missing, not executable, context
		// cancelled before start. This is the caller's setup problem.
		return Result{ExitCode: -1, Stderr: stderr.String()}, err
	}
	return res, nil
}

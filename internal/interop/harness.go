// Package interop orchestrates bidirectional round trips between the
// local HDF5 binding and a peer implementation's test executable.
//
// Each direction uses its own fresh temporary file and its own
// subprocess invocation; the file is removed on every exit path. The
// two directions are independent: a failure in one never prevents the
// other from running, so the summary always reports both.
package interop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h5interop/h5interop/internal/fixture"
	"github.com/h5interop/h5interop/internal/subproc"
)

// SuccessMarker is the stdout substring the wire contract requires
// from a peer that verified every entity.
const SuccessMarker = "SUCCESS"

// Codec writes and verifies fixture files with the local native
// binding. Tests substitute a fake to run without libhdf5 datasets.
type Codec interface {
	Write(path string, cat *fixture.Catalog) error
	Verify(path string, cat *fixture.Catalog, tol float64) error
}

// HDF5Codec is the production codec backed by the native binding.
type HDF5Codec struct{}

func (HDF5Codec) Write(path string, cat *fixture.Catalog) error {
	return fixture.Write(path, cat)
}

func (HDF5Codec) Verify(path string, cat *fixture.Catalog, tol float64) error {
	return fixture.Verify(path, cat, tol)
}

// PeerRunner invokes the peer executable. Tests substitute a fake.
type PeerRunner func(ctx context.Context, inv subproc.Invocation) (subproc.Result, error)

// Harness runs the round-trip protocol. Zero-value optional fields
// get production defaults in Run.
type Harness struct {
	Library string // absolute path to the shared HDF5 library
	Peer    string // peer executable path

	Local       *fixture.Catalog // written locally, read by the peer
	PeerCatalog *fixture.Catalog // written by the peer, verified locally
	Tolerance   float64          // absolute float tolerance; 0 = fixture.DefaultTolerance

	Codec     Codec          // nil = HDF5Codec
	Runner    PeerRunner     // nil = subproc.Run
	RunIDs    RunIDGenerator // nil = UUIDv7Generator
	Logger    *slog.Logger   // nil = discard
	Now       func() time.Time
	TempDir   string // empty = os.TempDir()
	KeepFiles bool   // retain temp files for debugging
}

func (h *Harness) defaults() {
	if h.Local == nil {
		h.Local = fixture.Local()
	}
	if h.PeerCatalog == nil {
		h.PeerCatalog = fixture.Peer()
	}
	if h.Tolerance == 0 {
		h.Tolerance = fixture.DefaultTolerance
	}
	if h.Codec == nil {
		h.Codec = HDF5Codec{}
	}
	if h.Runner == nil {
		h.Runner = subproc.Run
	}
	if h.RunIDs == nil {
		h.RunIDs = UUIDv7Generator{}
	}
	if h.Logger == nil {
		h.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.TempDir == "" {
		h.TempDir = os.TempDir()
	}
}

// Run executes the requested directions sequentially and returns the
// aggregated summary. Directions defaults to both round trips.
// Failures inside a direction are recorded, never returned: by this
// point setup is done and every outcome is data for the summary.
func (h *Harness) Run(ctx context.Context, directions ...string) *Summary {
	h.defaults()
	if len(directions) == 0 {
		directions = Directions
	}

	s := &Summary{
		RunID:   h.RunIDs.Generate(),
		Library: h.Library,
		Peer:    h.Peer,
		Started: h.Now(),
	}
	for _, d := range directions {
		h.Logger.Info("running direction", "direction", d, "run_id", s.RunID)
		var r Result
		switch d {
		case DirectionLocalToPeer:
			r = h.runLocalToPeer(ctx, s.RunID)
		case DirectionPeerToLocal:
			r = h.runPeerToLocal(ctx, s.RunID)
		default:
			r = Result{Direction: d, Detail: fmt.Sprintf("unknown direction %q", d)}
		}
		h.Logger.Info("direction finished", "direction", d, "passed", r.Passed)
		s.Results = append(s.Results, r)
	}
	s.Finished = h.Now()
	return s
}

// runLocalToPeer writes the local fixture and has the peer read and
// verify it. The peer signals success with exit 0 plus the SUCCESS
// marker on stdout.
func (h *Harness) runLocalToPeer(ctx context.Context, runID string) Result {
	r := Result{Direction: DirectionLocalToPeer}

	path := h.tempPath(runID, DirectionLocalToPeer)
	defer h.cleanup(path)

	if err := h.Codec.Write(path, h.Local); err != nil {
		r.Detail = fmt.Sprintf("writing local fixture: %v", err)
		return r
	}

	res, err := h.Runner(ctx, subproc.Invocation{
		Executable: h.Peer,
		Library:    h.Library,
		Mode:       subproc.ModeRead,
		File:       path,
	})
	r.Output = combinedOutput(res)
	if err != nil {
		r.Detail = fmt.Sprintf("spawning peer: %v", err)
		return r
	}
	if !res.Success() {
		r.Detail = fmt.Sprintf("peer exited %d", res.ExitCode)
		return r
	}
	if !strings.Contains(res.Stdout, SuccessMarker) {
		r.Detail = fmt.Sprintf("peer exited 0 but did not report %s", SuccessMarker)
		return r
	}
	r.Passed = true
	return r
}

// runPeerToLocal has the peer write its fixture, then verifies every
// entity locally against the peer catalog.
func (h *Harness) runPeerToLocal(ctx context.Context, runID string) Result {
	r := Result{Direction: DirectionPeerToLocal}

	path := h.tempPath(runID, DirectionPeerToLocal)
	defer h.cleanup(path)

	res, err := h.Runner(ctx, subproc.Invocation{
		Executable: h.Peer,
		Library:    h.Library,
		Mode:       subproc.ModeWrite,
		File:       path,
	})
	r.Output = combinedOutput(res)
	if err != nil {
		r.Detail = fmt.Sprintf("spawning peer: %v", err)
		return r
	}
	if !res.Success() {
		r.Detail = fmt.Sprintf("peer exited %d", res.ExitCode)
		return r
	}

	if err := h.Codec.Verify(path, h.PeerCatalog, h.Tolerance); err != nil {
		r.Detail = fmt.Sprintf("verifying peer file: %v", err)
		return r
	}
	r.Passed = true
	return r
}

func (h *Harness) tempPath(runID, direction string) string {
	return filepath.Join(h.TempDir, fmt.Sprintf("interop-%s-%s.h5", runID, direction))
}

// cleanup removes a temp file regardless of the direction's outcome.
func (h *Harness) cleanup(path string) {
	if h.KeepFiles {
		h.Logger.Info("keeping temp file", "path", path)
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.Logger.Warn("removing temp file", "path", path, "error", err)
	}
}

func combinedOutput(res subproc.Result) string {
	out := res.Stdout
	if res.Stderr != "" {
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += res.Stderr
	}
	return out
}

package interop

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h5interop/h5interop/internal/fixture"
	"github.com/h5interop/h5interop/internal/subproc"
	"github.com/h5interop/h5interop/internal/testutil"
)

// fakeCodec stands in for the native binding so orchestration tests
// run without creating real HDF5 files.
type fakeCodec struct {
	writeErr  error
	verifyErr error

	wrote    []string
	verified []string
}

func (c *fakeCodec) Write(path string, cat *fixture.Catalog) error {
	c.wrote = append(c.wrote, path)
	if c.writeErr != nil {
		return c.writeErr
	}
	return os.WriteFile(path, []byte("fake hdf5: "+cat.Name), 0o644)
}

func (c *fakeCodec) Verify(path string, cat *fixture.Catalog, tol float64) error {
	c.verified = append(c.verified, path)
	return c.verifyErr
}

// fakeRunner simulates the peer executable. In write mode it creates
// the file like a real peer would.
type fakeRunner struct {
	readResult  subproc.Result
	writeResult subproc.Result
	spawnErr    error

	invocations []subproc.Invocation
}

func (r *fakeRunner) run(_ context.Context, inv subproc.Invocation) (subproc.Result, error) {
	r.invocations = append(r.invocations, inv)
	if r.spawnErr != nil {
		return subproc.Result{ExitCode: -1}, r.spawnErr
	}
	if inv.Mode == subproc.ModeWrite {
		if err := os.WriteFile(inv.File, []byte("fake peer file"), 0o644); err != nil {
			return subproc.Result{ExitCode: -1}, err
		}
		return r.writeResult, nil
	}
	return r.readResult, nil
}

func newTestHarness(t *testing.T, codec Codec, runner *fakeRunner) *Harness {
	t.Helper()
	return &Harness{
		Library: "/lib/libhdf5.so",
		Peer:    "/opt/peer/interop_test",
		Codec:   codec,
		Runner:  runner.run,
		RunIDs:  testutil.NewFixedRunID("run-1"),
		Now:     testutil.NewFixedClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), time.Second).Now,
		TempDir: t.TempDir(),
	}
}

func passingRunner() *fakeRunner {
	return &fakeRunner{
		readResult:  subproc.Result{ExitCode: 0, Stdout: "reading...\nSUCCESS\n"},
		writeResult: subproc.Result{ExitCode: 0, Stdout: "written\n"},
	}
}

func TestRunBothDirectionsPass(t *testing.T) {
	codec := &fakeCodec{}
	runner := passingRunner()
	h := newTestHarness(t, codec, runner)

	s := h.Run(context.Background())
	require.Len(t, s.Results, 2)
	assert.True(t, s.AllPassed())
	assert.Equal(t, DirectionLocalToPeer, s.Results[0].Direction)
	assert.Equal(t, DirectionPeerToLocal, s.Results[1].Direction)
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, time.Second, s.Finished.Sub(s.Started))
}

func TestRunInvocationContract(t *testing.T) {
	codec := &fakeCodec{}
	runner := passingRunner()
	h := newTestHarness(t, codec, runner)

	h.Run(context.Background())
	require.Len(t, runner.invocations, 2)

	read := runner.invocations[0]
	assert.Equal(t, "/opt/peer/interop_test", read.Executable)
	assert.Equal(t, "/lib/libhdf5.so", read.Library)
	assert.Equal(t, subproc.ModeRead, read.Mode)
	assert.True(t, strings.HasPrefix(read.File, h.TempDir), "temp file must live under TempDir")
	require.Len(t, codec.wrote, 1)
	assert.Equal(t, codec.wrote[0], read.File, "peer must read the file the local side wrote")

	write := runner.invocations[1]
	assert.Equal(t, subproc.ModeWrite, write.Mode)
	require.Len(t, codec.verified, 1)
	assert.Equal(t, write.File, codec.verified[0], "local side must verify the file the peer wrote")
	assert.NotEqual(t, read.File, write.File, "each direction uses its own fresh temp file")
}

func TestRunPeerMissingSuccessMarker(t *testing.T) {
	runner := passingRunner()
	runner.readResult = subproc.Result{ExitCode: 0, Stdout: "read everything\n"}
	h := newTestHarness(t, &fakeCodec{}, runner)

	s := h.Run(context.Background())
	assert.False(t, s.Results[0].Passed)
	assert.Contains(t, s.Results[0].Detail, SuccessMarker)
	assert.True(t, s.Results[1].Passed, "a failed direction must not abort the other")
}

func TestRunPeerNonZeroExit(t *testing.T) {
	runner := passingRunner()
	runner.readResult = subproc.Result{ExitCode: 1, Stderr: "ERROR: attribute mismatch\n"}
	h := newTestHarness(t, &fakeCodec{}, runner)

	s := h.Run(context.Background())
	r := s.Results[0]
	assert.False(t, r.Passed)
	assert.Contains(t, r.Detail, "exited 1")
	assert.Contains(t, r.Output, "attribute mismatch", "peer diagnostics are kept for the report")
	assert.False(t, s.AllPassed())
}

func TestRunVerificationFailureNamesEntity(t *testing.T) {
	codec := &fakeCodec{
		verifyErr: &fixture.VerificationError{Entity: fixture.IntegersName, Expected: int64(10), Actual: int64(11)},
	}
	h := newTestHarness(t, codec, passingRunner())

	s := h.Run(context.Background())
	r := s.Results[1]
	assert.False(t, r.Passed)
	assert.Contains(t, r.Detail, fixture.IntegersName)
	assert.Contains(t, r.Detail, "10")
	assert.Contains(t, r.Detail, "11")
}

func TestRunSpawnFailureIsRecorded(t *testing.T) {
	runner := &fakeRunner{spawnErr: errors.New("no such executable")}
	h := newTestHarness(t, &fakeCodec{}, runner)

	s := h.Run(context.Background())
	require.Len(t, s.Results, 2)
	for _, r := range s.Results {
		assert.False(t, r.Passed)
		assert.Contains(t, r.Detail, "no such executable")
	}
}

func TestRunCleansTempFiles(t *testing.T) {
	cases := map[string]*fakeRunner{
		"pass": passingRunner(),
		"fail": {readResult: subproc.Result{ExitCode: 1}, writeResult: subproc.Result{ExitCode: 1}},
	}
	for name, runner := range cases {
		t.Run(name, func(t *testing.T) {
			codec := &fakeCodec{}
			h := newTestHarness(t, codec, runner)
			h.Run(context.Background())

			for _, path := range append(codec.wrote, gatherFiles(runner)...) {
				_, err := os.Stat(path)
				assert.True(t, os.IsNotExist(err), "temp file %s must be removed", path)
			}
		})
	}
}

func gatherFiles(r *fakeRunner) []string {
	var paths []string
	for _, inv := range r.invocations {
		paths = append(paths, inv.File)
	}
	return paths
}

func TestRunKeepFiles(t *testing.T) {
	codec := &fakeCodec{}
	h := newTestHarness(t, codec, passingRunner())
	h.KeepFiles = true

	h.Run(context.Background())
	require.NotEmpty(t, codec.wrote)
	_, err := os.Stat(codec.wrote[0])
	assert.NoError(t, err, "KeepFiles retains temp files")
}

func TestRunIdempotent(t *testing.T) {
	runner := passingRunner()
	runner.readResult = subproc.Result{ExitCode: 1}

	first := newTestHarness(t, &fakeCodec{}, runner).Run(context.Background())
	second := newTestHarness(t, &fakeCodec{}, runner).Run(context.Background())

	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Passed, second.Results[i].Passed,
			"repeated orchestration must produce identical outcomes")
	}
}

func TestRunSingleDirection(t *testing.T) {
	codec := &fakeCodec{}
	h := newTestHarness(t, codec, passingRunner())

	s := h.Run(context.Background(), DirectionPeerToLocal)
	require.Len(t, s.Results, 1)
	assert.Equal(t, DirectionPeerToLocal, s.Results[0].Direction)
	assert.Empty(t, codec.wrote, "local write only happens in the other direction")
}

func TestRunUnknownDirection(t *testing.T) {
	h := newTestHarness(t, &fakeCodec{}, passingRunner())
	s := h.Run(context.Background(), "sideways")
	require.Len(t, s.Results, 1)
	assert.False(t, s.Results[0].Passed)
	assert.Contains(t, s.Results[0].Detail, "sideways")
}

func TestSummaryAllPassedEmpty(t *testing.T) {
	s := &Summary{}
	assert.False(t, s.AllPassed(), "an empty summary is not a pass")
}

func TestUUIDv7GeneratorUnique(t *testing.T) {
	g := UUIDv7Generator{}
	assert.NotEqual(t, g.Generate(), g.Generate())
}

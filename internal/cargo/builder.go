// Package cargo builds the Rust peer's interop test executable so the
// harness can invoke it as a subprocess.
package cargo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultExample is the cargo example target implementing the wire
// CLI contract on the Rust side.
const DefaultExample = "interop_test"

// BuildError reports a toolchain failure with the captured output.
type BuildError struct {
	Target string
	Output string // combined stdout+stderr from the build tool
	Err    error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("cargo build failed for %s", e.Target)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// NotFoundError reports that the build succeeded but the expected
// artifact is absent.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("built executable not found at %s", e.Path)
}

// Builder compiles one cargo example in a Rust subproject.
type Builder struct {
	// ManifestDir is the Rust subproject root (directory holding
	// Cargo.toml). The build runs with this as working directory.
	ManifestDir string

	// Cargo is the build tool to invoke. Empty means "cargo" from PATH.
	Cargo string

	// Example is the example target name. Empty means DefaultExample.
	Example string

	// TargetDir overrides the artifact directory. Empty derives the
	// cargo workspace convention: <ManifestDir>/../target.
	TargetDir string
}

func (b *Builder) cargo() string {
	if b.Cargo != "" {
		return b.Cargo
	}
	return "cargo"
}

func (b *Builder) example() string {
	if b.Example != "" {
		return b.Example
	}
	return DefaultExample
}

// ArtifactPath is the deterministic debug-profile output location for
// the example, with the platform executable extension appended where
// the platform family requires one.
func (b *Builder) ArtifactPath() string {
	dir := b.TargetDir
	if dir == "" {
		dir = filepath.Join(b.ManifestDir, "..", "target")
	}
	name := b.example()
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, "debug", "examples", name)
}

// Build compiles the example and returns the executable path. A
// toolchain failure is a BuildError carrying the captured output; a
// clean build with a missing artifact is a NotFoundError.
func (b *Builder) Build(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, b.cargo(), "build", "--example", b.example())
	cmd.Dir = b.ManifestDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", &BuildError{Target: b.example(), Output: string(out), Err: err}
	}

	artifact := b.ArtifactPath()
	if _, err := os.Stat(artifact); err != nil {
		return "", &NotFoundError{Path: artifact}
	}
	return artifact, nil
}

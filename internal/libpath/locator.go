// Package libpath discovers the absolute path of the HDF5 shared
// library on the current host.
//
// Discovery is an explicit chain of candidate providers, tried in
// priority order. Each provider yields zero or more candidate paths;
// the first candidate that exists on disk wins. The chain makes the
// precedence order testable instead of burying it in ad-hoc probing:
//
//  1. HDF5_LIB environment override (trusted, existence-checked only)
//  2. pkg-config installation prefix (lib/ and lib64/)
//  3. libraries already mapped into this process (/proc/self/maps)
//  4. platform well-known install locations (Homebrew, MacPorts,
//     multiarch, conda prefixes)
//  5. dynamic dependencies of the running executable (ldd / otool -L)
//
// No candidate is validated for ABI or version compatibility with
// either implementation's binding; a mismatched library surfaces
// later as a read failure.
package libpath

import (
	"fmt"
	"os"
	"strings"
)

// EnvOverride is the environment variable consulted before any
// discovery heuristic runs.
const EnvOverride = "HDF5_LIB"

// Candidate is one possible library location produced by a Provider.
type Candidate struct {
	Path   string
	Source string // provider that produced it, for diagnostics
}

// Provider yields candidate library paths. Providers must not fail:
// a provider that cannot produce candidates returns an empty slice.
type Provider func() []Candidate

// NotFoundError reports that no candidate path exists on disk.
type NotFoundError struct {
	Tried []Candidate
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("HDF5 library not found: no candidates (set %s to override)", EnvOverride)
	}
	paths := make([]string, len(e.Tried))
	for i, c := range e.Tried {
		paths[i] = c.Path
	}
	return fmt.Sprintf("HDF5 library not found: tried %s (set %s to override)",
		strings.Join(paths, ", "), EnvOverride)
}

// Locator runs a provider chain in order.
type Locator struct {
	providers []Provider
}

// NewLocator creates a locator with an explicit provider chain.
// Used directly in tests; production callers use Locate.
func NewLocator(providers ...Provider) *Locator {
	return &Locator{providers: providers}
}

// Locate returns the first candidate path that exists on disk.
// The winning Candidate carries the provider name that found it.
func (l *Locator) Locate() (Candidate, error) {
	var tried []Candidate
	for _, p := range l.providers {
		for _, c := range p() {
			if c.Path == "" {
				continue
			}
			if _, err := os.Stat(c.Path); err == nil {
				return c, nil
			}
			tried = append(tried, c)
		}
	}
	return Candidate{}, &NotFoundError{Tried: tried}
}

// DefaultChain is the production provider order.
func DefaultChain() []Provider {
	return []Provider{
		EnvProvider(os.LookupEnv),
		PkgConfigProvider(),
		ProcessMapsProvider(),
		WellKnownProvider(os.LookupEnv),
		ExecutableDepsProvider(),
	}
}

// Locate runs the default chain and returns the discovered path.
func Locate() (string, error) {
	c, err := NewLocator(DefaultChain()...).Locate()
	if err != nil {
		return "", err
	}
	return c.Path, nil
}

package libpath

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// libNames returns the platform-specific shared library file names,
// most specific first.
func libNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libhdf5.dylib"}
	case "windows":
		return []string{"hdf5.dll", "libhdf5.dll"}
	default:
		return []string{"libhdf5.so"}
	}
}

// EnvProvider yields the HDF5_LIB override, if set. The override is
// always trusted beyond the existence check the locator applies.
func EnvProvider(lookupEnv func(string) (string, bool)) Provider {
	return func() []Candidate {
		if v, ok := lookupEnv(EnvOverride); ok && v != "" {
			return []Candidate{{Path: v, Source: "env:" + EnvOverride}}
		}
		return nil
	}
}

// PkgConfigProvider asks pkg-config for the hdf5 installation prefix
// and probes its lib and lib64 directories. This is the Go analog of
// introspecting the binding's configured installation directory: the
// cgo binding is compiled against the same pkg-config entry.
func PkgConfigProvider() Provider {
	return func() []Candidate {
		out, err := exec.Command("pkg-config", "--variable=prefix", "hdf5").Output()
		if err != nil {
			return nil
		}
		prefix := strings.TrimSpace(string(out))
		if prefix == "" {
			return nil
		}
		var cands []Candidate
		for _, libDir := range []string{"lib", "lib64"} {
			for _, name := range libNames() {
				cands = append(cands, Candidate{
					Path:   filepath.Join(prefix, libDir, name),
					Source: "pkg-config",
				})
			}
		}
		return cands
	}
}

// ProcessMapsProvider scans /proc/self/maps for a libhdf5 mapping.
// The cgo binding links the library at startup, so on Linux the
// loaded copy is already mapped into this process under its resolved
// absolute path. Yields nothing on platforms without procfs.
func ProcessMapsProvider() Provider {
	return func() []Candidate {
		f, err := os.Open("/proc/self/maps")
		if err != nil {
			return nil
		}
		defer f.Close()
		return scanMaps(f)
	}
}

func scanMaps(r interface{ Read([]byte) (int, error) }) []Candidate {
	var cands []Candidate
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 {
			continue
		}
		path := fields[len(fields)-1]
		if !strings.HasPrefix(path, "/") || seen[path] {
			continue
		}
		if strings.Contains(strings.ToLower(filepath.Base(path)), "libhdf5") {
			seen[path] = true
			cands = append(cands, Candidate{Path: path, Source: "proc-maps"})
		}
	}
	return cands
}

// WellKnownProvider yields package-manager default install locations
// for the current platform. Conda-style environment prefixes take
// priority when active. Platforms without package-manager conventions
// yield nothing.
func WellKnownProvider(lookupEnv func(string) (string, bool)) Provider {
	return func() []Candidate {
		var cands []Candidate
		add := func(path string) {
			cands = append(cands, Candidate{Path: path, Source: "well-known"})
		}

		if prefix, ok := lookupEnv("CONDA_PREFIX"); ok && prefix != "" {
			switch runtime.GOOS {
			case "windows":
				add(filepath.Join(prefix, "Library", "bin", "hdf5.dll"))
			default:
				for _, name := range libNames() {
					add(filepath.Join(prefix, "lib", name))
				}
			}
		}

		switch runtime.GOOS {
		case "darwin":
			add("/opt/homebrew/lib/libhdf5.dylib") // Apple Silicon Homebrew
			add("/usr/local/lib/libhdf5.dylib")    // Intel Homebrew
			add("/opt/local/lib/libhdf5.dylib")    // MacPorts
		case "linux":
			add("/usr/lib/x86_64-linux-gnu/libhdf5.so")
			add("/usr/lib/x86_64-linux-gnu/hdf5/serial/libhdf5.so")
			add("/usr/lib/libhdf5.so")
			add("/usr/lib64/libhdf5.so")
		}
		return cands
	}
}

// ExecutableDepsProvider is the last resort: walk the dynamic
// dependency list of the running executable with the platform's
// dependency tool and pick out the resolved libhdf5 entry. The
// harness binary links libhdf5 through the binding, so the linker has
// already resolved the path we want.
func ExecutableDepsProvider() Provider {
	return func() []Candidate {
		exe, err := os.Executable()
		if err != nil {
			return nil
		}
		return depsOf(exe)
	}
}

func depsOf(binary string) []Candidate {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.Command("otool", "-L", binary).Output()
		if err != nil {
			return nil
		}
		return parseOtool(out)
	case "linux":
		out, err := exec.Command("ldd", binary).Output()
		if err != nil {
			return nil
		}
		return parseLdd(out)
	default:
		return nil
	}
}

// parseLdd extracts libhdf5 paths from ldd output lines of the form
// "libhdf5.so.310 => /usr/lib/x86_64-linux-gnu/libhdf5.so.310 (0x...)".
func parseLdd(out []byte) []Candidate {
	var cands []Candidate
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(strings.ToLower(line), "libhdf5") {
			continue
		}
		parts := strings.SplitN(line, "=>", 2)
		if len(parts) != 2 {
			continue
		}
		fields := strings.Fields(parts[1])
		if len(fields) == 0 {
			continue
		}
		cands = append(cands, Candidate{Path: fields[0], Source: "ldd"})
	}
	return cands
}

// parseOtool extracts libhdf5 paths from otool -L output, where each
// dependency line starts with the install name followed by version info.
func parseOtool(out []byte) []Candidate {
	var cands []Candidate
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.Contains(strings.ToLower(line), "libhdf5") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
			continue
		}
		cands = append(cands, Candidate{Path: fields[0], Source: "otool"})
	}
	return cands
}

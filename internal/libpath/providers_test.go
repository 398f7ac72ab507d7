package libpath

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvProviderUnset(t *testing.T) {
	p := EnvProvider(func(string) (string, bool) { return "", false })
	assert.Empty(t, p())
}

func TestEnvProviderSetButEmpty(t *testing.T) {
	p := EnvProvider(func(string) (string, bool) { return "", true })
	assert.Empty(t, p())
}

func TestWellKnownProviderCondaFirst(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("conda layout differs on windows")
	}
	env := func(key string) (string, bool) {
		if key == "CONDA_PREFIX" {
			return "/opt/conda/envs/sci", true
		}
		return "", false
	}
	cands := WellKnownProvider(env)()
	require.NotEmpty(t, cands)
	assert.True(t, strings.HasPrefix(cands[0].Path, "/opt/conda/envs/sci/lib/"),
		"conda prefix must be probed before system locations, got %s", cands[0].Path)
	for _, c := range cands {
		assert.Equal(t, "well-known", c.Source)
	}
}

func TestWellKnownProviderNoConda(t *testing.T) {
	env := func(string) (string, bool) { return "", false }
	cands := WellKnownProvider(env)()
	switch runtime.GOOS {
	case "linux", "darwin":
		require.NotEmpty(t, cands)
		for _, c := range cands {
			assert.NotContains(t, c.Path, "conda")
		}
	default:
		assert.Empty(t, cands, "no well-known locations on %s", runtime.GOOS)
	}
}

func TestScanMaps(t *testing.T) {
	maps := strings.NewReader(strings.Join([]string{
		"7f33a0000000-7f33a0200000 r-xp 00000000 08:01 123 /usr/lib/x86_64-linux-gnu/libc.so.6",
		"7f33a1000000-7f33a1400000 r-xp 00000000 08:01 456 /usr/lib/x86_64-linux-gnu/libhdf5.so.310.5.1",
		"7f33a1400000-7f33a1500000 r--p 00400000 08:01 456 /usr/lib/x86_64-linux-gnu/libhdf5.so.310.5.1",
		"7f33a2000000-7f33a2100000 rw-p 00000000 00:00 0 [heap]",
		"7f33a3000000-7f33a3100000 r-xp 00000000 08:01 789 /usr/lib/x86_64-linux-gnu/libhdf5_hl.so.310",
	}, "\n"))

	cands := scanMaps(maps)
	require.Len(t, cands, 2, "each mapped library is reported once despite multiple segments")
	assert.Equal(t, "/usr/lib/x86_64-linux-gnu/libhdf5.so.310.5.1", cands[0].Path)
	assert.Equal(t, "proc-maps", cands[0].Source)
	assert.Equal(t, "/usr/lib/x86_64-linux-gnu/libhdf5_hl.so.310", cands[1].Path)
}

func TestParseLdd(t *testing.T) {
	out := []byte(strings.Join([]string{
		"\tlinux-vdso.so.1 (0x00007ffd4e9f8000)",
		"\tlibhdf5.so.310 => /usr/lib/x86_64-linux-gnu/libhdf5.so.310 (0x00007f33a1000000)",
		"\tlibc.so.6 => /usr/lib/x86_64-linux-gnu/libc.so.6 (0x00007f33a0000000)",
		"\tlibhdf5_missing.so => not found",
	}, "\n"))

	cands := parseLdd(out)
	require.Len(t, cands, 2)
	assert.Equal(t, "/usr/lib/x86_64-linux-gnu/libhdf5.so.310", cands[0].Path)
	assert.Equal(t, "ldd", cands[0].Source)
	// "not found" entries yield the literal "not" token; the locator's
	// existence check discards it, so parsing stays permissive here.
	assert.Equal(t, "not", cands[1].Path)
}

func TestParseOtool(t *testing.T) {
	out := []byte(strings.Join([]string{
		"/path/to/binary:",
		"\t/opt/homebrew/opt/hdf5/lib/libhdf5.310.dylib (compatibility version 316.0.0, current version 316.1.0)",
		"\t/usr/lib/libSystem.B.dylib (compatibility version 1.0.0, current version 1345.100.2)",
		"\t@rpath/libhdf5_hl.dylib (compatibility version 316.0.0)",
	}, "\n"))

	cands := parseOtool(out)
	require.Len(t, cands, 1, "@rpath entries are not absolute and are skipped")
	assert.Equal(t, "/opt/homebrew/opt/hdf5/lib/libhdf5.310.dylib", cands[0].Path)
	assert.Equal(t, "otool", cands[0].Source)
}

func TestLibNames(t *testing.T) {
	names := libNames()
	require.NotEmpty(t, names)
	for _, n := range names {
		assert.Contains(t, n, "hdf5")
	}
}

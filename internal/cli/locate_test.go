package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h5interop/h5interop/internal/libpath"
)

func TestLocateLibWithOverride(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libhdf5.so")
	require.NoError(t, os.WriteFile(lib, []byte("x"), 0o644))
	t.Setenv(libpath.EnvOverride, lib)

	buf := &bytes.Buffer{}
	cmd := NewLocateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, lib+"\n", buf.String())
}

func TestLocateLibVerboseShowsSource(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libhdf5.so")
	require.NoError(t, os.WriteFile(lib, []byte("x"), 0o644))
	t.Setenv(libpath.EnvOverride, lib)

	buf := &bytes.Buffer{}
	cmd := NewLocateCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "env:"+libpath.EnvOverride)
}

func TestLocateLibJSON(t *testing.T) {
	lib := filepath.Join(t.TempDir(), "libhdf5.so")
	require.NoError(t, os.WriteFile(lib, []byte("x"), 0o644))
	t.Setenv(libpath.EnvOverride, lib)

	buf := &bytes.Buffer{}
	cmd := NewLocateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, lib, data["path"])
}

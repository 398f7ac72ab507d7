package interop

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: peer-write-only
description: only the peer-to-go direction, loose tolerance
directions:
  - peer-to-go
tolerance: 1.0e-3
peer_catalog: peer
keep_files: true
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "peer-write-only", s.Name)
	assert.Equal(t, []string{DirectionPeerToLocal}, s.Directions)
	assert.InDelta(t, 1e-3, s.Tolerance, 1e-12)
	assert.Equal(t, "peer", s.PeerCatalog)
	assert.True(t, s.KeepFiles)
}

func TestLoadScenarioUnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
directons: [go-to-peer]
`)
	_, err := LoadScenario(path)
	require.Error(t, err, "unknown fields must be rejected")
}

func TestLoadScenarioUnknownDirection(t *testing.T) {
	path := writeScenario(t, `
name: bad
directions: [go-to-nowhere]
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go-to-nowhere")
}

func TestLoadScenarioMissingName(t *testing.T) {
	path := writeScenario(t, `directions: [go-to-peer]`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestLoadScenarioNegativeTolerance(t *testing.T) {
	path := writeScenario(t, `
name: neg
tolerance: -1.0
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestDefaultScenario(t *testing.T) {
	s := DefaultScenario()
	require.NoError(t, s.Validate())
	assert.Empty(t, s.Directions, "empty directions means both round trips")
}

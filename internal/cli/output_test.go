package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErrorMessageAndUnwrap(t *testing.T) {
	base := errors.New("root cause")
	err := WrapExitError(ExitFailure, "setup failed", base)

	assert.Equal(t, "setup failed: root cause", err.Error())
	assert.ErrorIs(t, err, base)

	plain := NewExitError(ExitUsageError, "bad flag")
	assert.Equal(t, "bad flag", plain.Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitUsageError, GetExitCode(NewExitError(ExitUsageError, "x")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))

	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitUsageError, "inner"))
	assert.Equal(t, ExitUsageError, GetExitCode(wrapped))
}

func TestOutputFormatterJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]string{"path": "/lib/libhdf5.so"}))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	buf.Reset()
	require.NoError(t, f.Error("it broke"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "it broke", resp.Error)
}

func TestOutputFormatterText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("all good"))
	assert.Equal(t, "all good\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Error("it broke"))
	assert.Equal(t, "Error: it broke\n", buf.String())
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const part = `(square with a rounded corner)
G21
G0 X0 Y0 Z5
G1 Z0 F200
G1 X10
G2 X20 Y0 I5 J0
G1 Y10
G0 Z5
`

func writePart(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "part.nc")
	require.NoError(t, os.WriteFile(path, []byte(part), 0o644))
	return path
}

func TestInfo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("info", []string{writePart(t)}, &out))

	s := out.String()
	assert.Contains(t, s, "Segments:   6\n")
	assert.Contains(t, s, "Units:      mm\n")
	assert.Contains(t, s, "Primitives: batched\n")
	assert.Contains(t, s, "Bounds:     (0.00, 0.00, 0.00) .. (20.00, 10.00, 5.00)\n")
	assert.Regexp(t, `RAPID\s+G0\s+2`, s)
	assert.Regexp(t, `ARC_CW\s+G2\s+1`, s)
}

func TestSegmentsForLine(t *testing.T) {
	path := writePart(t)

	var out bytes.Buffer
	require.NoError(t, run("segments", []string{"-line", "6", path}, &out))
	assert.Equal(t, "     3  line 6      G2   (10.00, 0.00, 0.00) -> (20.00, 0.00, 0.00)\n", out.String())

	out.Reset()
	require.NoError(t, run("segments", []string{"-line", "1", path}, &out))
	assert.Equal(t, "No segments\n", out.String())

	out.Reset()
	require.NoError(t, run("segments", []string{"-n", "2", path}, &out))
	assert.Contains(t, out.String(), "... (4 more)\n")
}

func TestPoint(t *testing.T) {
	path := writePart(t)

	var out bytes.Buffer
	require.NoError(t, run("point", []string{path, "3"}, &out))
	assert.Equal(t, "ARC_CW (G2)\nX 20.00  Y 0.00  Z 0.00\nline 6\nI 5.00  J 0.00\nF 200.00\n", out.String())

	out.Reset()
	require.NoError(t, run("point", []string{path, "0", "start"}, &out))
	assert.Contains(t, out.String(), "RAPID (G0)\nX 0.00  Y 0.00  Z 0.00\nline 3")

	assert.Error(t, run("point", []string{path, "99"}, &out))
	assert.ErrorIs(t, run("point", []string{path, "1", "middle"}, &out), errUsage)
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, run("explode", nil, &out), errUsage)
	assert.Contains(t, out.String(), "Usage:")
}

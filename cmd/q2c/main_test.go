package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConvertToNative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.qmd")
	require.NoError(t, os.WriteFile(path, []byte("hello *world*\n"), 0o644))

	code := run([]string{"convert", path, "--to", "native"})
	assert.Equal(t, 0, code)
}

func TestRunConvertMissingFileIsInternalFailure(t *testing.T) {
	code := run([]string{"convert", "/no/such/file.qmd"})
	assert.Equal(t, 2, code)
}

func TestRunConvertUnresolvedReferenceExitsOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.qmd")
	require.NoError(t, os.WriteFile(path, []byte("see it[^missing]\n"), 0o644))

	code := run([]string{"convert", path, "--to", "json"})
	assert.Equal(t, 1, code)
}

func TestWriteDiagnosticsJSONShape(t *testing.T) {
	var buf bytes.Buffer
	err := writeDiagnosticsJSON(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", buf.String())
}

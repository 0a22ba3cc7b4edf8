package checkpoint

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzipFixture(t *testing.T, path string, lines ...string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	for _, line := range lines {
		_, err := zw.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestLoadCreatesCheckpointOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	sourceFile := filepath.Join(dir, "source.gz")
	writeGzipFixture(t, sourceFile, "line one", "line two")

	checkpointFile := filepath.Join(dir, "checkpoint.json")

	cp, err := Load(checkpointFile, sourceFile, "gzip")
	require.NoError(t, err)
	require.NotNil(t, cp)

	assert.Equal(t, sourceFile, cp.SourceFile)
	assert.Equal(t, int64(0), cp.IndexOffset)
	assert.FileExists(t, checkpointFile)
	assert.FileExists(t, cp.IndexFile)
	assert.NotEmpty(t, cp.Index)
}

func TestLoadCreatesEmptyIndexForPlainSource(t *testing.T) {
	dir := t.TempDir()
	sourceFile := filepath.Join(dir, "source.txt")
	require.NoError(t, os.WriteFile(sourceFile, []byte("line one\nline two\n"), 0644))

	checkpointFile := filepath.Join(dir, "checkpoint.json")

	cp, err := Load(checkpointFile, sourceFile, "plain")
	require.NoError(t, err)
	assert.Empty(t, cp.Index)
}

func TestLoadRoundTripsExistingCheckpoint(t *testing.T) {
	dir := t.TempDir()
	sourceFile := filepath.Join(dir, "source.gz")
	writeGzipFixture(t, sourceFile, "line one", "line two", "line three")

	checkpointFile := filepath.Join(dir, "checkpoint.json")

	first, err := Load(checkpointFile, sourceFile, "gzip")
	require.NoError(t, err)

	first.IndexOffset = 42
	require.NoError(t, first.Save(checkpointFile))

	second, err := Load(checkpointFile, sourceFile, "gzip")
	require.NoError(t, err)

	assert.Equal(t, int64(42), second.IndexOffset)
	assert.Equal(t, first.SourceFile, second.SourceFile)
	assert.Equal(t, len(first.Index), len(second.Index))
}

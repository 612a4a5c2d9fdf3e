package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOrdersByID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Write(&buf, map[string]float64{
		"P3": 0.25,
		"P1": 0.5,
		"P2": 0.25,
	})
	require.NoError(t, err)
	assert.Equal(t, "P1.html 0.5\nP2.html 0.25\nP3.html 0.25\n", buf.String())
}

func TestWriteEmptyTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesWriterErrors(t *testing.T) {
	t.Parallel()

	assert.Error(t, Write(failingWriter{}, map[string]float64{"P1": 1}))
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	path := WriteFile(dir, map[string]float64{"P1": 1})

	assert.Equal(t, filepath.Join(dir, FileName), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "P1.html 1\n", string(data))
}

func TestWriteFileAbsorbsFailures(t *testing.T) {
	t.Parallel()

	// A regular file where the directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	assert.NotPanics(t, func() {
		WriteFile(filepath.Join(blocker, "out"), map[string]float64{"P1": 1})
	})
}

package tftp

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")

	w, err := openFileWrite(path)
	require.NoError(t, err)
	n, err := w.write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, w.close())
	// Closing twice must not error.
	require.NoError(t, w.close())

	r, err := openFileRead(path)
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, ok := r.read(buf)
	assert.True(t, ok)
	assert.Equal(t, "hello", string(buf[:n]))

	n, ok = r.read(buf)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
	require.NoError(t, r.close())
}

func TestOpenFileReadMissing(t *testing.T) {
	_, err := openFileRead(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
	assert.Equal(t, KindFileOpen, KindOf(err))
}

func TestOpenFileWriteTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")

	w, err := openFileWrite(path)
	require.NoError(t, err)
	_, err = w.write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, w.close())

	w2, err := openFileWrite(path)
	require.NoError(t, err)
	_, err = w2.write([]byte("ab"))
	require.NoError(t, err)
	require.NoError(t, w2.close())

	r, err := openFileRead(path)
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, ok := r.read(buf)
	assert.True(t, ok)
	assert.Equal(t, "ab", string(buf[:n]))
}

func TestFileReadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	w, err := openFileWrite(path)
	require.NoError(t, err)
	require.NoError(t, w.close())

	r, err := openFileRead(path)
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, ok := r.read(buf)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

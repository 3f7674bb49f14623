package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenDelete(t *testing.T) {
	b, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("%PDF-1.4 fake")
	key, err := b.SavePDF(bytes.NewReader(content), 1<<20)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "attachments/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	f, err := b.Open(key)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, content, got)

	require.NoError(t, b.Delete(key))
	_, err = b.Open(key)
	assert.Error(t, err)

	// deleting again is fine
	assert.NoError(t, b.Delete(key))
}

func TestSaveRejectsOversized(t *testing.T) {
	b, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	_, err = b.SavePDF(bytes.NewReader(make([]byte, 100)), 10)
	assert.Error(t, err)
}

func TestKeysAreUnique(t *testing.T) {
	b, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	k1, err := b.SavePDF(strings.NewReader("a"), 10)
	require.NoError(t, err)
	k2, err := b.SavePDF(strings.NewReader("b"), 10)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestTraversalKeysRejected(t *testing.T) {
	b, err := NewBlobStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside.pdf", "/etc/passwd", "attachments/../../x"} {
		assert.Error(t, b.Delete(key), key)
	}
}

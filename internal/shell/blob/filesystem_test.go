package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Filesystem Store Tests
// =============================================================================

func setupFilesystemStore(t *testing.T) *FilesystemStore {
	t.Helper()
	s, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFilesystemStore_WriteRead(t *testing.T) {
	s := setupFilesystemStore(t)
	ctx := context.Background()

	key := SiteKey("alice-quickweb42", "my-page")
	require.NoError(t, s.Write(ctx, key, []byte("<html></html>")))

	content, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html></html>"), content)
}

func TestFilesystemStore_Overwrite(t *testing.T) {
	s := setupFilesystemStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "k/index.html", []byte("one")))
	require.NoError(t, s.Write(ctx, "k/index.html", []byte("two")))

	content, err := s.Read(ctx, "k/index.html")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), content)
}

func TestFilesystemStore_ReadMissing(t *testing.T) {
	s := setupFilesystemStore(t)
	_, err := s.Read(context.Background(), "nobody/home/index.html")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemStore_RejectsTraversal(t *testing.T) {
	s := setupFilesystemStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Write(ctx, "../escape", []byte("x")), ErrInvalidKey)
	assert.ErrorIs(t, s.Write(ctx, "/absolute", []byte("x")), ErrInvalidKey)
	_, err := s.Read(ctx, "a/../../b")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestFilesystemStore_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "blobs")
	_, err := NewFilesystemStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSiteKey(t *testing.T) {
	assert.Equal(t, "alice-quickweb42/my-page/index.html", SiteKey("alice-quickweb42", "my-page"))
}

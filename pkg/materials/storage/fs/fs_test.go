package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/primizht/materials/pkg/materials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestUploadWritesCategoryShardedPath(t *testing.T) {
	base := t.TempDir()
	backend, err := New(Config{BaseDir: base, URLPrefix: "http://localhost:9000/files"})
	require.NoError(t, err)
	ctx := context.Background()

	result, err := backend.Upload(ctx, []byte("%PDF-1.4"), "1700_report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "1700_report.pdf", result.PublicID)
	assert.Equal(t, "pdf", result.Format)
	assert.Equal(t, "http://localhost:9000/files/materials/raw/1700_report.pdf", result.URL)

	data, err := os.ReadFile(filepath.Join(base, "materials", "raw", "1700_report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)
}

func TestUploadCustomFolder(t *testing.T) {
	base := t.TempDir()
	backend, err := New(Config{BaseDir: base, Folder: "archive"})
	require.NoError(t, err)

	result, err := backend.Upload(context.Background(), []byte("movie"), "clip.mov")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(base, "archive", "video", "clip.mov"))
	require.NoError(t, err)
	assert.Contains(t, result.URL, "archive/video/clip.mov")
}

func TestDeleteByPublicIDAndCategory(t *testing.T) {
	base := t.TempDir()
	backend, err := New(Config{BaseDir: base})
	require.NoError(t, err)
	ctx := context.Background()

	result, err := backend.Upload(ctx, []byte("x"), "doc.docx")
	require.NoError(t, err)

	// Wrong category misses the object
	assert.Error(t, backend.Delete(ctx, result.PublicID, materials.CategoryImage))

	require.NoError(t, backend.Delete(ctx, result.PublicID, materials.CategoryRaw))
	_, err = os.Stat(filepath.Join(base, "materials", "raw", "doc.docx"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingObject(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	err = backend.Delete(context.Background(), "missing.pdf", materials.CategoryRaw)
	assert.Error(t, err)
}

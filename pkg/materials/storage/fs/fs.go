package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/primizht/materials/pkg/materials"
)

// Config options for the filesystem backend.
type Config struct {
	BaseDir   string // base directory for storing files
	URLPrefix string // URL prefix the base directory is served under
	Folder    string // namespace under the base directory (default "materials")
}

// Backend is a filesystem implementation of the materials.BlobStore
// interface. Blobs land under <base>/<folder>/<category>/<publicID>, so
// deletion needs the same category the upload classified.
type Backend struct {
	baseDir   string
	urlPrefix string
	folder    string
}

// New creates a new filesystem blob store.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if config.Folder == "" {
		config.Folder = "materials"
	}

	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urlPrefix: strings.TrimRight(config.URLPrefix, "/"),
		folder:    config.Folder,
	}, nil
}

func (b *Backend) objectPath(publicID string, category materials.ResourceCategory) string {
	return filepath.Join(b.baseDir, b.folder, string(category), publicID)
}

func (b *Backend) Upload(ctx context.Context, data []byte, name string) (*materials.UploadResult, error) {
	format := materials.DetectFormat(name, data)
	category := materials.CategoryForType(format)

	path := b.objectPath(name, category)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write object: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/%s", b.urlPrefix, b.folder, category, name)
	if b.urlPrefix == "" {
		url = "file://" + path
	}

	return &materials.UploadResult{
		URL:      url,
		PublicID: name,
		Format:   format,
	}, nil
}

func (b *Backend) Delete(ctx context.Context, publicID string, category materials.ResourceCategory) error {
	path := b.objectPath(publicID, category)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.New("object not found")
		}
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

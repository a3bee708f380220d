package memory

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/primizht/materials/pkg/materials"
)

// Backend is an in-memory implementation of the materials.BlobStore
// interface, used by tests and local development.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte // keyed by "category/publicID"
}

// New creates a new in-memory blob store.
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

func objectKey(publicID string, category materials.ResourceCategory) string {
	return string(category) + "/" + publicID
}

// Upload stores the payload under a category derived from the detected
// format, the same classification the delete path will recompute.
func (b *Backend) Upload(ctx context.Context, data []byte, name string) (*materials.UploadResult, error) {
	format := materials.DetectFormat(name, data)
	category := materials.CategoryForType(format)
	key := objectKey(name, category)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = bytes.Clone(data)

	return &materials.UploadResult{
		URL:      "memory://" + key,
		PublicID: name,
		Format:   format,
	}, nil
}

// Delete removes the blob filed under (publicID, category). The category
// must match the one computed at upload time.
func (b *Backend) Delete(ctx context.Context, publicID string, category materials.ResourceCategory) error {
	key := objectKey(publicID, category)

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return errors.New("object not found")
	}

	delete(b.objects, key)
	return nil
}

// Get returns the stored payload for (publicID, category). Test helper.
func (b *Backend) Get(publicID string, category materials.ResourceCategory) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey(publicID, category)]
	return data, exists
}

// Len reports the number of stored blobs. Test helper.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.objects)
}

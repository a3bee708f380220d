package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/primizht/materials/pkg/materials"
)

// Repository implements materials.Repository using in-memory storage.
type Repository struct {
	mu    sync.RWMutex
	items map[string]*materials.Material
}

// New creates a new in-memory repository.
func New() materials.Repository {
	return &Repository{
		items: make(map[string]*materials.Material),
	}
}

func (r *Repository) NewID() string {
	return uuid.NewString()
}

func (r *Repository) Get(ctx context.Context, id string) (*materials.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.items[id]
	if !exists {
		return nil, materials.ErrMaterialNotFound
	}

	// Return a copy to prevent external modifications
	mCopy := *m
	return &mCopy, nil
}

func (r *Repository) List(ctx context.Context) (map[string]*materials.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*materials.Material, len(r.items))
	for id, m := range r.items {
		mCopy := *m
		result[id] = &mCopy
	}

	return result, nil
}

func (r *Repository) Create(ctx context.Context, m *materials.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mCopy := *m
	r.items[m.ID] = &mCopy

	return nil
}

func (r *Repository) Update(ctx context.Context, id string, patch materials.MaterialPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.items[id]
	if !exists {
		return materials.ErrMaterialNotFound
	}

	m.Title = patch.Title
	m.Category = patch.Category
	if patch.Content != "" {
		m.Content = patch.Content
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, id)
	return nil
}

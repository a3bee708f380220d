package materials

import "context"

// Repository persists material records in a flat collection keyed by id.
type Repository interface {
	// NewID produces a fresh, collision-free record key.
	NewID() string

	// Get returns the material stored at id, or ErrMaterialNotFound.
	Get(ctx context.Context, id string) (*Material, error)

	// List returns the full id-keyed collection. Order is not meaningful;
	// consumers needing chronology sort by CreatedAt.
	List(ctx context.Context) (map[string]*Material, error)

	// Create writes a full record at its own id.
	Create(ctx context.Context, m *Material) error

	// Update merges only the supplied patch fields into the record at id,
	// or returns ErrMaterialNotFound.
	Update(ctx context.Context, id string, patch MaterialPatch) error

	// Delete removes the record at id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// MaterialPatch carries the fields the edit operation may change. Title and
// Category are applied unconditionally; Content only when non-empty.
type MaterialPatch struct {
	Title    string
	Category string
	Content  string
}

// UploadResult is what a blob store reports back after storing a payload.
type UploadResult struct {
	URL      string // permanent retrieval URL
	PublicID string // opaque identifier needed to delete the blob later
	Format   string // detected file format token, "" when unknown
}

// BlobStore stores binary payloads with an external provider. Deletion is
// addressed by the public id plus the resource category the provider filed
// the blob under, so upload and delete must classify identically.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, name string) (*UploadResult, error)
	Delete(ctx context.Context, publicID string, category ResourceCategory) error
}

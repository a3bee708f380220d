package materials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultMaxUploadSize caps fully buffered file payloads at 50 MB.
const DefaultMaxUploadSize int64 = 50 << 20

// Service exposes the material lifecycle operations.
type Service interface {
	Create(ctx context.Context, req CreateMaterialRequest) (*Material, error)
	List(ctx context.Context) (map[string]*Material, error)
	Update(ctx context.Context, id string, req UpdateMaterialRequest) error
	Delete(ctx context.Context, id string) error
}

type service struct {
	repository Repository
	blobStore  BlobStore
	maxUpload  int64
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service.
type Option func(*service)

// WithRepository sets the record repository for the service.
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage gateway for the service.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithMaxUploadSize overrides the file payload cap. Zero disables the check;
// callers are then expected to bound request bodies themselves.
func WithMaxUploadSize(n int64) Option {
	return func(s *service) {
		s.maxUpload = n
	}
}

// WithLogger sets the logger used for best-effort failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options.
func New(options ...Option) (Service, error) {
	s := &service{
		maxUpload: DefaultMaxUploadSize,
		logger:    slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// Create allocates an id, stores the payload (text inline, file via the blob
// store) and persists the assembled record. An upload failure aborts the
// whole operation; no partial record is ever written.
func (s *service) Create(ctx context.Context, req CreateMaterialRequest) (*Material, error) {
	now := time.Now()
	m := &Material{
		ID:        s.repository.NewID(),
		Title:     req.Title,
		Category:  req.Category,
		CreatedAt: now.UnixMilli(),
	}

	if req.IsText {
		m.Type = TypeText
		m.Content = req.TextContent
	} else {
		if len(req.Data) == 0 {
			return nil, ErrMissingFile
		}
		if s.maxUpload > 0 && int64(len(req.Data)) > s.maxUpload {
			return nil, ErrFileTooLarge
		}

		name := SafeFilename(req.FileName, now)
		result, err := s.blobStore.Upload(ctx, req.Data, name)
		if err != nil {
			return nil, &MaterialError{ID: m.ID, Op: "upload", Err: fmt.Errorf("%w: %v", ErrUploadFailed, err)}
		}

		m.Type = resolveType(result.Format, req.FileName)
		m.URL = result.URL
		m.PublicID = result.PublicID
	}

	if err := s.repository.Create(ctx, m); err != nil {
		// The blob made it to the store but the record did not. Reclaim it
		// so the failed create leaves nothing behind.
		if m.PublicID != "" {
			if derr := s.blobStore.Delete(ctx, m.PublicID, CategoryForType(m.Type)); derr != nil {
				s.logger.Error("orphaned blob after failed create",
					"id", m.ID, "public_id", m.PublicID, "err", derr)
			}
		}
		return nil, &MaterialError{ID: m.ID, Op: "create", Err: err}
	}

	return m, nil
}

// List returns the full materials collection, unfiltered.
func (s *service) List(ctx context.Context) (map[string]*Material, error) {
	return s.repository.List(ctx)
}

// Update applies title and category, and content when provided and the
// material is a text post. Everything else on the record is immutable.
func (s *service) Update(ctx context.Context, id string, req UpdateMaterialRequest) error {
	m, err := s.repository.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			return err
		}
		return &MaterialError{ID: id, Op: "update", Err: err}
	}

	patch := MaterialPatch{
		Title:    req.Title,
		Category: req.Category,
	}
	// Only a text post's body may change; a blob material's content stays
	// empty so the content/url exclusivity holds.
	if req.Content != "" && m.IsText() {
		patch.Content = req.Content
	}

	if err := s.repository.Update(ctx, id, patch); err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			return err
		}
		return &MaterialError{ID: id, Op: "update", Err: err}
	}

	return nil
}

// Delete removes the record and, when the record references a blob, attempts
// store-side cleanup first. A cleanup failure is logged and swallowed: the
// record is removed regardless, and an orphaned blob is the accepted
// residual failure mode. Deleting a missing id succeeds.
func (s *service) Delete(ctx context.Context, id string) error {
	m, err := s.repository.Get(ctx, id)
	if err != nil && !errors.Is(err, ErrMaterialNotFound) {
		return &MaterialError{ID: id, Op: "delete", Err: err}
	}

	if m != nil && m.PublicID != "" {
		category := CategoryForType(m.Type)
		if err := s.blobStore.Delete(ctx, m.PublicID, category); err != nil {
			s.logger.Error("blob delete failed",
				"id", id, "public_id", m.PublicID, "category", category, "err", err)
		}
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		return &MaterialError{ID: id, Op: "delete", Err: err}
	}

	return nil
}

// resolveType picks the stored type token: the store's detected format wins,
// then the original filename's extension, then the literal "file".
func resolveType(format, originalName string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if ext := Extension(originalName); ext != "" {
		return ext
	}
	return "file"
}

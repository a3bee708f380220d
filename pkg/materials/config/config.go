package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/primizht/materials/pkg/materials"
	memoryrepo "github.com/primizht/materials/pkg/materials/repo/memory"
	postgresrepo "github.com/primizht/materials/pkg/materials/repo/postgres"
	fsstorage "github.com/primizht/materials/pkg/materials/storage/fs"
	memorystorage "github.com/primizht/materials/pkg/materials/storage/memory"
	s3storage "github.com/primizht/materials/pkg/materials/storage/s3"
)

// ServerConfig represents server configuration for the materials service.
//
// DATABASE_URL is either "memory" or a postgres:// connection string.
// STORAGE_URL selects the blob store:
//
//	memory://                     in-memory (default)
//	file:///var/data?url_prefix=  filesystem
//	s3://bucket?region=us-east-1  S3 or MinIO (with S3_ENDPOINT)
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	AdminLogin    string `env:"ADMIN_LOGIN" env-default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin"`

	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`
	StorageURL  string `env:"STORAGE_URL" env-default:"memory://"`

	UploadFolder  string `env:"UPLOAD_FOLDER" env-default:"materials"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" env-default:"52428800"`

	S3 S3Config
}

// S3Config carries the credential and endpoint settings for s3:// storage.
type S3Config struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Endpoint        string `env:"S3_ENDPOINT" env-default:""`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL" env-default:""`
	CreateBucket    bool   `env:"S3_CREATE_BUCKET" env-default:"false"`
}

// Load reads the server configuration from the environment.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.AdminLogin == "" || c.AdminPassword == "" {
		return errors.New("admin credentials are required")
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	if c.DatabaseURL != "memory" &&
		!strings.HasPrefix(c.DatabaseURL, "postgres://") &&
		!strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("unsupported DATABASE_URL %q (use 'memory' or 'postgres://...')", c.DatabaseURL)
	}

	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	switch u.Scheme {
	case "memory", "file", "s3":
	default:
		return fmt.Errorf("unsupported STORAGE_URL scheme %q (use memory://, file:// or s3://)", u.Scheme)
	}

	return nil
}

// BuildRepository constructs the record repository the configuration names.
// The returned cleanup func releases any held connections.
func (c *ServerConfig) BuildRepository(ctx context.Context) (materials.Repository, func(), error) {
	if c.DatabaseURL == "memory" {
		return memoryrepo.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, c.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := postgresrepo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return postgresrepo.NewWithPool(pool), pool.Close, nil
}

// BuildBlobStore constructs the blob store the STORAGE_URL names.
func (c *ServerConfig) BuildBlobStore() (materials.BlobStore, error) {
	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}

	switch u.Scheme {
	case "memory":
		return memorystorage.New(), nil

	case "file":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   u.Path,
			URLPrefix: u.Query().Get("url_prefix"),
			Folder:    c.UploadFolder,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Bucket:                 u.Host,
			Region:                 u.Query().Get("region"),
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicBaseURL:          c.S3.PublicBaseURL,
			Folder:                 c.UploadFolder,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", u.Scheme)
	}
}

// BuildService assembles the repository, blob store and material service.
func (c *ServerConfig) BuildService(ctx context.Context) (materials.Service, func(), error) {
	repo, cleanup, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	store, err := c.BuildBlobStore()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc, err := materials.New(
		materials.WithRepository(repo),
		materials.WithBlobStore(store),
		materials.WithMaxUploadSize(c.MaxUploadSize),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return svc, cleanup, nil
}

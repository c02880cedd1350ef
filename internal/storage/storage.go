package storage

import (
	"context"
	"fmt"
	"io"

	"studiofinder_backend/internal/config"
)

// Object describes a stored file. PublicID is what Delete expects.
type Object struct {
	URL      string
	PublicID string
}

// Storage defines the interface for image storage operations
type Storage interface {
	// Save stores content under key (a path without extension for CDNs).
	Save(ctx context.Context, key string, reader io.Reader, contentType string) (*Object, error)

	// Delete removes a previously saved object. Missing objects are not an error.
	Delete(ctx context.Context, publicID string) error
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "", "local":
		return NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	case "cloudinary":
		return NewCloudinaryStorage(cfg.Cloudinary)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

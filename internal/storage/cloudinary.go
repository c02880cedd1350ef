package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"studiofinder_backend/internal/config"
)

// CloudinaryStorage stores studio images on the Cloudinary CDN.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStorage(cfg config.CloudinaryConfig) (*CloudinaryStorage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld, folder: cfg.Folder}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, key string, reader io.Reader, contentType string) (*Object, error) {
	resp, err := s.cld.Upload.Upload(ctx, reader, uploader.UploadParams{
		PublicID: path.Base(key),
		Folder:   path.Join(s.folder, path.Dir(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}
	return &Object{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary delete failed: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary delete failed: %s", resp.Error.Message)
	}
	return nil
}

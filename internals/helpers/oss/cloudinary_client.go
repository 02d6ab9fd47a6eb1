package oss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryFileStore: ExternalID berbentuk "<resource_type>:<public_id>".
type CloudinaryFileStore struct {
	cld    *cloudinary.Cloudinary
	Prefix string
}

// NewCloudinaryFileStoreFromEnv membaca CLOUDINARY_URL.
func NewCloudinaryFileStoreFromEnv() (*CloudinaryFileStore, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryFileStore{cld: cld, Prefix: "thesis"}, nil
}

func resourceTypeFor(contentType string) string {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "image"
	}
	return "raw"
}

func (s *CloudinaryFileStore) Store(ctx context.Context, in StoreInput) (StoredFile, error) {
	rt := resourceTypeFor(in.ContentType)
	key := BuildObjectKey("", "", in.Filename)
	if rt == "image" {
		// Cloudinary menambahkan ekstensi sendiri untuk image.
		key = strings.TrimSuffix(key, filepath.Ext(key))
	}
	folder := strings.Trim(strings.Join([]string{s.Prefix, in.Folder}, "/"), "/")

	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(in.Data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     key,
		ResourceType: rt,
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return StoredFile{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return StoredFile{URL: res.SecureURL, ExternalID: rt + ":" + res.PublicID}, nil
}

func (s *CloudinaryFileStore) Delete(ctx context.Context, externalID string) error {
	rt, publicID, ok := strings.Cut(externalID, ":")
	if !ok || publicID == "" {
		return errors.New("cloudinary: malformed external id")
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: rt,
	})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", res.Error.Message)
	}
	if res.Result == "not found" {
		return ErrNotFound
	}
	return nil
}

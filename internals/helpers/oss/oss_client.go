package oss

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"

	"thesis_backend/internals/configs"
)

// OSSFileStore menyimpan file ke Alibaba Cloud OSS.
type OSSFileStore struct {
	Bucket     *alioss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string
	PublicBase string
}

func NewOSSFileStoreFromEnv(prefix string) (*OSSFileStore, error) {
	endpoint := configs.GetEnv("ALI_OSS_ENDPOINT")
	ak := configs.GetEnv("ALI_OSS_ACCESS_KEY")
	sk := configs.GetEnv("ALI_OSS_SECRET_KEY")
	sts := configs.GetEnv("ALI_OSS_SECURITY_TOKEN")
	bucketName := configs.GetEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var opts []alioss.ClientOption
	if sts != "" {
		opts = append(opts, alioss.SecurityToken(sts))
	}
	client, err := alioss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	log.Printf("[OSS] using bucket %s", bucketName)

	return &OSSFileStore{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
		PublicBase: configs.GetEnv("ALI_OSS_PUBLIC_BASE"),
	}, nil
}

func (s *OSSFileStore) Store(ctx context.Context, in StoreInput) (StoredFile, error) {
	key := BuildObjectKey(s.Prefix, in.Folder, in.Filename)
	ct := in.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	err := s.Bucket.PutObject(key, bytes.NewReader(in.Data),
		alioss.WithContext(ctx),
		alioss.ContentType(ct),
		alioss.ContentDisposition(fmt.Sprintf("inline; filename=%q", in.Filename)),
	)
	if err != nil {
		return StoredFile{}, fmt.Errorf("oss put %s: %w", key, err)
	}
	return StoredFile{URL: s.PublicURL(key), ExternalID: key}, nil
}

func (s *OSSFileStore) Delete(ctx context.Context, key string) error {
	ok, err := s.Bucket.IsObjectExist(key, alioss.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("oss head %s: %w", key, err)
	}
	if !ok {
		return ErrNotFound
	}
	return s.Bucket.DeleteObject(key, alioss.WithContext(ctx))
}

func (s *OSSFileStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return strings.TrimRight(s.PublicBase, "/") + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

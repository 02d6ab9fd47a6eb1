package oss

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"thesis_backend/internals/configs"
)

var ErrNotFound = errors.New("file not found")

// StoreInput adalah file yang sudah dibaca penuh dan lolos validasi.
type StoreInput struct {
	Folder      string
	Filename    string
	ContentType string
	Data        []byte
}

type StoredFile struct {
	URL        string `json:"url"`
	ExternalID string `json:"external_id"`
}

// FileStore menyimpan dan melepas file di object storage.
type FileStore interface {
	Store(ctx context.Context, in StoreInput) (StoredFile, error)
	Delete(ctx context.Context, externalID string) error
}

// NewFileStoreFromEnv memilih backend dari FILE_STORE (oss|cloudinary|memory).
func NewFileStoreFromEnv() (FileStore, error) {
	switch strings.ToLower(configs.GetEnv("FILE_STORE", "oss")) {
	case "oss":
		return NewOSSFileStoreFromEnv("thesis")
	case "cloudinary":
		return NewCloudinaryFileStoreFromEnv()
	case "memory":
		return NewMemoryFileStore(), nil
	default:
		return nil, fmt.Errorf("unknown FILE_STORE %q", configs.GetEnv("FILE_STORE"))
	}
}

// BuildObjectKey: <prefix>/<folder>/<slug>_<timestamp>_<rand><ext>
func BuildObjectKey(prefix, folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	parts := make([]string, 0, 3)
	for _, p := range []string{prefix, folder} {
		if p = strings.Trim(p, "/ "); p != "" {
			parts = append(parts, p)
		}
	}
	name := fmt.Sprintf("%s_%s_%s%s", slugify(base), time.Now().UTC().Format("20060102_150405"), randHex(3), ext)
	return strings.Join(append(parts, name), "/")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

/* =======================================================================
   In-memory store (FILE_STORE=memory, test)
======================================================================= */

type MemoryFileStore struct {
	mu      sync.Mutex
	objects map[string]StoreInput

	// StoreErr / DeleteErr memaksa kegagalan di test.
	StoreErr  error
	DeleteErr error
}

func NewMemoryFileStore() *MemoryFileStore {
	return &MemoryFileStore{objects: map[string]StoreInput{}}
}

func (m *MemoryFileStore) Store(_ context.Context, in StoreInput) (StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreErr != nil {
		return StoredFile{}, m.StoreErr
	}
	key := BuildObjectKey("", in.Folder, in.Filename)
	m.objects[key] = in
	return StoredFile{URL: "memory://" + key, ExternalID: key}, nil
}

func (m *MemoryFileStore) Delete(_ context.Context, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.objects[externalID]; !ok {
		return ErrNotFound
	}
	delete(m.objects, externalID)
	return nil
}

func (m *MemoryFileStore) Has(externalID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[externalID]
	return ok
}

func (m *MemoryFileStore) Get(externalID string) (StoreInput, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.objects[externalID]
	return in, ok
}

func (m *MemoryFileStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Package blobstore keeps uploaded files (profile pictures, listing images and
// documents, verification documents) and hands back a public URL.
package blobstore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"smartsquare-server/config"
)

// Store saves data under folder and returns the URL it can be fetched from.
type Store interface {
	Store(ctx context.Context, folder, name string, data []byte, contentType string) (string, error)
}

// New returns the backend selected by BLOB_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.BlobBackend) {
	case "cloudinary":
		return NewCloudinary(cfg)
	case "s3":
		return NewS3(ctx, cfg)
	case "memory":
		return NewMemory("memory://blobs"), nil
	}
	return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}

// objectKey gives every upload a unique key while keeping the original file
// name readable.
func objectKey(folder, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	return path.Join(folder, uuid.NewString()+"_"+base)
}

// Memory keeps blobs in process memory. It backs tests and local runs.
type Memory struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

type Object struct {
	Data        []byte
	ContentType string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]Object)}
}

func (m *Memory) Store(_ context.Context, folder, name string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to store empty file %q", name)
	}
	url := m.baseURL + "/" + objectKey(folder, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[url] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return url, nil
}

// Get returns the object stored at url.
func (m *Memory) Get(url string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[url]
	return obj, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

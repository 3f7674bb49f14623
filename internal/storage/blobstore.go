// Package storage keeps uploaded PDF attachments on local disk.
// Requests reference blobs by an opaque key; the file is written first
// and the key stored on the request afterwards, so a crash in between
// leaves at worst an orphaned file, never a dangling reference.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore writes and removes attachment files under one root
// directory. Keys are relative paths like "attachments/<uuid>.pdf" and
// never contain caller-chosen names, so they are safe to join.
type BlobStore struct {
	root string
}

// NewBlobStore ensures the root directory exists and returns the store.
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "attachments"), 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &BlobStore{root: root}, nil
}

// SavePDF streams src into a new uniquely named file and returns its
// key. maxBytes caps the file size; exceeding it aborts the write and
// removes the partial file.
func (b *BlobStore) SavePDF(src io.Reader, maxBytes int64) (string, error) {
	key := filepath.Join("attachments", uuid.NewString()+".pdf")
	path := filepath.Join(b.root, key)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, io.LimitReader(src, maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > maxBytes {
		err = fmt.Errorf("attachment exceeds %d bytes", maxBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return filepath.ToSlash(key), nil
}

// Open returns the file for a stored key, for serving downloads.
func (b *BlobStore) Open(key string) (*os.File, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes a stored blob. Deleting a key that is already gone is
// not an error; blob deletion runs best-effort after the database
// commit and may be retried.
func (b *BlobStore) Delete(key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve joins a key under the root and rejects anything that would
// escape it.
func (b *BlobStore) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(b.root, clean), nil
}

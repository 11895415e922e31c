// Package storage writes build outputs below a root directory.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// CacheDir holds digest sidecars, relative to the storage root.
const CacheDir = ".doctrees"

type FSStorage struct {
	Root string
	// Force rewrites files whose content is unchanged since the last
	// build.
	Force bool
}

func NewFSStorage(root string) *FSStorage {
	return &FSStorage{Root: root}
}

// Digest returns the hex SHA-256 of content.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Path returns the filesystem path of a slash-separated output path.
func (s *FSStorage) Path(destPath string) string {
	return filepath.Join(s.Root, filepath.FromSlash(destPath))
}

// Write stores content at destPath and records its digest. It reports
// false, without writing, when the file exists with the same digest.
func (s *FSStorage) Write(ctx context.Context, destPath string, content []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	digest := Digest(content)
	if !s.Force && s.CheckCache(destPath, digest) {
		if _, err := os.Stat(s.Path(destPath)); err == nil {
			return false, nil
		}
	}
	if err := s.writeFileAbsolute(s.Path(destPath), content); err != nil {
		return false, fmt.Errorf("write %s: %w", destPath, err)
	}
	if err := s.WriteCache(ctx, destPath, digest); err != nil {
		return true, fmt.Errorf("write cache for %s: %w", destPath, err)
	}
	return true, nil
}

// CheckCache reports whether destPath was last written with digest.
func (s *FSStorage) CheckCache(destPath string, digest string) bool {
	data, err := os.ReadFile(s.cachePath(destPath))
	return err == nil && string(data) == digest
}

func (s *FSStorage) WriteCache(ctx context.Context, destPath string, digest string) error {
	if destPath == "" {
		return fmt.Errorf("cache path required")
	}
	return s.writeFileAbsolute(s.cachePath(destPath), []byte(digest))
}

func (s *FSStorage) cachePath(destPath string) string {
	return filepath.Join(s.Root, CacheDir, filepath.FromSlash(destPath)+".sha256")
}

func (s *FSStorage) writeFileAbsolute(fullPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	// The rename replaces an existing file or symlink rather than
	// following it.
	if err := renameio.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps assets on the local filesystem and serves them under
// urlPrefix. Ids are slash-separated keys relative to baseDir.
type LocalStore struct {
	baseDir   string
	urlPrefix string
}

func NewLocalStore(baseDir, urlPrefix string) *LocalStore {
	return &LocalStore{baseDir: baseDir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStore) Upload(ctx context.Context, a Asset, folder string) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}

	key := objectKey(folder, uuid.NewString()+a.Extension())
	dest, err := s.path(key)
	if err != nil {
		return Stored{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Stored{}, fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.WriteFile(dest, a.Data, 0o644); err != nil {
		return Stored{}, fmt.Errorf("storage: write: %w", err)
	}

	return Stored{URL: s.urlPrefix + "/" + key, ID: key}, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	dest, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove: %w", err)
	}
	return nil
}

// path resolves key under baseDir and refuses keys escaping it.
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}

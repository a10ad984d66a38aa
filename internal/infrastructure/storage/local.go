package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalModelStore keeps model files in one flat directory on disk.
var _ ModelStore = (*LocalModelStore)(nil)

type LocalModelStore struct {
	BasePath string
}

func NewLocalModelStore(basePath string) (*LocalModelStore, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve model dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &LocalModelStore{BasePath: abs}, nil
}

func (s *LocalModelStore) getFullPath(key string) string {
	return filepath.Join(s.BasePath, key)
}

// Save streams r into a temp file next to the target and renames it into
// place, so a failed upload never leaves a truncated model behind.
func (s *LocalModelStore) Save(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.BasePath, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	written, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()

	switch {
	case copyErr != nil:
		err = fmt.Errorf("write model file: %w", copyErr)
	case closeErr != nil:
		err = fmt.Errorf("close model file: %w", closeErr)
	case size >= 0 && written != size:
		err = fmt.Errorf("write model file: short write %d/%d bytes", written, size)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.getFullPath(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store model file: %w", err)
	}
	return nil
}

func (s *LocalModelStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, nil
	}
	info, err := os.Stat(s.getFullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (s *LocalModelStore) Rename(ctx context.Context, from, to string) error {
	if err := validateKey(from); err != nil {
		return err
	}
	if err := validateKey(to); err != nil {
		return err
	}
	if err := os.Rename(s.getFullPath(from), s.getFullPath(to)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("rename model file: %w", err)
	}
	return nil
}

func (s *LocalModelStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.getFullPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete model file: %w", err)
	}
	return nil
}

func (s *LocalModelStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, ErrObjectNotFound
	}
	f, err := os.Open(s.getFullPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open model file: %w", err)
	}
	return f, nil
}

func (s *LocalModelStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list model dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsModelKey(e.Name()) {
			continue
		}
		keys = append(keys, e.Name())
	}
	sort.Strings(keys)
	return keys, nil
}

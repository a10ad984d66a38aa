// Package storage holds the File Store: one 3D model file per aksara entry,
// keyed by the entry's sanitized name.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// ModelExt is the extension of every model file in the store.
const ModelExt = ".obj"

// ErrObjectNotFound is returned when a key does not exist in the store.
var ErrObjectNotFound = errors.New("model file not found")

// ModelStore is the contract shared by the local directory and MinIO backends.
// Keys are flat file names ending in ModelExt; there are no sub-directories.
type ModelStore interface {
	// Save writes r under key, replacing any existing object.
	Save(ctx context.Context, key string, r io.Reader, size int64) error
	Exists(ctx context.Context, key string) (bool, error)
	// Rename moves from to to, replacing to if it exists.
	Rename(ctx context.Context, from, to string) error
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns every key ending in ModelExt.
	List(ctx context.Context) ([]string, error)
}

// ModelKey maps an entry name to its File Store key. It is the only place the
// mapping is defined: create, attach, has_model, rename, delete and
// reconciliation all go through it.
//
// Path separators, NUL and other control characters become '_', surrounding
// whitespace and dots are trimmed. Ordinary names pass through unchanged, so
// "Aksara Ka" is stored as "Aksara Ka.obj". An empty result yields "".
//
// The mapping is not injective ("Ka" and "Ka." share a key), so the
// aksara_bali table keeps the key in a UNIQUE column.
func ModelKey(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return '_'
		}
		return r
	}, name)

	sanitized = strings.Trim(sanitized, " \t.")
	if sanitized == "" {
		return ""
	}
	return sanitized + ModelExt
}

// IsModelKey reports whether key looks like a model file key.
func IsModelKey(key string) bool {
	return strings.HasSuffix(key, ModelExt) && !strings.ContainsAny(key, `/\`)
}

func validateKey(key string) error {
	if key == "" || !IsModelKey(key) || key == ModelExt {
		return fmt.Errorf("invalid model key %q", key)
	}
	return nil
}

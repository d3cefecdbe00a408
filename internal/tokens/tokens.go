package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gonotes/notes-service/internal/errs"
	"github.com/gonotes/notes-service/internal/storage"
)

const (
	DefaultLabel = "user"
	DefaultToken = "test_token"
)

// ErrNoTokenSet is returned by Load when the token resource does not exist.
var ErrNoTokenSet = errors.New("token set not found")

// Set maps an arbitrary label to a secret token. Labels carry no identity.
type Set map[string]string

// Contains reports whether token is one of the set's values.
func (s Set) Contains(token string) bool {
	if token == "" {
		return false
	}
	for _, v := range s {
		if v == token {
			return true
		}
	}
	return false
}

// Repository reads the token set from a single record of a Store.
type Repository struct {
	store storage.Store
	key   string
}

func NewRepository(store storage.Store, key string) *Repository {
	return &Repository{store: store, key: key}
}

// NewFileRepository serves the token set from exactly the file at path,
// whatever its name; the file's directory is created if missing.
func NewFileRepository(path string) (*Repository, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	key := strings.TrimSuffix(base, ext)
	if key == "" {
		// dotfile such as ".tokens"
		key, ext = base, ""
	}
	if !storage.ValidKey(key) {
		return nil, fmt.Errorf("invalid token file path %q", path)
	}
	fs, err := storage.NewFileStoreExt(filepath.Dir(path), ext)
	if err != nil {
		return nil, err
	}
	return NewRepository(fs, key), nil
}

// Load reads the token set fresh from storage; nothing is cached.
func (r *Repository) Load(ctx context.Context) (Set, error) {
	b, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoTokenSet
		}
		return nil, fmt.Errorf("load token set: %w", err)
	}
	var set Set
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("decode token set: %w", err)
	}
	return set, nil
}

// Authenticate returns nil when token belongs to the current token set.
func (r *Repository) Authenticate(ctx context.Context, token string) error {
	set, err := r.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoTokenSet) {
			return errs.New(errs.Unauthorized, "Unauthorized")
		}
		return err
	}
	if !set.Contains(token) {
		return errs.New(errs.Unauthorized, "Invalid token")
	}
	return nil
}

// EnsureDefault writes a single label/token pair when no token set exists.
// An existing set is never touched.
func (r *Repository) EnsureDefault(ctx context.Context, label, token string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.key)
	if err != nil {
		return false, fmt.Errorf("check token set: %w", err)
	}
	if ok {
		return false, nil
	}
	if label == "" {
		label = DefaultLabel
	}
	if token == "" {
		token = DefaultToken
	}
	b, err := json.Marshal(Set{label: token})
	if err != nil {
		return false, err
	}
	if err := r.store.Put(ctx, r.key, b); err != nil {
		return false, fmt.Errorf("write default token set: %w", err)
	}
	return true, nil
}

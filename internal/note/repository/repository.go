package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gonotes/notes-service/internal/note"
	"github.com/gonotes/notes-service/internal/storage"
)

var (
	ErrNotFound = errors.New("note not found")
)

// Repo encodes notes as JSON records in a storage.Store, one record per id.
type Repo struct {
	store storage.Store
}

func New(store storage.Store) *Repo {
	return &Repo{store: store}
}

func (r *Repo) Get(ctx context.Context, id string) (*note.Note, error) {
	b, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var n note.Note
	if err := json.Unmarshal(b, &n); err != nil {
		return nil, fmt.Errorf("decode note %s: %w", id, err)
	}
	if n.ID != id {
		return nil, fmt.Errorf("note %s: record carries id %q", id, n.ID)
	}
	return &n, nil
}

// Put writes the full record, replacing any previous version.
func (r *Repo) Put(ctx context.Context, n *note.Note) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return r.store.Put(ctx, n.ID, b)
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// IDs enumerates stored note ids in backend order.
func (r *Repo) IDs(ctx context.Context) ([]string, error) {
	return r.store.Keys(ctx)
}

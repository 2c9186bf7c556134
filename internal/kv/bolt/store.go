// Package bolt keeps the key/value entries in a single bolt file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rapidloop/skv"

	"kharcha/internal/kv"
)

type Store struct {
	db *skv.KVStore
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create bolt directory: %w", err)
	}
	db, err := skv.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	var v string
	if err := s.db.Get(key, &v); err != nil {
		if errors.Is(err, skv.ErrNotFound) {
			return "", kv.ErrNotFound
		}
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Put(_ context.Context, key, value string) error {
	if err := s.db.Put(key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete is a no-op for absent keys, like the other adapters.
func (s *Store) Delete(_ context.Context, key string) error {
	if err := s.db.Delete(key); err != nil && !errors.Is(err, skv.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

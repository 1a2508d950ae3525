package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DrSkyle/routeviz/pkg/storage"
)

const (
	keyPrefix = "scenarios/"
	keySuffix = ".yaml"
)

// ErrNotFound is returned by Load for an unknown name.
var ErrNotFound = errors.New("scenario: not found")

// Store keeps scenarios in a blob store, one YAML object per name.
type Store struct {
	blobs storage.BlobStore
	now   func() time.Time
}

func NewStore(blobs storage.BlobStore) *Store {
	return &Store{blobs: blobs, now: time.Now}
}

func key(name string) string { return keyPrefix + name + keySuffix }

// DefaultName is used when Save is given an unnamed scenario.
func DefaultName(t time.Time) string {
	return fmt.Sprintf("scenario-%d", t.UnixMilli())
}

// Save validates and writes s, naming it if needed. It returns the name used.
func (st *Store) Save(ctx context.Context, s *Scenario) (string, error) {
	now := st.now()
	if s.Name == "" {
		s.Name = DefaultName(now)
	}
	s.SavedAt = now.UTC().Truncate(time.Second)
	if err := s.Validate(); err != nil {
		return "", err
	}
	data, err := s.Encode()
	if err != nil {
		return "", err
	}
	if err := st.blobs.Put(ctx, key(s.Name), data); err != nil {
		return "", fmt.Errorf("save scenario %s: %w", s.Name, err)
	}
	return s.Name, nil
}

func (st *Store) Load(ctx context.Context, name string) (*Scenario, error) {
	data, err := st.blobs.Get(ctx, key(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", name, err)
	}
	return Decode(data)
}

// List returns saved names in key order.
func (st *Store) List(ctx context.Context) ([]string, error) {
	keys, err := st.blobs.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.HasSuffix(k, keySuffix) {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(k, keyPrefix), keySuffix)
		if strings.Contains(name, "/") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (st *Store) Delete(ctx context.Context, name string) error {
	err := st.blobs.Delete(ctx, key(name))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return err
}

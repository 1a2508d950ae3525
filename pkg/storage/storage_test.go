package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exercise runs the shared BlobStore contract against a backend.
func exercise(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "scenarios/b.yaml", []byte("b")))
	require.NoError(t, store.Put(ctx, "scenarios/a.yaml", []byte("a")))
	require.NoError(t, store.Put(ctx, "other/c.yaml", []byte("c")))

	got, err := store.Get(ctx, "scenarios/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	// Overwrite replaces.
	require.NoError(t, store.Put(ctx, "scenarios/a.yaml", []byte("a2")))
	got, err = store.Get(ctx, "scenarios/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), got)

	keys, err := store.List(ctx, "scenarios/")
	require.NoError(t, err)
	assert.Equal(t, []string{"scenarios/a.yaml", "scenarios/b.yaml"}, keys)

	_, err = store.Get(ctx, "scenarios/missing.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.Delete(ctx, "scenarios/b.yaml"))
	keys, err = store.List(ctx, "scenarios/")
	require.NoError(t, err)
	assert.Equal(t, []string{"scenarios/a.yaml"}, keys)

	assert.Error(t, store.Put(ctx, "../escape", []byte("x")))
	assert.Error(t, store.Put(ctx, "", []byte("x")))
}

func TestLocalStore(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	exercise(t, store)

	err := store.Delete(context.Background(), "nope.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "not-yet"))
	keys, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := OpenBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	defer store.Close()
	exercise(t, store)

	err = store.Delete(context.Background(), "nope.yaml")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBadgerStore_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	store, err := OpenBadgerStore(BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", []byte("v")))
	require.NoError(t, store.Close())

	store, err = OpenBadgerStore(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	_, err := OpenBadgerStore(BadgerConfig{})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, dir, Options{})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, s)

	s, err = Open(ctx, "file://"+dir, Options{})
	require.NoError(t, err)
	require.IsType(t, &LocalStore{}, s)
	assert.Equal(t, dir, s.(*LocalStore).Root)

	s, err = Open(ctx, "badger://"+filepath.Join(dir, "db"), Options{})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, "s3://bucket/team/graphs", Options{S3Region: "us-east-1", S3AccessKey: "k", S3SecretKey: "s"})
	require.NoError(t, err)
	require.IsType(t, &S3Store{}, s)
	assert.Equal(t, "bucket", s.(*S3Store).Bucket)
	assert.Equal(t, "team/graphs", s.(*S3Store).Prefix)

	for _, bad := range []string{"", "s3://", "ftp://host/x"} {
		_, err := Open(ctx, bad, Options{})
		assert.Error(t, err, bad)
	}
}

func TestCleanKey(t *testing.T) {
	k, err := cleanKey("/scenarios/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "scenarios/a.yaml", k)

	_, err = cleanKey("a/../../b")
	assert.Error(t, err)
}

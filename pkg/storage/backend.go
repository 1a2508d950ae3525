package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("storage: key not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options tune Open.
type Options struct {
	Logger *slog.Logger

	// S3 overrides, mainly for LocalStack and other compatible endpoints.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

// Open picks a backend from a URL:
//
//	file:///abs/dir, file://~/dir, or a bare path
//	s3://bucket/optional/prefix
//	badger:///abs/dir
func Open(ctx context.Context, rawURL string, opts Options) (BlobStore, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if rawURL == "" {
		return nil, errors.New("storage: empty location")
	}
	if !strings.Contains(rawURL, "://") {
		return NewLocalStore(expandHome(rawURL)), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid location %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "file":
		return NewLocalStore(expandHome(u.Host + u.Path)), nil
	case "badger":
		return OpenBadgerStore(BadgerConfig{Path: expandHome(u.Host + u.Path), Logger: opts.Logger})
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: s3 location %q has no bucket", rawURL)
		}
		cfg, err := loadAWSConfig(ctx, opts)
		if err != nil {
			return nil, err
		}
		return NewS3Store(cfg, u.Host, strings.TrimPrefix(u.Path, "/"), opts.S3Endpoint), nil
	}
	return nil, fmt.Errorf("storage: unsupported scheme %q", u.Scheme)
}

func loadAWSConfig(ctx context.Context, opts Options) (aws.Config, error) {
	var loaders []func(*config.LoadOptions) error
	if opts.S3Region != "" {
		loaders = append(loaders, config.WithRegion(opts.S3Region))
	}
	if opts.S3AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.S3AccessKey, opts.S3SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// expandHome resolves a leading "~/".
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// cleanKey rejects keys that would escape a store's root.
func cleanKey(key string) (string, error) {
	k := strings.TrimPrefix(filepath.ToSlash(key), "/")
	if k == "" {
		return "", fmt.Errorf("storage: empty key")
	}
	for _, part := range strings.Split(k, "/") {
		if part == ".." {
			return "", fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return k, nil
}

// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/discochess/contagion/internal/codec"
	"github.com/discochess/contagion/internal/store"
)

var _ store.Store = (*Store)(nil)

// bucket is the part of a GCS bucket the store touches.
type bucket interface {
	open(ctx context.Context, key string) (io.ReadCloser, error)
	keys(ctx context.Context, prefix string) ([]string, error)
}

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket bucket
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: handle{client.Bucket(bucketName)},
		codec:  c,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = store.NormalizePrefix(prefix)
	}
}

// ReadScenario reads and decompresses the named scenario.
func (s *Store) ReadScenario(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	reader, err := s.bucket.open(ctx, s.scenarioKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	decompressor, err := s.codec.Reader(reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer decompressor.Close()

	data, err := io.ReadAll(decompressor)
	if err != nil {
		return nil, fmt.Errorf("decompressing scenario: %w", err)
	}
	return data, nil
}

// List returns the scenarios under the store prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	dir := s.prefix + store.Dir + "/"
	keys, err := s.bucket.keys(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("listing scenarios: %w", err)
	}

	var names []string
	for _, key := range keys {
		if path.Dir(key)+"/" != dir {
			continue
		}
		if name, ok := store.NameFromFile(path.Base(key), s.codec.Extension()); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) scenarioKey(name string) string {
	return s.prefix + store.Dir + "/" + store.FileName(name, s.codec.Extension())
}

// handle adapts a *storage.BucketHandle to bucket.
type handle struct {
	*storage.BucketHandle
}

func (h handle) open(ctx context.Context, key string) (io.ReadCloser, error) {
	return h.Object(key).NewReader(ctx)
}

func (h handle) keys(ctx context.Context, prefix string) ([]string, error) {
	it := h.Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
}

// Package storage resolves the storage-relative file names kept in multilingual file documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/pitabwire/util"
	"github.com/rs/xid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// buckets
	_ "gocloud.dev/blob/memblob"  // mem:// buckets
	"gocloud.dev/gcerrors"

	"github.com/pitabwire/multilingual/config"
	"github.com/pitabwire/multilingual/telemetry"
)

//nolint:gochecknoglobals // instruments are created once per process
var (
	tracer      = telemetry.NewTracer("multilingual/storage")
	storedBytes = telemetry.BytesMeasure("multilingual/storage", "/stored_bytes",
		"Bytes written to the bucket")
)

// ErrNotFound is returned when a named file does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Storage is the file collaborator of multilingual file fields.
type Storage interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	Size(ctx context.Context, name string) (int64, error)
	Path(name string) string
	URL(name string) string
}

// BlobStorage stores files in a gocloud.dev bucket.
type BlobStorage struct {
	bucket  *blob.Bucket
	prefix  string
	baseURL string
}

// Option configures a BlobStorage.
type Option func(*BlobStorage)

// WithPrefix keeps every file under prefix inside the bucket.
func WithPrefix(prefix string) Option {
	return func(s *BlobStorage) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// WithBaseURL sets the public URL files are served from.
func WithBaseURL(baseURL string) Option {
	return func(s *BlobStorage) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket, opts ...Option) *BlobStorage {
	s := &BlobStorage{bucket: bucket}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the bucket at bucketURL, for example "mem://" or "file:///var/media".
func Open(ctx context.Context, bucketURL string, opts ...Option) (*BlobStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("storage: open bucket %q: %w", bucketURL, err)
	}
	return New(bucket, opts...), nil
}

// OpenFromConfig opens the bucket of STORAGE_URL with its base URL. STORAGE_UPLOAD_PREFIX is
// applied by the editor to new uploads, not here, so existing names keep resolving.
func OpenFromConfig(ctx context.Context, cfg config.ConfigurationStorage) (*BlobStorage, error) {
	return Open(ctx, cfg.GetStorageURL(), WithBaseURL(cfg.GetStorageBaseURL()))
}

// Close releases the bucket.
func (s *BlobStorage) Close() error {
	return s.bucket.Close()
}

// Path is the bucket key a name is stored under.
func (s *BlobStorage) Path(name string) string {
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// URL is the public address of name.
func (s *BlobStorage) URL(name string) string {
	segments := strings.Split(strings.TrimLeft(path.Clean("/"+name), "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// Open returns a reader for name.
func (s *BlobStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, s.Path(name), nil)
	if err != nil {
		return nil, wrapNotFound(name, err)
	}
	return r, nil
}

// Save writes content under an available variant of name and returns the name actually used.
func (s *BlobStorage) Save(ctx context.Context, name string, content io.Reader) (_ string, err error) {
	ctx, span := tracer.Start(ctx, "Save")
	defer func() {
		tracer.End(ctx, span, err)
	}()

	available, err := s.availableName(ctx, name)
	if err != nil {
		return "", err
	}

	w, err := s.bucket.NewWriter(ctx, s.Path(available), nil)
	if err != nil {
		return "", fmt.Errorf("storage: create %q: %w", available, err)
	}

	written, err := io.Copy(w, content)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: write %q: %w", available, err)
	}

	if err = w.Close(); err != nil {
		return "", fmt.Errorf("storage: commit %q: %w", available, err)
	}

	storedBytes.Add(ctx, written)
	util.Log(ctx).WithField("name", available).WithField("bytes", written).Debug("stored file")
	return available, nil
}

// Delete removes name.
func (s *BlobStorage) Delete(ctx context.Context, name string) error {
	if err := s.bucket.Delete(ctx, s.Path(name)); err != nil {
		return wrapNotFound(name, err)
	}
	return nil
}

// Exists reports whether name is stored.
func (s *BlobStorage) Exists(ctx context.Context, name string) (bool, error) {
	return s.bucket.Exists(ctx, s.Path(name))
}

// Size returns the stored size of name in bytes.
func (s *BlobStorage) Size(ctx context.Context, name string) (int64, error) {
	attrs, err := s.bucket.Attributes(ctx, s.Path(name))
	if err != nil {
		return 0, wrapNotFound(name, err)
	}
	return attrs.Size, nil
}

// availableName keeps name when it is free and otherwise inserts a unique suffix before the extension.
func (s *BlobStorage) availableName(ctx context.Context, name string) (string, error) {
	name = strings.TrimLeft(path.Clean("/"+name), "/")
	if name == "" || name == "." {
		name = xid.New().String()
	}

	exists, err := s.Exists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("storage: check %q: %w", name, err)
	}
	if !exists {
		return name, nil
	}

	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + xid.New().String() + ext, nil
}

func wrapNotFound(name string, err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fmt.Errorf("storage: %q: %w", name, err)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/unalkalkan/bucketblob/internal/logger"
	"github.com/unalkalkan/bucketblob/internal/metrics"
	"github.com/unalkalkan/bucketblob/internal/socketaccess"
	"github.com/unalkalkan/bucketblob/pkg/types"
)

// BlobStore exposes a single bucket as a hierarchical blob store
type BlobStore struct {
	bucket   string
	client   ObjectClient
	sandbox  socketaccess.Sandbox
	pageSize int
	logger   *zerolog.Logger
	metrics  metrics.Recorder
}

// Option configures a BlobStore
type Option func(*BlobStore)

// WithSandbox sets the sandbox elevated around every client call
func WithSandbox(sb socketaccess.Sandbox) Option {
	return func(s *BlobStore) {
		s.sandbox = sb
	}
}

// WithPageSize sets the number of keys requested per listing page
func WithPageSize(n int) Option {
	return func(s *BlobStore) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the store logger. Without it the store logs through the
// logger carried by each call's context.
func WithLogger(l *zerolog.Logger) Option {
	return func(s *BlobStore) {
		s.logger = l
	}
}

// WithMetrics sets the instrumentation recorder
func WithMetrics(r metrics.Recorder) Option {
	return func(s *BlobStore) {
		s.metrics = r
	}
}

// NewBlobStore creates a blob store over an existing bucket.
// It fails with a *StoreError if the bucket cannot be found.
func NewBlobStore(ctx context.Context, bucket string, client ObjectClient, opts ...Option) (*BlobStore, error) {
	s := &BlobStore{
		bucket:   bucket,
		client:   client,
		sandbox:  socketaccess.Unrestricted{},
		pageSize: DefaultPageSize,
		metrics:  metrics.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	exists, err := socketaccess.Do(s.sandbox, func() (bool, error) {
		return client.BucketExists(ctx, bucket)
	})
	if err != nil {
		return nil, &StoreError{Bucket: bucket, Err: err}
	}
	if !exists {
		return nil, &StoreError{Bucket: bucket, Err: ErrBucketNotFound}
	}

	s.log(ctx).Info().Str("bucket", bucket).Msg("blob store initialized")
	return s, nil
}

// Bucket returns the bucket name
func (s *BlobStore) Bucket() string {
	return s.bucket
}

// BlobContainer returns a container rooted at path. No I/O is performed.
func (s *BlobStore) BlobContainer(path types.BlobPath) *BlobContainer {
	return &BlobContainer{
		path:    path,
		keyPath: path.BuildAsString(),
		store:   s,
	}
}

// Delete removes every blob stored under path
func (s *BlobStore) Delete(ctx context.Context, path types.BlobPath) (err error) {
	defer s.track("delete_path", time.Now(), &err)

	keyPath := path.BuildAsString()
	return socketaccess.DoVoid(s.sandbox, func() error {
		blobs, err := s.listBlobsByPrefix(ctx, keyPath, "")
		if err != nil {
			return err
		}

		names := make([]string, 0, len(blobs))
		for name := range blobs {
			names = append(names, name)
		}
		sort.Strings(names)

		return s.deleteKeys(ctx, keyPath, names)
	})
}

// Close shuts down the underlying client
func (s *BlobStore) Close() error {
	return s.client.Shutdown()
}

// deleteBatch accumulates keys for one bulk-delete request
type deleteBatch struct {
	keys      []string
	threshold int
}

func newDeleteBatch() *deleteBatch {
	threshold := MaxDeleteKeys / 2
	return &deleteBatch{
		keys:      make([]string, 0, threshold),
		threshold: threshold,
	}
}

// ready reports whether the batch must be sent: it reached the threshold, or the
// input is exhausted and keys remain.
func (b *deleteBatch) ready(exhausted bool) bool {
	return len(b.keys) >= b.threshold || (exhausted && len(b.keys) > 0)
}

// deleteKeys bulk-deletes keyPath+name for every name, in batches of at most
// MaxDeleteKeys/2 keys. No request is sent for an empty name list.
func (s *BlobStore) deleteKeys(ctx context.Context, keyPath string, names []string) error {
	return socketaccess.DoVoid(s.sandbox, func() error {
		batch := newDeleteBatch()
		for i, name := range names {
			batch.keys = append(batch.keys, keyPath+name)
			if !batch.ready(i == len(names)-1) {
				continue
			}

			if err := s.client.DeleteObjects(ctx, s.bucket, batch.keys); err != nil {
				return fmt.Errorf("failed to delete %d blobs under [%s]: %w", len(batch.keys), keyPath, err)
			}
			s.log(ctx).Debug().
				Str("bucket", s.bucket).
				Str("prefix", keyPath).
				Int("keys", len(batch.keys)).
				Msg("deleted blob batch")
			s.metrics.RecordDeleteBatch(len(batch.keys))

			// the client may retain the slice, so start a fresh one
			batch.keys = make([]string, 0, batch.threshold)
		}
		return nil
	})
}

func (s *BlobStore) blobExists(ctx context.Context, key string) (exists bool, err error) {
	defer s.track("exists", time.Now(), &err)

	exists, err = socketaccess.Do(s.sandbox, func() (bool, error) {
		return s.client.ObjectExists(ctx, s.bucket, key)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check blob [%s]: %w", key, err)
	}
	return exists, nil
}

func (s *BlobStore) readBlob(ctx context.Context, key string) (rc io.ReadCloser, err error) {
	defer s.track("read", time.Now(), &err)

	rc, err = socketaccess.Do(s.sandbox, func() (io.ReadCloser, error) {
		return s.client.GetObject(ctx, s.bucket, key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read blob [%s]: %w", key, err)
	}
	return rc, nil
}

func (s *BlobStore) writeBlob(ctx context.Context, key string, r io.Reader, size int64, failIfExists bool) (err error) {
	defer s.track("write", time.Now(), &err)

	err = socketaccess.DoVoid(s.sandbox, func() error {
		return s.client.PutObject(ctx, s.bucket, key, r, size, failIfExists)
	})
	if err != nil {
		return fmt.Errorf("failed to write blob [%s]: %w", key, err)
	}
	return nil
}

func (s *BlobStore) deleteBlob(ctx context.Context, key string) (err error) {
	defer s.track("delete", time.Now(), &err)

	err = socketaccess.DoVoid(s.sandbox, func() error {
		return s.client.DeleteObject(ctx, s.bucket, key)
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob [%s]: %w", key, err)
	}
	return nil
}

// move copies source to target and then deletes source. It is not atomic.
// Moving a blob onto itself only checks that it exists.
func (s *BlobStore) move(ctx context.Context, source, target string) (err error) {
	defer s.track("move", time.Now(), &err)

	return socketaccess.DoVoid(s.sandbox, func() error {
		if source == target {
			exists, err := s.client.ObjectExists(ctx, s.bucket, source)
			if err != nil {
				return &MoveError{Source: source, Target: target, Err: err}
			}
			if !exists {
				return &MoveError{Source: source, Target: target, Err: ErrBlobNotFound}
			}
			return nil
		}

		if err := s.client.CopyObject(ctx, s.bucket, source, s.bucket, target); err != nil {
			return &MoveError{Source: source, Target: target, Err: err}
		}
		if err := s.client.DeleteObject(ctx, s.bucket, source); err != nil {
			return &MoveError{Source: source, Target: target, Copied: true, Err: err}
		}
		s.log(ctx).Debug().
			Str("bucket", s.bucket).
			Str("source", source).
			Str("target", target).
			Msg("moved blob")
		return nil
	})
}

func (s *BlobStore) log(ctx context.Context) *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.FromContext(ctx)
}

func (s *BlobStore) track(operation string, start time.Time, err *error) {
	s.metrics.ObserveOperation(operation, *err, time.Since(start))
}

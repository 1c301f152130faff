package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalClient implements ObjectClient on the local filesystem.
// Each bucket is a directory under basePath and each key a file beneath it.
type LocalClient struct {
	basePath string
}

// NewLocalClient creates a new local filesystem client
func NewLocalClient(basePath string) (*LocalClient, error) {
	// Ensure base path exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &LocalClient{
		basePath: basePath,
	}, nil
}

// CreateBucket creates the bucket directory. Not part of ObjectClient: buckets are
// provisioned outside the blob store.
func (l *LocalClient) CreateBucket(bucket string) error {
	dir, err := l.bucketPath(bucket)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// BucketExists checks if the bucket directory exists
func (l *LocalClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	dir, err := l.bucketPath(bucket)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}

	return info.IsDir(), nil
}

// ListObjects returns one page of keys in lexicographic order
func (l *LocalClient) ListObjects(ctx context.Context, req ListObjectsRequest) (*ObjectListing, error) {
	dir, err := l.bucketPath(req.Bucket)
	if err != nil {
		return nil, err
	}

	maxKeys := req.MaxKeys
	if maxKeys <= 0 {
		maxKeys = DefaultPageSize
	}

	var all []ObjectSummary
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, req.Prefix) || key <= req.Marker {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		all = append(all, ObjectSummary{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to list objects: %w", ErrBucketNotFound)
		}
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })

	listing := &ObjectListing{Summaries: all}
	if len(all) > maxKeys {
		listing.Summaries = all[:maxKeys]
		listing.IsTruncated = true
		listing.NextMarker = all[maxKeys-1].Key
	}
	return listing, nil
}

// ObjectExists checks if a file exists at the key
func (l *LocalClient) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	fullPath, err := l.objectPath(bucket, key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return !info.IsDir(), nil
}

// GetObject opens the file stored at the key
func (l *LocalClient) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	fullPath, err := l.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s: %w", key, ErrBlobNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// PutObject writes the object through a temporary file so readers never see a partial blob
func (l *LocalClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, failIfExists bool) error {
	fullPath, err := l.objectPath(bucket, key)
	if err != nil {
		return err
	}

	// Create parent directories
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("failed to write data: expected %d bytes, got %d", size, written)
	}

	if failIfExists {
		// a hard link fails if the target already exists
		if err := os.Link(tmp.Name(), fullPath); err != nil {
			if os.IsExist(err) {
				return fmt.Errorf("key %s: %w", key, ErrBlobAlreadyExists)
			}
			return fmt.Errorf("failed to create file: %w", err)
		}
		return nil
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// DeleteObject removes the file at the key
func (l *LocalClient) DeleteObject(ctx context.Context, bucket, key string) error {
	fullPath, err := l.objectPath(bucket, key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// DeleteObjects removes several files, enforcing the bulk-delete limit
func (l *LocalClient) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	if len(keys) > MaxDeleteKeys {
		return fmt.Errorf("delete request has %d keys, limit is %d", len(keys), MaxDeleteKeys)
	}

	var errs []error
	for _, key := range keys {
		if err := l.DeleteObject(ctx, bucket, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CopyObject copies a file between keys
func (l *LocalClient) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	src, err := l.GetObject(ctx, srcBucket, srcKey)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("failed to read source: %w", err)
	}

	return l.PutObject(ctx, dstBucket, dstKey, bytes.NewReader(data), int64(len(data)), false)
}

// Shutdown cleans up any resources
func (l *LocalClient) Shutdown() error {
	// No cleanup needed for local client
	return nil
}

func (l *LocalClient) bucketPath(bucket string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket name: %q", bucket)
	}
	return filepath.Join(l.basePath, bucket), nil
}

// objectPath returns the full filesystem path for a key
func (l *LocalClient) objectPath(bucket, key string) (string, error) {
	dir, err := l.bucketPath(bucket)
	if err != nil {
		return "", err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", fmt.Errorf("invalid key: %q", key)
		}
	}
	return filepath.Join(dir, filepath.FromSlash(key)), nil
}

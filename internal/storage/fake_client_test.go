package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/unalkalkan/bucketblob/internal/socketaccess"
)

const testBucket = "test-bucket"

// fakeClient is an in-memory ObjectClient that records every call
type fakeClient struct {
	mu sync.Mutex

	buckets  map[string]bool
	objects  map[string][]byte
	pageSize int

	// gate, when set, must be open for every call except Shutdown
	gate       *socketaccess.Gate
	violations []string

	calls         []string
	deleteBatches [][]string
	shutdowns     int

	bucketErr        error
	deleteErr        error
	copyErr          error
	deleteObjectsErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		buckets: map[string]bool{testBucket: true},
		objects: make(map[string][]byte),
	}
}

func (f *fakeClient) record(op string) {
	f.calls = append(f.calls, op)
	if f.gate != nil && !f.gate.Allowed() {
		f.violations = append(f.violations, op)
	}
}

func (f *fakeClient) put(key, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = []byte(data)
}

func (f *fakeClient) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("BucketExists")
	if f.bucketErr != nil {
		return false, f.bucketErr
	}
	return f.buckets[bucket], nil
}

func (f *fakeClient) ListObjects(ctx context.Context, req ListObjectsRequest) (*ObjectListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListObjects")

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, req.Prefix) && key > req.Marker {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	limit := req.MaxKeys
	if f.pageSize > 0 && (limit <= 0 || f.pageSize < limit) {
		limit = f.pageSize
	}

	listing := &ObjectListing{}
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
		listing.IsTruncated = true
		listing.NextMarker = keys[len(keys)-1]
	}
	for _, key := range keys {
		listing.Summaries = append(listing.Summaries, ObjectSummary{Key: key, Size: int64(len(f.objects[key]))})
	}
	return listing, nil
}

func (f *fakeClient) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ObjectExists")
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeClient) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetObject")
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s: %w", key, ErrBlobNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, failIfExists bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutObject")
	if int64(len(data)) != size {
		return fmt.Errorf("content length %d does not match body of %d bytes", size, len(data))
	}
	if _, ok := f.objects[key]; ok && failIfExists {
		return fmt.Errorf("key %s: %w", key, ErrBlobAlreadyExists)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeClient) DeleteObject(ctx context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteObject")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeClient) DeleteObjects(ctx context.Context, bucket string, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteObjects")
	if f.deleteObjectsErr != nil {
		return f.deleteObjectsErr
	}
	if len(keys) > MaxDeleteKeys {
		return fmt.Errorf("too many keys: %d", len(keys))
	}
	f.deleteBatches = append(f.deleteBatches, append([]string(nil), keys...))
	for _, key := range keys {
		delete(f.objects, key)
	}
	return nil
}

func (f *fakeClient) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CopyObject")
	if f.copyErr != nil {
		return f.copyErr
	}
	data, ok := f.objects[srcKey]
	if !ok {
		return fmt.Errorf("no such key %s: %w", srcKey, ErrBlobNotFound)
	}
	f.objects[dstKey] = append([]byte(nil), data...)
	return nil
}

func (f *fakeClient) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdowns++
	return nil
}

var _ ObjectClient = (*fakeClient)(nil)

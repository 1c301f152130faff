package storage

import (
	"context"
	"io"
)

// MaxDeleteKeys is the provider limit on keys per bulk-delete request
const MaxDeleteKeys = 1000

// DefaultPageSize is the number of keys requested per listing page
const DefaultPageSize = 1000

// ObjectClient is the network client for a flat object store
type ObjectClient interface {
	// BucketExists reports whether the bucket exists
	BucketExists(ctx context.Context, bucket string) (bool, error)

	// ListObjects returns one page of keys sharing req.Prefix, starting after req.Marker
	ListObjects(ctx context.Context, req ListObjectsRequest) (*ObjectListing, error)

	// ObjectExists reports whether an object is stored at key
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// GetObject opens the object content; the caller closes it.
	// A missing object yields ErrBlobNotFound.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// PutObject uploads size bytes from r. With failIfExists an occupied key
	// yields ErrBlobAlreadyExists and the stored object is left untouched.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, failIfExists bool) error

	// DeleteObject removes a single object; deleting a missing object succeeds
	DeleteObject(ctx context.Context, bucket, key string) error

	// DeleteObjects removes up to MaxDeleteKeys objects in one request
	DeleteObjects(ctx context.Context, bucket string, keys []string) error

	// CopyObject performs a server-side copy
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error

	// Shutdown releases client resources
	Shutdown() error
}

// ListObjectsRequest selects one listing page
type ListObjectsRequest struct {
	Bucket  string
	Prefix  string
	Marker  string
	MaxKeys int
}

// ObjectSummary describes a listed object
type ObjectSummary struct {
	Key  string
	Size int64
}

// ObjectListing is one page of a prefix listing
type ObjectListing struct {
	Summaries   []ObjectSummary
	NextMarker  string
	IsTruncated bool
}

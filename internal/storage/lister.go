package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/unalkalkan/bucketblob/internal/socketaccess"
	"github.com/unalkalkan/bucketblob/pkg/types"
)

// pageIterator walks a marker-paginated listing one page at a time.
// Each request depends on the marker of the previous page.
type pageIterator struct {
	client  ObjectClient
	bucket  string
	prefix  string
	maxKeys int

	marker string
	done   bool
}

// Next fetches the next page. ok is false once the listing is exhausted.
func (it *pageIterator) Next(ctx context.Context) (page *ObjectListing, ok bool, err error) {
	if it.done {
		return nil, false, nil
	}

	page, err = it.client.ListObjects(ctx, ListObjectsRequest{
		Bucket:  it.bucket,
		Prefix:  it.prefix,
		Marker:  it.marker,
		MaxKeys: it.maxKeys,
	})
	if err != nil {
		return nil, false, err
	}

	if !page.IsTruncated {
		it.done = true
		return page, true, nil
	}
	if page.NextMarker == "" || page.NextMarker == it.marker {
		return nil, false, fmt.Errorf("listing %q stalled at marker %q", it.prefix, it.marker)
	}
	it.marker = page.NextMarker
	return page, true, nil
}

// listBlobsByPrefix lists every blob whose key starts with keyPath+prefix.
// Returned names are relative to keyPath.
func (s *BlobStore) listBlobsByPrefix(ctx context.Context, keyPath, prefix string) (map[string]types.BlobMetadata, error) {
	return socketaccess.Do(s.sandbox, func() (map[string]types.BlobMetadata, error) {
		blobs := make(map[string]types.BlobMetadata)
		it := &pageIterator{
			client:  s.client,
			bucket:  s.bucket,
			prefix:  keyPath + prefix,
			maxKeys: s.pageSize,
		}

		for {
			page, ok, err := it.Next(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list blobs under [%s]: %w", it.prefix, err)
			}
			if !ok {
				break
			}

			for _, summary := range page.Summaries {
				if !strings.HasPrefix(summary.Key, keyPath) {
					return nil, fmt.Errorf("listed key %q is outside prefix %q", summary.Key, keyPath)
				}
				name := summary.Key[len(keyPath):]
				blobs[name] = types.BlobMetadata{Name: name, Length: summary.Size}
			}
		}

		return blobs, nil
	})
}

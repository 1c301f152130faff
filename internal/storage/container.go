package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/unalkalkan/bucketblob/pkg/types"
)

// BlobContainer is a view of the blobs stored under one BlobPath.
// All names it accepts and returns are relative to that path.
type BlobContainer struct {
	path    types.BlobPath
	keyPath string
	store   *BlobStore
}

// Path returns the container path
func (c *BlobContainer) Path() types.BlobPath {
	return c.path
}

// BlobExists checks if a blob exists
func (c *BlobContainer) BlobExists(ctx context.Context, name string) (bool, error) {
	return c.store.blobExists(ctx, c.key(name))
}

// ReadBlob opens a blob for reading; the caller must close it
func (c *BlobContainer) ReadBlob(ctx context.Context, name string) (io.ReadCloser, error) {
	return c.store.readBlob(ctx, c.key(name))
}

// WriteBlob stores size bytes from r under name.
// With failIfExists, an existing blob is not overwritten and ErrBlobAlreadyExists is returned.
func (c *BlobContainer) WriteBlob(ctx context.Context, name string, r io.Reader, size int64, failIfExists bool) error {
	return c.store.writeBlob(ctx, c.key(name), r, size, failIfExists)
}

// DeleteBlob removes a blob, returning ErrBlobNotFound if it is absent
func (c *BlobContainer) DeleteBlob(ctx context.Context, name string) error {
	exists, err := c.BlobExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("failed to delete blob [%s]: %w", c.key(name), ErrBlobNotFound)
	}
	return c.store.deleteBlob(ctx, c.key(name))
}

// DeleteBlobIgnoringIfNotExists removes a blob if present
func (c *BlobContainer) DeleteBlobIgnoringIfNotExists(ctx context.Context, name string) error {
	return c.store.deleteBlob(ctx, c.key(name))
}

// DeleteBlobsIgnoringIfNotExists removes the named blobs using bulk deletes
func (c *BlobContainer) DeleteBlobsIgnoringIfNotExists(ctx context.Context, names []string) error {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return c.store.deleteKeys(ctx, c.keyPath, unique)
}

// ListBlobs lists all blobs in the container, including nested ones
func (c *BlobContainer) ListBlobs(ctx context.Context) (map[string]types.BlobMetadata, error) {
	return c.store.listBlobsByPrefix(ctx, c.keyPath, "")
}

// ListBlobsByPrefix lists blobs whose name starts with prefix
func (c *BlobContainer) ListBlobsByPrefix(ctx context.Context, prefix string) (map[string]types.BlobMetadata, error) {
	return c.store.listBlobsByPrefix(ctx, c.keyPath, prefix)
}

// Children returns containers for the immediate sub-paths of this container
func (c *BlobContainer) Children(ctx context.Context) (map[string]*BlobContainer, error) {
	blobs, err := c.ListBlobs(ctx)
	if err != nil {
		return nil, err
	}

	children := make(map[string]*BlobContainer)
	for name := range blobs {
		idx := strings.Index(name, types.PathSeparator)
		if idx <= 0 {
			continue
		}
		child := name[:idx]
		if _, ok := children[child]; !ok {
			children[child] = c.store.BlobContainer(c.path.Add(child))
		}
	}
	return children, nil
}

// ChildNames returns the sorted names of the immediate sub-paths
func (c *BlobContainer) ChildNames(ctx context.Context) ([]string, error) {
	children, err := c.Children(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Move renames a blob within the container by copy-then-delete.
// On failure a *MoveError reports whether the target was already written.
func (c *BlobContainer) Move(ctx context.Context, source, target string) error {
	return c.store.move(ctx, c.key(source), c.key(target))
}

// Delete removes every blob in the container
func (c *BlobContainer) Delete(ctx context.Context) error {
	return c.store.Delete(ctx, c.path)
}

func (c *BlobContainer) key(name string) string {
	return c.keyPath + name
}

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unalkalkan/bucketblob/pkg/types"
)

func TestDeleteBlobMissing(t *testing.T) {
	client := newFakeClient()
	store := newTestStore(t, client)
	container := store.BlobContainer(types.NewBlobPath("p"))

	err := container.DeleteBlob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.Zero(t, client.count("DeleteObject"))

	assert.NoError(t, container.DeleteBlobIgnoringIfNotExists(context.Background(), "missing"))
}

func TestDeleteBlob(t *testing.T) {
	client := newFakeClient()
	client.put("p/a", "x")
	client.put("p/b", "x")
	store := newTestStore(t, client)

	require.NoError(t, store.BlobContainer(types.NewBlobPath("p")).DeleteBlob(context.Background(), "a"))
	assert.False(t, client.has("p/a"))
	assert.True(t, client.has("p/b"))
}

func TestDeleteBlobsIgnoringIfNotExists(t *testing.T) {
	client := newFakeClient()
	client.put("p/a", "x")
	client.put("p/b", "x")
	client.put("p/c", "x")
	store := newTestStore(t, client)
	container := store.BlobContainer(types.NewBlobPath("p"))

	err := container.DeleteBlobsIgnoringIfNotExists(context.Background(), []string{"a", "b", "a", "ghost"})
	require.NoError(t, err)

	require.Len(t, client.deleteBatches, 1)
	assert.Equal(t, []string{"p/a", "p/b", "p/ghost"}, client.deleteBatches[0])
	assert.True(t, client.has("p/c"))
}

func TestDeleteBlobsEmptyList(t *testing.T) {
	client := newFakeClient()
	store := newTestStore(t, client)

	require.NoError(t, store.BlobContainer(types.NewBlobPath("p")).DeleteBlobsIgnoringIfNotExists(context.Background(), nil))
	assert.Zero(t, client.count("DeleteObjects"))
}

func TestChildren(t *testing.T) {
	client := newFakeClient()
	client.put("repo/index-1", "x")
	client.put("repo/indices/a/0/data", "x")
	client.put("repo/indices/b/meta", "x")
	client.put("repo/snapshots/s1", "x")
	client.put("other/indices/z", "x")
	store := newTestStore(t, client)
	container := store.BlobContainer(types.NewBlobPath("repo"))

	names, err := container.ChildNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"indices", "snapshots"}, names)

	children, err := container.Children(context.Background())
	require.NoError(t, err)
	require.Contains(t, children, "indices")

	grandchildren, err := children["indices"].ChildNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, grandchildren)
	assert.Equal(t, "repo/indices/", children["indices"].Path().BuildAsString())
}

func TestContainerDeleteOnlyOwnPath(t *testing.T) {
	client := newFakeClient()
	client.put("repo/a/1", "x")
	client.put("repo/a/2", "x")
	client.put("repo/ab/3", "x")
	store := newTestStore(t, client)

	require.NoError(t, store.BlobContainer(types.NewBlobPath("repo", "a")).Delete(context.Background()))
	assert.False(t, client.has("repo/a/1"))
	assert.False(t, client.has("repo/a/2"))
	assert.True(t, client.has("repo/ab/3"))
}

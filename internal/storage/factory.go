package storage

import (
	"context"
	"fmt"

	"github.com/unalkalkan/bucketblob/internal/socketaccess"
	"github.com/unalkalkan/bucketblob/pkg/types"
)

// NewClient creates an object client based on the configuration.
// gate guards outbound sockets for network clients and may be nil.
func NewClient(ctx context.Context, cfg types.StorageConfig, gate *socketaccess.Gate) (ObjectClient, error) {
	switch cfg.Client {
	case "local":
		return NewLocalClient(cfg.Local.BasePath)
	case "s3":
		return NewS3Client(ctx, S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UseSSL:          cfg.S3.UseSSL,
			Gate:            gate,
		})
	default:
		return nil, fmt.Errorf("unknown storage client: %s", cfg.Client)
	}
}

// Open creates the client described by cfg and a blob store over cfg.Bucket.
// Network calls of the client are only permitted inside the store's privileged blocks.
func Open(ctx context.Context, cfg types.StorageConfig, opts ...Option) (*BlobStore, error) {
	gate := socketaccess.NewGate()
	client, err := NewClient(ctx, cfg, gate)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithSandbox(gate), WithPageSize(cfg.PageSize)}, opts...)
	store, err := NewBlobStore(ctx, cfg.Bucket, client, opts...)
	if err != nil {
		client.Shutdown()
		return nil, err
	}
	return store, nil
}

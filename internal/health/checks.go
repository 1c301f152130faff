package health

import (
	"context"
)

// ExistenceChecker is satisfied by blob containers
type ExistenceChecker interface {
	BlobExists(ctx context.Context, name string) (bool, error)
}

// BlobStoreCheck reports the store unhealthy when an existence probe fails.
// The probed blob does not need to exist; only reachability matters.
func BlobStoreCheck(container ExistenceChecker, probe string) CheckFunc {
	return func(ctx context.Context) (Status, error) {
		if _, err := container.BlobExists(ctx, probe); err != nil {
			return StatusUnhealthy, err
		}
		return StatusHealthy, nil
	}
}

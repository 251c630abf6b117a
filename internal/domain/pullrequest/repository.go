package pullrequest

import (
	"context"

	"prtrack/internal/pkg/client"
)

// SnapshotFetcher loads pull request metadata from the hosting service.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, o *FetchOptions) (*Snapshot, error)
}

type FetchOptions struct {
	Repository client.Repository
	Number     int
}

package pullrequest

import (
	"context"

	"prtrack/internal/errcodes"

	"github.com/pkg/errors"
)

var ErrRemoteQueryFailed = errors.New("remote query failed")

type BootstrapService struct {
	fetcher SnapshotFetcher
}

// FetchSnapshot resolves the pull request a tracking request refers to.
// Every failure of the remote query is reported as ErrRemoteQueryFailed.
func (bs *BootstrapService) FetchSnapshot(ctx context.Context, o *FetchOptions) (*Snapshot, error) {
	if o.Repository.IsZero() {
		return nil, errcodes.ErrMissingRepository
	}
	if o.Number <= 0 {
		return nil, errcodes.ErrInvalidPullRequestNumber
	}

	s, err := bs.fetcher.FetchSnapshot(ctx, o)
	if err != nil {
		if errors.Is(err, ErrRemoteQueryFailed) {
			return nil, err
		}
		return nil, errors.Wrapf(ErrRemoteQueryFailed, "%s#%d: %v", o.Repository, o.Number, err)
	}
	if s == nil {
		return nil, errors.Wrapf(ErrRemoteQueryFailed, "%s#%d: no data", o.Repository, o.Number)
	}
	if s.IsMerged() && s.MergeCommit == "" {
		return nil, errors.Wrapf(ErrRemoteQueryFailed, "%s#%d: merged without merge commit", o.Repository, o.Number)
	}

	return s, nil
}

func NewBootstrapService(f SnapshotFetcher) *BootstrapService {
	return &BootstrapService{f}
}

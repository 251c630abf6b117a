package tracker

import (
	"context"
	"sync"

	"prtrack/internal/domain/propagation"
	"prtrack/internal/domain/pullrequest"
	"prtrack/internal/errcodes"
	"prtrack/internal/pkg/client"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrPullRequestClosed = errors.New("pull request was closed without merging")

type Strategy string

const (
	StrategyFanout Strategy = "fanout"
	StrategyLinear Strategy = "linear"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyFanout:
		return StrategyFanout, nil
	case StrategyLinear:
		return StrategyLinear, nil
	}

	return "", errcodes.ErrUnknownStrategy
}

// History records tracking requests. Failures are logged only.
type History interface {
	AddTracked(repo string, number int, title string) error
}

// Service turns tracking requests into running edges. It owns the root
// context of every edge it starts.
type Service struct {
	bootstrap *pullrequest.BootstrapService
	rules     *propagation.RuleSet
	bases     map[client.Repository]string
	strategy  Strategy
	fanout    *Tracker
	linear    *LinearWatcher
	registry  *Registry
	history   History

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

type ServiceOptions struct {
	Fetcher pullrequest.SnapshotFetcher
	Oracle  Oracle
	Sink    Sink
	Gate    Gate
	Rules   *propagation.RuleSet
	// Bases maps a repository to the branch merges land on. Repositories
	// without an entry use the pull request's base branch.
	Bases    map[client.Repository]string
	Strategy Strategy
	History  History
}

func NewService(o *ServiceOptions) *Service {
	registry := NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		bootstrap: pullrequest.NewBootstrapService(o.Fetcher),
		rules:     o.Rules,
		bases:     o.Bases,
		strategy:  o.Strategy,
		fanout: New(&Options{
			Rules:    o.Rules,
			Oracle:   o.Oracle,
			Sink:     o.Sink,
			Gate:     o.Gate,
			Registry: registry,
		}),
		linear: NewLinearWatcher(&LinearOptions{
			Fetcher:  o.Fetcher,
			Oracle:   o.Oracle,
			Sink:     o.Sink,
			Gate:     o.Gate,
			Registry: registry,
		}),
		registry: registry,
		history:  o.History,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) baseBranch(repo client.Repository, snapshot *pullrequest.Snapshot) string {
	if b, ok := s.bases[repo]; ok && b != "" {
		return b
	}

	return snapshot.BaseRef
}

// Start resolves the pull request and starts tracking it in the
// background. Errors are only returned for requests that never start.
func (s *Service) Start(ctx context.Context, repo client.Repository, number int) (*pullrequest.Snapshot, error) {
	snapshot, err := s.bootstrap.FetchSnapshot(ctx, &pullrequest.FetchOptions{
		Repository: repo,
		Number:     number,
	})
	if err != nil {
		return nil, err
	}

	if snapshot.IsClosed() {
		return snapshot, errors.Wrapf(ErrPullRequestClosed, "%s#%d", repo, number)
	}

	base := s.baseBranch(repo, snapshot)
	if base == "" {
		return snapshot, errors.Wrapf(errcodes.ErrMissingBranch, "no base branch for %s", repo)
	}

	logger := log.With().Str("repository", repo.String()).Int("pr", number).Logger()
	if snapshot.IsMerged() && s.strategy != StrategyLinear {
		e := s.fanout.Track(s.ctx, repo, number, base, snapshot.MergeCommit)
		logger.Info().Str("branch", base).Str("edge", e.ID.String()).Msg("tracking merged pull request")
	} else {
		e := s.linear.Watch(s.ctx, repo, snapshot, linearBranches(s.rules, repo, base))
		logger.Info().Str("branch", base).Str("edge", e.ID.String()).Msg("watching pull request")
	}

	if s.history != nil {
		if err := s.history.AddTracked(repo.String(), number, snapshot.Title); err != nil {
			logger.Warn().Err(err).Msg("cannot record tracking history")
		}
	}

	return snapshot, nil
}

// Wait blocks until every edge has finished.
func (s *Service) Wait() {
	s.registry.Wait()
}

// Shutdown abandons every running edge and waits for them to return.
func (s *Service) Shutdown() {
	s.once.Do(s.cancel)
	s.registry.Wait()
}

package tracker

import (
	"context"
	"fmt"

	"prtrack/internal/domain/comparison"
	"prtrack/internal/domain/propagation"
	"prtrack/internal/pkg/client"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Oracle compares a commit against the tip of a branch.
type Oracle interface {
	Compare(ctx context.Context, repo client.Repository, base, head string) (comparison.Status, error)
}

// Gate paces polling. Wait returns an error only when ctx is done.
type Gate interface {
	Wait(ctx context.Context) error
}

type Sink interface {
	Notify(ctx context.Context, text string) error
}

// Tracker follows a commit through the propagation graph of a repository.
// Each edge polls its branch until the commit is included, announces the
// branch and starts one child edge per downstream branch.
type Tracker struct {
	rules    *propagation.RuleSet
	oracle   Oracle
	sink     Sink
	gate     Gate
	registry *Registry
}

type Options struct {
	Rules    *propagation.RuleSet
	Oracle   Oracle
	Sink     Sink
	Gate     Gate
	Registry *Registry
}

func New(o *Options) *Tracker {
	registry := o.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Tracker{
		rules:    o.Rules,
		oracle:   o.Oracle,
		sink:     o.Sink,
		gate:     o.Gate,
		registry: registry,
	}
}

func (t *Tracker) Registry() *Registry {
	return t.registry
}

func inBranchMessage(pr int, branch string) string {
	return fmt.Sprintf("pull request #%d is now in branch %s", pr, branch)
}

// Track starts the root edge for head on branch and returns immediately.
func (t *Tracker) Track(ctx context.Context, repo client.Repository, pr int, branch, head string) Edge {
	return t.spawn(ctx, Edge{
		Repository:  repo,
		PullRequest: pr,
		Head:        head,
		Branch:      branch,
	})
}

func (t *Tracker) spawn(ctx context.Context, e Edge) Edge {
	return t.registry.Go(ctx, e, t.run)
}

func edgeLogger(e Edge) zerolog.Logger {
	return log.With().
		Str("repository", e.Repository.String()).
		Int("pr", e.PullRequest).
		Str("branch", e.Branch).
		Str("edge", e.ID.String()).
		Logger()
}

func (t *Tracker) run(ctx context.Context, e Edge, poll func()) {
	logger := edgeLogger(e)
	logger.Debug().Str("head", e.Head).Msg("edge started")

	if !t.poll(ctx, e, poll, logger) {
		logger.Debug().Err(ctx.Err()).Msg("edge abandoned")
		return
	}

	if err := t.sink.Notify(ctx, inBranchMessage(e.PullRequest, e.Branch)); err != nil {
		logger.Error().Err(err).Msg("cannot deliver notification")
	}

	next := t.rules.NextBranches(e.Repository, e.Branch)
	if len(next) == 0 {
		logger.Info().Msg("reached leaf branch")
		return
	}

	for _, b := range next {
		child := t.spawn(ctx, Edge{
			Repository:  e.Repository,
			PullRequest: e.PullRequest,
			Head:        e.Head,
			Branch:      b,
		})
		logger.Debug().Str("child", child.ID.String()).Str("next", b).Msg("fan out")
	}
}

// poll blocks until the edge's head is included in its branch. It returns
// false when ctx is done or the gate fails.
func (t *Tracker) poll(ctx context.Context, e Edge, count func(), logger zerolog.Logger) bool {
	for {
		if err := t.gate.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				logger.Error().Err(err).Msg("schedule failed, abandoning edge")
			}
			return false
		}
		count()

		status, err := t.oracle.Compare(ctx, e.Repository, e.Branch, e.Head)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			logger.Warn().Err(err).Msg("comparison failed, retrying on next tick")
			continue
		}

		logger.Debug().Stringer("status", status).Msg("compared")
		if status.Included() {
			return true
		}
	}
}

package tracker

import (
	"context"
	"fmt"

	"prtrack/internal/domain/propagation"
	"prtrack/internal/domain/pullrequest"
	"prtrack/internal/pkg/client"

	"github.com/rs/zerolog"
)

// LinearWatcher polls a fixed, ordered list of branches on every tick. It
// re-fetches the pull request too, so it can follow a pull request that
// is still open when tracking starts.
type LinearWatcher struct {
	fetcher  pullrequest.SnapshotFetcher
	oracle   Oracle
	sink     Sink
	gate     Gate
	registry *Registry
}

type LinearOptions struct {
	Fetcher  pullrequest.SnapshotFetcher
	Oracle   Oracle
	Sink     Sink
	Gate     Gate
	Registry *Registry
}

func NewLinearWatcher(o *LinearOptions) *LinearWatcher {
	registry := o.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &LinearWatcher{
		fetcher:  o.Fetcher,
		oracle:   o.Oracle,
		sink:     o.Sink,
		gate:     o.Gate,
		registry: registry,
	}
}

// linearBranches flattens the propagation graph below base into walk
// order. Later branches have higher priority.
func linearBranches(rules *propagation.RuleSet, repo client.Repository, base string) []string {
	var out []string
	seen := map[string]bool{}
	for _, b := range rules.AllBranches(repo, base) {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}

	return out
}

type linearState struct {
	branches []string
	included map[string]bool
	head     string
	state    pullrequest.State
}

// Watch starts watching snapshot's pull request across branches, in
// priority order lowest first.
func (w *LinearWatcher) Watch(ctx context.Context, repo client.Repository, snapshot *pullrequest.Snapshot, branches []string) Edge {
	st := &linearState{
		branches: branches,
		included: make(map[string]bool, len(branches)),
		head:     snapshot.HeadCommit,
		state:    snapshot.State,
	}
	if snapshot.IsMerged() {
		st.head = snapshot.MergeCommit
	}

	e := Edge{
		Repository:  repo,
		PullRequest: snapshot.Number,
		Head:        st.head,
	}
	if len(branches) > 0 {
		e.Branch = branches[0]
	}

	return w.registry.Go(ctx, e, func(ctx context.Context, e Edge, poll func()) {
		w.run(ctx, e, st, poll)
	})
}

func (w *LinearWatcher) notify(ctx context.Context, logger zerolog.Logger, text string) {
	if err := w.sink.Notify(ctx, text); err != nil {
		logger.Error().Err(err).Msg("cannot deliver notification")
	}
}

func (w *LinearWatcher) run(ctx context.Context, e Edge, st *linearState, poll func()) {
	logger := edgeLogger(e)

	for !st.done() {
		if err := w.gate.Wait(ctx); err != nil {
			logger.Debug().Err(err).Msg("watch abandoned")
			return
		}
		poll()

		if !w.refresh(ctx, e, st, logger) {
			return
		}

		current := w.compareAll(ctx, e, st, logger)
		if b, ok := highestNewlyIncluded(st.branches, st.included, current); ok {
			w.notify(ctx, logger, inBranchMessage(e.PullRequest, b))
		}
		st.included = current
	}

	logger.Info().Msg("pull request reached every branch")
}

// refresh re-fetches the pull request. It returns false when watching
// should stop.
func (w *LinearWatcher) refresh(ctx context.Context, e Edge, st *linearState, logger zerolog.Logger) bool {
	s, err := w.fetcher.FetchSnapshot(ctx, &pullrequest.FetchOptions{
		Repository: e.Repository,
		Number:     e.PullRequest,
	})
	if err != nil || s == nil {
		logger.Warn().Err(err).Msg("cannot refresh pull request, retrying on next tick")
		return true
	}

	head := st.head
	switch {
	case s.IsClosed():
		w.notify(ctx, logger, fmt.Sprintf("pull request #%d was closed without merging", e.PullRequest))
		return false
	case s.IsMerged() && st.state != pullrequest.StateMerged:
		w.notify(ctx, logger, fmt.Sprintf("pull request #%d was merged", e.PullRequest))
		st.head = s.MergeCommit
		st.included = map[string]bool{}
	case s.State == pullrequest.StateOpen && s.HeadCommit != "":
		st.head = s.HeadCommit
	}
	st.state = s.State
	if st.head != head {
		w.registry.SetHead(e.ID, st.head)
	}

	return true
}

func (w *LinearWatcher) compareAll(ctx context.Context, e Edge, st *linearState, logger zerolog.Logger) map[string]bool {
	current := make(map[string]bool, len(st.branches))
	for _, b := range st.branches {
		status, err := w.oracle.Compare(ctx, e.Repository, b, st.head)
		if err != nil {
			logger.Warn().Err(err).Str("target", b).Msg("comparison failed, keeping previous result")
			current[b] = st.included[b]
			continue
		}
		current[b] = status.Included()
	}

	return current
}

func (st *linearState) done() bool {
	if st.state != pullrequest.StateMerged {
		return false
	}
	for _, b := range st.branches {
		if !st.included[b] {
			return false
		}
	}

	return true
}

// highestNewlyIncluded picks the last branch in priority order whose flag
// went from false to true.
func highestNewlyIncluded(branches []string, previous, current map[string]bool) (string, bool) {
	for i := len(branches) - 1; i >= 0; i-- {
		b := branches[i]
		if current[b] && !previous[b] {
			return b, true
		}
	}

	return "", false
}

package track

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"prtrack/internal/command/paramutils"
	"prtrack/internal/domain/pullrequest"
	"prtrack/internal/errcodes"
	"prtrack/internal/notify"
	"prtrack/internal/pkg/client"
	"prtrack/internal/tracker"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var nixpkgs = client.Repository{Owner: "NixOS", Name: "nixpkgs"}

type mockService struct {
	Snapshots map[int]*pullrequest.Snapshot
	Errors    map[int]error

	mu       sync.Mutex
	started  []int
	finished chan struct{}
	shutdown bool
	registry *tracker.Registry
}

func newMockService() *mockService {
	return &mockService{
		Snapshots: map[int]*pullrequest.Snapshot{},
		Errors:    map[int]error{},
		finished:  make(chan struct{}),
		registry:  tracker.NewRegistry(),
	}
}

func (s *mockService) Start(ctx context.Context, repo client.Repository, number int) (*pullrequest.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, number)
	if err := s.Errors[number]; err != nil {
		return nil, err
	}

	return s.Snapshots[number], nil
}

func (s *mockService) Wait() { <-s.finished }

func (s *mockService) Shutdown() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
}

func (s *mockService) Registry() *tracker.Registry { return s.registry }

type mockTicker struct{}

func (mockTicker) Next() time.Time { return time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC) }

func Test_parseParams(t *testing.T) {
	oldGetRepository := getRepository
	defer func() { getRepository = oldGetRepository }()

	t.Run("fails on invalid numbers", func(t *testing.T) {
		_, err := parseParams(&paramutils.MockFlagSet{}, []string{"abc"})
		assert.ErrorIs(t, err, errcodes.ErrInvalidPullRequestNumber)
	})

	t.Run("fails when the repository cannot be resolved", func(t *testing.T) {
		getRepository = func(paramutils.FlagRepo) (client.Repository, error) {
			return client.Repository{}, errcodes.ErrMissingRepository
		}
		_, err := parseParams(&paramutils.MockFlagSet{}, []string{"1"})
		assert.ErrorIs(t, err, errcodes.ErrMissingRepository)
	})

	t.Run("collects numbers and flags", func(t *testing.T) {
		getRepository = func(paramutils.FlagRepo) (client.Repository, error) { return nixpkgs, nil }
		p, err := parseParams(&paramutils.MockFlagSet{StringMap: map[string]interface{}{"status": true}}, []string{"1", "2"})
		assert.NoError(t, err)
		assert.Equal(t, &cmdParams{Repository: nixpkgs, Numbers: []int{1, 2}, Status: true}, p)
	})
}

func Test_execute(t *testing.T) {
	t.Run("fails when nothing could be tracked", func(t *testing.T) {
		s := newMockService()
		s.Errors[3] = errors.New("pull request was closed without merging")
		out := &bytes.Buffer{}

		err := execute(context.Background(), s, mockTicker{}, &cmdParams{Repository: nixpkgs, Numbers: []int{3}}, out, nil)
		assert.ErrorIs(t, err, ErrNothingTracked)
		assert.Equal(t, "#3: pull request was closed without merging\n", out.String())
	})

	t.Run("waits for the trackers to finish", func(t *testing.T) {
		s := newMockService()
		s.Snapshots[12] = &pullrequest.Snapshot{Number: 12, Title: "hello: 2.12 -> 2.12.1", State: pullrequest.StateMerged}
		s.Errors[13] = errors.New("not found")
		close(s.finished)
		out := &bytes.Buffer{}

		err := execute(context.Background(), s, mockTicker{}, &cmdParams{Repository: nixpkgs, Numbers: []int{12, 13}}, out, nil)
		assert.NoError(t, err)
		assert.Equal(t, []int{12, 13}, s.started)
		assert.Contains(t, out.String(), "tracking #12 hello: 2.12 -> 2.12.1 (MERGED)")
		assert.Contains(t, out.String(), "#13: not found")
		assert.False(t, s.shutdown)
	})

	t.Run("shuts down when interrupted", func(t *testing.T) {
		s := newMockService()
		s.Snapshots[12] = &pullrequest.Snapshot{Number: 12, State: pullrequest.StateMerged}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := &bytes.Buffer{}

		err := execute(ctx, s, mockTicker{}, &cmdParams{Repository: nixpkgs, Numbers: []int{12}, Status: true}, out, newStatusView(out))
		assert.NoError(t, err)
		assert.True(t, s.shutdown)
	})
}

func Test_statusTable(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	table := statusTable([]tracker.Edge{{
		Repository:  nixpkgs,
		PullRequest: 12,
		Branch:      "staging-next",
		Head:        "0123456789abcdef",
		Started:     now.Add(-90 * time.Second),
		Polls:       3,
	}}, now.Add(5*time.Minute), now)

	s := table.String()
	assert.Contains(t, s, "NixOS/nixpkgs")
	assert.Contains(t, s, "staging-next")
	assert.Contains(t, s, "01234567")
	assert.NotContains(t, s, "0123456789")
	assert.Contains(t, s, "1m30s")
	assert.Contains(t, s, "1 active, next poll at 12:05:00")
}

func Test_statusView(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	edges := []tracker.Edge{{Repository: nixpkgs, PullRequest: 12, Branch: "staging-next", Started: now}}

	t.Run("notifications survive a redraw", func(t *testing.T) {
		out := &bytes.Buffer{}
		view := newStatusView(out)
		sink := notify.NewWriterSink(view.Notifications())

		assert.NoError(t, view.Render(statusTable(edges, now, now)))
		assert.NoError(t, sink.Notify(context.Background(), "pull request #12 is now in branch staging-next"))
		redrawn := statusTable(edges, now.Add(time.Minute), now).String()
		assert.NoError(t, view.Render(statusTable(edges, now.Add(time.Minute), now)))

		text := out.String()
		i := strings.Index(text, "pull request #12 is now in branch staging-next\n")
		if assert.GreaterOrEqual(t, i, 0) {
			after := text[i+len("pull request #12 is now in branch staging-next\n"):]
			assert.Equal(t, redrawn+"\n", after)
		}
	})

	t.Run("redraws replace the previous table", func(t *testing.T) {
		out := &bytes.Buffer{}
		view := newStatusView(out)

		assert.NoError(t, view.Render(statusTable(edges, now, now)))
		assert.NoError(t, view.Render(statusTable(edges, now, now)))
		assert.Contains(t, out.String(), "\x1b[1A\x1b[2K")
	})
}

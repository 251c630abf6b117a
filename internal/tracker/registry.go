package tracker

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"prtrack/internal/pkg/client"

	"github.com/google/uuid"
)

// Edge is one tracker instance: it waits until Head is part of Branch.
// Branch never changes once the edge exists. Head only moves for edges
// that follow a pull request which is still open or just got merged.
type Edge struct {
	ID          uuid.UUID
	Repository  client.Repository
	PullRequest int
	Head        string
	Branch      string
	Started     time.Time
	Polls       int64
}

type entry struct {
	edge  Edge
	polls atomic.Int64
}

// Registry keeps a handle on every running edge so that the process can
// list them and wait for them on shutdown.
type Registry struct {
	mu    sync.Mutex
	wg    sync.WaitGroup
	edges map[uuid.UUID]*entry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		edges: map[uuid.UUID]*entry{},
		now:   time.Now,
	}
}

// Go runs fn in its own goroutine and tracks it until fn returns. fn gets
// a poll counter it should bump once per poll.
func (r *Registry) Go(ctx context.Context, e Edge, fn func(ctx context.Context, e Edge, poll func())) Edge {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Started = r.now()

	en := &entry{edge: e}
	r.mu.Lock()
	r.edges[e.ID] = en
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.edges, e.ID)
			r.mu.Unlock()
		}()

		fn(ctx, e, func() { en.polls.Add(1) })
	}()

	return e
}

// SetHead records the commit a running edge currently waits for. Unknown
// ids are ignored.
func (r *Registry) SetHead(id uuid.UUID, head string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if en, ok := r.edges[id]; ok {
		en.edge.Head = head
	}
}

// Active lists the running edges, oldest first.
func (r *Registry) Active() []Edge {
	r.mu.Lock()
	edges := make([]Edge, 0, len(r.edges))
	for _, en := range r.edges {
		e := en.edge
		e.Polls = en.polls.Load()
		edges = append(edges, e)
	}
	r.mu.Unlock()

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Started.Equal(edges[j].Started) {
			return edges[i].Branch < edges[j].Branch
		}
		return edges[i].Started.Before(edges[j].Started)
	})

	return edges
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.edges)
}

// Wait blocks until every edge started through Go has returned, including
// edges started while waiting.
func (r *Registry) Wait() {
	r.wg.Wait()
}

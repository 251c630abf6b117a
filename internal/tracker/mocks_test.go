package tracker

import (
	"context"
	"sync"
	"sync/atomic"

	"prtrack/internal/domain/comparison"
	"prtrack/internal/pkg/client"
)

type compareResult struct {
	Status comparison.Status
	Err    error
}

type compareCall struct {
	Branch string
	Head   string
}

// mockOracle replays scripted results per branch and repeats the last
// result once a script runs out. Branches without a script are Ahead.
type mockOracle struct {
	mu      sync.Mutex
	Results map[string][]compareResult
	Fn      func(branch, head string) (comparison.Status, error)
	Calls   []compareCall
}

func (m *mockOracle) Compare(ctx context.Context, repo client.Repository, base, head string) (comparison.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, compareCall{Branch: base, Head: head})
	if m.Fn != nil {
		return m.Fn(base, head)
	}

	script := m.Results[base]
	if len(script) == 0 {
		return comparison.Ahead, nil
	}

	r := script[0]
	if len(script) > 1 {
		m.Results[base] = script[1:]
	}

	return r.Status, r.Err
}

func (m *mockOracle) CallsFor(branch string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c.Branch == branch {
			n++
		}
	}

	return n
}

func (m *mockOracle) AllCalls() []compareCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]compareCall(nil), m.Calls...)
}

// mockGate lets Limit waits through and then blocks until the context is
// cancelled. A zero Limit never blocks.
type mockGate struct {
	Limit int64
	calls atomic.Int64
}

func (g *mockGate) Wait(ctx context.Context) error {
	n := g.calls.Add(1)
	if g.Limit > 0 && n > g.Limit {
		<-ctx.Done()
		return ctx.Err()
	}

	return ctx.Err()
}

func (g *mockGate) Calls() int64 {
	return g.calls.Load()
}

type mockSink struct {
	mu         sync.Mutex
	Texts      []string
	ErrorValue error
}

func (m *mockSink) Notify(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, text)
	return m.ErrorValue
}

func (m *mockSink) Received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Texts...)
}

type mockHistory struct {
	mu      sync.Mutex
	Tracked []string
}

func (m *mockHistory) AddTracked(repo string, number int, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tracked = append(m.Tracked, title)
	return nil
}

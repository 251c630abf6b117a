package pullrequest

import "context"

type MockSnapshotFetcher struct {
	Snapshots  []*Snapshot
	ErrorValue error
	Calls      int
}

// FetchSnapshot returns the configured snapshots in order and keeps
// returning the last one once they run out.
func (m *MockSnapshotFetcher) FetchSnapshot(ctx context.Context, o *FetchOptions) (*Snapshot, error) {
	m.Calls++
	if m.ErrorValue != nil {
		return nil, m.ErrorValue
	}
	if len(m.Snapshots) == 0 {
		return nil, nil
	}

	i := m.Calls - 1
	if i >= len(m.Snapshots) {
		i = len(m.Snapshots) - 1
	}

	return m.Snapshots[i], nil
}

package pullrequest

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnknownState = errors.New("unknown pull request state")

type State string

const (
	StateOpen   State = "OPEN"
	StateMerged State = "MERGED"
	StateClosed State = "CLOSED"
)

func ParseState(s string) (State, error) {
	switch st := State(strings.ToUpper(s)); st {
	case StateOpen, StateMerged, StateClosed:
		return st, nil
	}

	return "", errors.Wrapf(ErrUnknownState, "%q", s)
}

// Snapshot is the state of a pull request at the time it was fetched.
// MergeCommit is only set for merged pull requests.
type Snapshot struct {
	Number      int
	Title       string
	URL         string
	State       State
	BaseRef     string
	HeadCommit  string
	MergeCommit string
}

func (s *Snapshot) IsMerged() bool { return s.State == StateMerged }
func (s *Snapshot) IsClosed() bool { return s.State == StateClosed }

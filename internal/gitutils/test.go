package gitutils

import (
	"github.com/go-git/go-git/v5"
)

type MockGoGitRepository struct {
	Err          error
	RemotesValue []*git.Remote
}

func (r MockGoGitRepository) Remotes() ([]*git.Remote, error) {
	return r.RemotesValue, r.Err
}

type MockGitRepository struct {
	ErrorValue      error
	RemoteURLsValue []string
}

func (r *MockGitRepository) GetRemoteURLs() ([]string, error) {
	return r.RemoteURLsValue, r.ErrorValue
}

package gitutils

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/pkg/errors"
)

type goGitRepository interface {
	Remotes() ([]*git.Remote, error)
}

type gitRepository interface {
	GetRemoteURLs() ([]string, error)
}

type repository struct {
	r goGitRepository
}

var openRepo = func(path string) (goGitRepository, error) {
	return OpenRepoRecursevely(path)
}

// OpenRepoRecursevely opens the repository containing input, walking up
// the directory tree until a .git directory is found.
func OpenRepoRecursevely(input string) (*git.Repository, error) {
	dir := input
	for {
		repo, err := git.PlainOpen(dir)
		if err == nil {
			return repo, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || parent == "." {
			break
		}
		dir = parent
	}

	return nil, errors.Errorf("could not recursively open a repository at %s", input)
}

// GetRemoteURLs lists remote URLs with origin first.
func (r *repository) GetRemoteURLs() ([]string, error) {
	var repoURLs []string
	remotes, err := r.r.Remotes()
	if err != nil {
		return nil, err
	}

	for _, re := range remotes {
		cfg := re.Config()
		if cfg.Name == git.DefaultRemoteName {
			repoURLs = append(append([]string{}, cfg.URLs...), repoURLs...)
			continue
		}
		repoURLs = append(repoURLs, cfg.URLs...)
	}

	return repoURLs, nil
}

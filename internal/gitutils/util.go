package gitutils

import (
	"regexp"
	"strings"

	"prtrack/internal/pkg/client"
	"prtrack/internal/pkg/fs"

	"github.com/pkg/errors"
)

var (
	ErrCannotGetLocalRepository         = errors.New("cannot get local repository")
	ErrUnableToParseRemoteRepositoryURI = errors.New("unable to parse remote repository URI")
	ErrNoRemoteRepository               = errors.New("local repository has no usable remote")
)

var (
	scpLikeURI = regexp.MustCompile(`^(?:[\w.-]+@)?([\w.-]+):([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)
	schemeURI  = regexp.MustCompile(`^(?:https?|ssh|git)://(?:[^@/]+@)?([\w.-]+)(?::\d+)?/([\w.-]+)/([\w.-]+?)(?:\.git)?/?$`)
)

var getWorkingDir = func(fs fs.Filesystem) (string, error) {
	return fs.Getwd()
}

var openLocalRepo = func() (gitRepository, error) {
	wd, err := getWorkingDir(fs.OS{})
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	r, err := openRepo(wd)
	if err != nil {
		return nil, errors.Wrap(err, ErrCannotGetLocalRepository.Error())
	}

	return &repository{r: r}, nil
}

// extractRepositoryTokens splits a remote URI into host, owner and name.
// Both scp-like (git@host:owner/repo.git) and URL forms are accepted.
var extractRepositoryTokens = func(uri string) ([]string, error) {
	uri = strings.TrimSpace(uri)
	for _, r := range []*regexp.Regexp{schemeURI, scpLikeURI} {
		m := r.FindStringSubmatch(uri)
		if len(m) == 4 {
			return m[1:], nil
		}
	}

	return nil, ErrUnableToParseRemoteRepositoryURI
}

var parseRepositoryString = func(repoString string) (*client.Repository, error) {
	m, err := extractRepositoryTokens(repoString)
	if err != nil {
		return nil, err
	}

	return &client.Repository{
		Owner: m[1],
		Name:  m[2],
	}, nil
}

var getRemoteInfoList = func() ([]*client.Repository, error) {
	var repos []*client.Repository
	r, err := openLocalRepo()
	if err != nil {
		return nil, err
	}

	repoURLs, err := r.GetRemoteURLs()
	if err != nil {
		return nil, err
	}

	for _, url := range repoURLs {
		pRepo, err := parseRepositoryString(url)
		if err != nil {
			continue
		}

		repos = append(repos, pRepo)
	}

	return repos, nil
}

// GetRemoteInfo returns the repository behind the working directory's
// first parseable remote, preferring origin.
func GetRemoteInfo() (*client.Repository, error) {
	repos, err := getRemoteInfoList()
	if err != nil {
		return nil, err
	}

	if len(repos) == 0 {
		return nil, ErrNoRemoteRepository
	}

	return repos[0], nil
}

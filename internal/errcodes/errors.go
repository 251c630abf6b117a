package errcodes

import "errors"

var (
	ErrMissingRepository               = errors.New("repository is missing")
	ErrMissingPullRequestNumber        = errors.New("pull request number is missing")
	ErrInvalidPullRequestNumber        = errors.New("pull request number must be a positive integer")
	ErrMissingBranch                   = errors.New("branch is missing")
	ErrMissingGithubToken              = errors.New("github token is missing")
	ErrRepositoryMustBeInFormOwnerRepo = errors.New("repository must be in the form of 'owner/repo'")
	ErrUnknownStrategy                 = errors.New("tracking strategy is unknown, expected (fanout, linear)")
	ErrInvalidConfiguration            = errors.New("invalid configuration")
)

// Exit codes used by the command line entry point.
const (
	ExitCodeGeneric = 1
	ExitCodeConfig  = 3
)

package client

import (
	"fmt"
	"strings"

	"prtrack/internal/errcodes"
)

// Repository identifies a repository on the hosting service. It is a
// comparable value and is used as a map key throughout the tracker.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

func (r Repository) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

type RepositoryOptions struct {
	FullRepositoryName string
}

func NewRepositoryFromOptions(options *RepositoryOptions) (Repository, error) {
	return ParseRepository(options.FullRepositoryName)
}

func ParseRepository(s string) (Repository, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Repository{}, errcodes.ErrMissingRepository
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, errcodes.ErrRepositoryMustBeInFormOwnerRepo
	}

	return Repository{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}

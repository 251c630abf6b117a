package paramutils

import (
	"strconv"

	"prtrack/internal/config"
	"prtrack/internal/errcodes"
	"prtrack/internal/pkg/client"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type FlagRepo interface {
	GetStringOrDefault(flag, d string) string
	GetBoolOrDefault(flag string, d bool) bool
}

func NewFlagRepo(flags *pflag.FlagSet) FlagRepo {
	return &PFlagSetWrapper{Flags: flags}
}

type PFlagSetWrapper struct {
	Flags *pflag.FlagSet
}

func (fs *PFlagSetWrapper) GetStringOrDefault(flag, d string) string {
	s, err := fs.Flags.GetString(flag)
	if err != nil || s == "" {
		return d
	}

	return s
}

func (fs *PFlagSetWrapper) GetBoolOrDefault(flag string, d bool) bool {
	s, err := fs.Flags.GetBool(flag)
	if err != nil {
		return d
	}

	return s
}

var defaultRepository = config.DefaultRepository

// GetRepository resolves the repository flag against configuration and the
// local checkout.
func GetRepository(flags FlagRepo) (client.Repository, error) {
	return defaultRepository(viper.GetViper(), flags.GetStringOrDefault("repository", ""))
}

func ParseBranchArg(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errcodes.ErrMissingBranch
	}

	return args[0], nil
}

func ParseNumberArgs(args []string) ([]int, error) {
	if len(args) == 0 {
		return nil, errcodes.ErrMissingPullRequestNumber
	}

	numbers := make([]int, 0, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			return nil, errors.Wrapf(errcodes.ErrInvalidPullRequestNumber, "%q", a)
		}
		numbers = append(numbers, n)
	}

	return numbers, nil
}
